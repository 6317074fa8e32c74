package cmd

import (
	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
)

const EnvVarPrefix = "CYCLER"

func prefixEnvVars(name string) []string {
	return opservice.PrefixEnvVar(EnvVarPrefix, name)
}

var (
	ExecuteFlag = &cli.BoolFlag{
		Name:    "execute",
		Usage:   "Execute the step program once without proving it, and print its output and execution report",
		EnvVars: prefixEnvVars("EXECUTE"),
	}
	IDsFlag = &cli.StringFlag{
		Name:    "ids",
		Usage:   "Comma separated identities to chain, genesis first. A repeated identity closes the chain",
		Value:   "1,2,3,1",
		EnvVars: prefixEnvVars("IDS"),
	}
	BackendFlag = &cli.StringFlag{
		Name:    "backend",
		Usage:   "Proof backend: attest or groth16",
		Value:   "attest",
		EnvVars: prefixEnvVars("BACKEND"),
	}
	ProofFmtFlag = &cli.StringFlag{
		Name:    "proof-fmt",
		Usage:   "Format for proof artifact output file names, e.g. proof-%d.json. Empty to not write artifacts",
		EnvVars: prefixEnvVars("PROOF_FMT"),
	}
	VKOutFlag = &cli.PathFlag{
		Name:    "vk-out",
		Usage:   "Path to write the verifying key to, '-' for stdout",
		EnvVars: prefixEnvVars("VK_OUT"),
	}
	LogLevelFlag = &cli.StringFlag{
		Name:    "log.level",
		Usage:   "Log level: trace, debug, info, warn or error",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
	}
	PProfCPUFlag = &cli.BoolFlag{
		Name:    "pprof.cpu",
		Usage:   "Enable pprof cpu profiling",
		EnvVars: prefixEnvVars("PPROF_CPU"),
	}

	InputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "Path of the proof artifact to verify",
		TakesFile: true,
		Required:  true,
		EnvVars:   prefixEnvVars("INPUT"),
	}
	VKFlag = &cli.PathFlag{
		Name:      "vk",
		Usage:     "Path of the verifying key file. Optional for the attest backend, which derives it from the program",
		TakesFile: true,
		EnvVars:   prefixEnvVars("VK"),
	}

	PlanFlag = &cli.StringSliceFlag{
		Name:     "plan",
		Usage:    "Comma separated identities of one chain. Repeat the flag to prove several chains",
		Required: true,
		EnvVars:  prefixEnvVars("PLAN"),
	}
	WorkersFlag = &cli.IntFlag{
		Name:    "workers",
		Usage:   "Number of chains proven concurrently",
		Value:   2,
		EnvVars: prefixEnvVars("WORKERS"),
	}
)
