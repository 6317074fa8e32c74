package cmd

import (
	"fmt"
	"time"

	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/cycler/cycler/chain"
	"github.com/ethereum-optimism/cycler/cycler/commitment"
	"github.com/ethereum-optimism/cycler/cycler/guest"
	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

// Execute runs the step program once, as the genesis step of identity 1,
// without proving anything.
func Execute(ctx *cli.Context, client *zkvm.Client) error {
	stdin := zkvm.NewStdin()
	(&guest.Input{Identity: 1}).WriteTo(stdin)
	public, report, err := client.Execute(guest.Cycler, stdin)
	if err != nil {
		return err
	}
	out := ctx.App.Writer
	fmt.Fprintln(out, "Program executed successfully.")
	fmt.Fprintf(out, "output: %s\n", commitment.FromBytes(public))
	fmt.Fprintf(out, "report: %s\n", report)
	return nil
}

func Cycles(ctx *cli.Context) error {
	if ctx.Bool(PProfCPUFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}
	l, err := newLogger(ctx)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, l)
	if err != nil {
		return err
	}
	if ctx.Bool(ExecuteFlag.Name) {
		return Execute(ctx, client)
	}

	plan, err := chain.ParsePlan(ctx.String(IDsFlag.Name))
	if err != nil {
		return err
	}
	o, err := chain.NewOrchestrator(l, client, guest.Cycler)
	if err != nil {
		return err
	}
	if vkOut := ctx.Path(VKOutFlag.Name); vkOut != "" {
		if err := writeKeyFile(vkOut, client.Backend().Name(), o.Keys()); err != nil {
			return err
		}
	}

	out := ctx.App.Writer
	proofFmt := ctx.String(ProofFmtFlag.Name)
	start := time.Now()
	var c *chain.Chain
	for i, id := range plan {
		step := i + 1
		switch {
		case i == 0:
			c, err = o.Genesis(ctx.Context, id)
		case c.Commitment().Contains(id):
			c, err = o.Close(ctx.Context, c, id)
		default:
			c, err = o.Extend(ctx.Context, c, id)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "step %d: %s\n", step, c.Last())
		if proofFmt != "" {
			if err := zkvm.WriteArtifact(fmt.Sprintf(proofFmt, step), c.Last()); err != nil {
				return err
			}
		}
	}
	l.Info("chain proven", "steps", c.Len(), "commitment", c.Commitment(), "elapsed", time.Since(start))

	fmt.Fprintln(out, o.Extract(c.Last()))
	return nil
}

var CyclesFlags = []cli.Flag{
	ExecuteFlag,
	IDsFlag,
	BackendFlag,
	ProofFmtFlag,
	VKOutFlag,
	LogLevelFlag,
	PProfCPUFlag,
}
