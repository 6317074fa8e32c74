package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/cycler/cycler/chain"
	"github.com/ethereum-optimism/cycler/cycler/guest"
	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

func Verify(ctx *cli.Context) error {
	l, err := newLogger(ctx)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, l)
	if err != nil {
		return err
	}
	a, err := zkvm.LoadArtifact(ctx.Path(InputFlag.Name))
	if err != nil {
		return err
	}

	var vk zkvm.VerifyingKey
	if path := ctx.Path(VKFlag.Name); path != "" {
		vk, err = loadKeyFile(path, client.Backend())
	} else {
		var keys *zkvm.Keys
		keys, err = client.Setup(guest.Cycler)
		if keys != nil {
			vk = keys.VerifyingKey
		}
	}
	if err != nil {
		return err
	}
	if fp := zkvm.FingerprintOf(vk); fp != a.Fingerprint {
		l.Warn("artifact was not proven under this key", "artifact", a.Fingerprint, "key", fp)
	}

	fmt.Fprintln(ctx.App.Writer, chain.NewExtractor(l, client, vk).Extract(a))
	return nil
}

var VerifyCommand = &cli.Command{
	Name:        "verify",
	Usage:       "Verify a proof artifact and check its commitment for a cycle",
	Description: "Verify a proof artifact written with --proof-fmt and print the cycle verdict. Without --vk the key is set up from the step program, which only reproduces the proving key for the attest backend.",
	Action:      Verify,
	Flags: []cli.Flag{
		InputFlag,
		VKFlag,
		BackendFlag,
		LogLevelFlag,
	},
}
