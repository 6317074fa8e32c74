package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/cycler/cycler/chain"
	"github.com/ethereum-optimism/cycler/cycler/guest"
)

func Chains(ctx *cli.Context) error {
	l, err := newLogger(ctx)
	if err != nil {
		return err
	}
	var plans []chain.Plan
	for _, s := range ctx.StringSlice(PlanFlag.Name) {
		p, err := chain.ParsePlan(s)
		if err != nil {
			return fmt.Errorf("plan %q: %w", s, err)
		}
		plans = append(plans, p)
	}
	client, err := newClient(ctx, l)
	if err != nil {
		return err
	}
	o, err := chain.NewOrchestrator(l, client, guest.Cycler)
	if err != nil {
		return err
	}
	results, err := chain.NewRunner(o, ctx.Int(WorkersFlag.Name)).RunAll(ctx.Context, plans)
	if err != nil {
		return err
	}

	out := ctx.App.Writer
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "%s: error: %v\n", r.Plan, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", r.Plan, r.Verdict)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d chains failed", failed, len(results))
	}
	return nil
}

var ChainsCommand = &cli.Command{
	Name:        "chains",
	Usage:       "Prove several independent chains in parallel",
	Description: "Prove one chain per --plan, sharing a single setup, and print one verdict per plan.",
	Action:      Chains,
	Flags: []cli.Flag{
		PlanFlag,
		WorkersFlag,
		BackendFlag,
		LogLevelFlag,
	},
}
