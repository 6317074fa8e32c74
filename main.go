package main

import (
	"context"
	"os"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/cycler/cycler/chain"
	"github.com/ethereum-optimism/cycler/cycler/cmd"
	"github.com/ethereum-optimism/cycler/cycler/commitment"
	"github.com/ethereum-optimism/cycler/cycler/guest"
	"github.com/ethereum-optimism/cycler/cycler/zkvm"
	"github.com/ethereum-optimism/cycler/cycler/zkvm/attest"
)

func main() {
	l := cmd.Logger(os.Stderr, log.LevelInfo)
	ctx := context.Background()

	client := zkvm.NewClient(l, attest.New())
	o, err := chain.NewOrchestrator(l, client, guest.Cycler)
	if err != nil {
		log.Crit("setup failed", "err", err)
	}

	// prove the agreed prefix of the chain
	c, err := o.Run(ctx, []commitment.Identity{1, 2, 3})
	if err != nil {
		log.Crit("failed to prove chain", "err", err)
	}
	l.Info("pre-state", "commitment", c.Commitment(), "digest", c.Commitment().Digest())

	// Now run through the closing step outside the prover,
	// and remember every embedded verification it makes.
	stdin := zkvm.NewStdin()
	(&guest.Input{Identity: 1, Fingerprint: o.Fingerprint(), Incoming: c.Commitment()}).WriteTo(stdin)
	stdin.WriteProof(c.Last(), o.Keys().VerifyingKey)
	so := zkvm.NewAttachedProofOracle(l, client.Backend(), stdin.Proofs())
	env := zkvm.NewInstrumentedEnv(stdin, so, nil)
	if err := env.Run(guest.Cycler); err != nil {
		log.Crit("closing step aborted", "err", err)
	}
	post := commitment.FromBytes(env.PublicValues())
	l.Info("post-state", "commitment", post, "cycle", chain.HasCycle(post))
	for _, access := range so.AccessList() {
		l.Info("embedded verification", "fingerprint", access.Fingerprint, "digest", access.Digest, "verified", access.Verified)
	}
	l.Info("report", "report", env.Report().String())
}
