package chain

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/cycler/cycler/commitment"
	"github.com/ethereum-optimism/cycler/cycler/guest"
	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

// StepInput is everything one proving call consumes. Index is 1-based and
// used for error reporting only.
type StepInput struct {
	Index       int
	Identity    commitment.Identity
	Incoming    commitment.Commitment
	Predecessor *zkvm.ProofArtifact
}

// Orchestrator proves chains of a single step program. The keys are set up
// once and only read afterwards, so an Orchestrator may drive many chains
// concurrently.
type Orchestrator struct {
	log     log.Logger
	client  *zkvm.Client
	program zkvm.Program
	keys    *zkvm.Keys
}

func NewOrchestrator(logger log.Logger, client *zkvm.Client, program zkvm.Program) (*Orchestrator, error) {
	keys, err := client.Setup(program)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSetup, err)
	}
	return &Orchestrator{
		log:     logger,
		client:  client,
		program: program,
		keys:    keys,
	}, nil
}

// WithLogger returns an orchestrator sharing the same keys that logs to l.
func (o *Orchestrator) WithLogger(l log.Logger) *Orchestrator {
	cp := *o
	cp.log = l
	return &cp
}

func (o *Orchestrator) Keys() *zkvm.Keys {
	return o.keys
}

func (o *Orchestrator) Fingerprint() zkvm.Fingerprint {
	return o.keys.Fingerprint
}

// ProveStep runs the step program once and returns its artifact. Any failure
// to produce the artifact is a *ProvingError for in.Index.
func (o *Orchestrator) ProveStep(ctx context.Context, in StepInput) (*zkvm.ProofArtifact, error) {
	stdin := zkvm.NewStdin()
	(&guest.Input{
		Identity:    in.Identity,
		Fingerprint: o.keys.Fingerprint,
		Incoming:    in.Incoming,
	}).WriteTo(stdin)

	if pred := in.Predecessor; pred != nil {
		if pred.Fingerprint != o.keys.Fingerprint {
			return nil, fmt.Errorf("step %d: %w: predecessor proven under %s, chain uses %s",
				in.Index, ErrFingerprintMismatch, pred.Fingerprint, o.keys.Fingerprint)
		}
		if _, err := pred.Compressed(); err != nil {
			return nil, &ProvingError{Step: in.Index, Err: err}
		}
		stdin.WriteProof(pred, o.keys.VerifyingKey)
	}

	start := time.Now()
	artifact, err := o.client.Prove(ctx, o.program, o.keys, stdin, zkvm.KindCompressed)
	if err != nil {
		o.log.Error("step proving failed", "step", in.Index, "id", in.Identity, "err", err)
		return nil, &ProvingError{Step: in.Index, Err: err}
	}
	o.log.Info("proved step", "step", in.Index, "id", in.Identity, "fingerprint", o.keys.Fingerprint,
		"commitment", commitment.FromBytes(artifact.PublicValues), "elapsed", time.Since(start))
	return artifact, nil
}

// Genesis proves the first step of a new chain, with an empty incoming commitment.
func (o *Orchestrator) Genesis(ctx context.Context, id commitment.Identity) (*Chain, error) {
	c := &Chain{fingerprint: o.keys.Fingerprint}
	return o.extend(ctx, c, id)
}

// Extend proves the next step of c, verifying the latest proof of c.
func (o *Orchestrator) Extend(ctx context.Context, c *Chain, id commitment.Identity) (*Chain, error) {
	if c.Len() == 0 {
		return o.Genesis(ctx, id)
	}
	return o.extend(ctx, c, id)
}

// Close extends c with an identity that is already part of its commitment,
// producing a commitment that witnesses a cycle.
func (o *Orchestrator) Close(ctx context.Context, c *Chain, id commitment.Identity) (*Chain, error) {
	if !c.Commitment().Contains(id) {
		return nil, fmt.Errorf("step %d: %w: %d not in %s", c.Len()+1, ErrIdentityNotPresent, id, c.Commitment())
	}
	return o.extend(ctx, c, id)
}

func (o *Orchestrator) extend(ctx context.Context, c *Chain, id commitment.Identity) (*Chain, error) {
	if c.fingerprint != o.keys.Fingerprint {
		return nil, fmt.Errorf("step %d: %w: chain uses %s, orchestrator %s",
			c.Len()+1, ErrFingerprintMismatch, c.fingerprint, o.keys.Fingerprint)
	}
	in := StepInput{
		Index:       c.Len() + 1,
		Identity:    id,
		Incoming:    c.Commitment(),
		Predecessor: c.Last(),
	}
	artifact, err := o.ProveStep(ctx, in)
	if err != nil {
		return nil, err
	}
	out := in.Incoming.Append(id)
	if !bytes.Equal(out.Bytes(), artifact.PublicValues) {
		return nil, &ProvingError{Step: in.Index, Err: fmt.Errorf("%w: expected %s, got %x", ErrCommitmentMismatch, out, []byte(artifact.PublicValues))}
	}
	return c.with(Link{Identity: id, Commitment: out, Artifact: artifact}), nil
}

// Run proves a whole chain: genesis with ids[0], then one step per remaining
// identity. A repeated identity closes the chain.
func (o *Orchestrator) Run(ctx context.Context, ids []commitment.Identity) (*Chain, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyPlan
	}
	c, err := o.Genesis(ctx, ids[0])
	if err != nil {
		return nil, err
	}
	for _, id := range ids[1:] {
		if c.Commitment().Contains(id) {
			c, err = o.Close(ctx, c, id)
		} else {
			c, err = o.Extend(ctx, c, id)
		}
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Extract runs the cycle extractor on an artifact with this orchestrator's key.
func (o *Orchestrator) Extract(a *zkvm.ProofArtifact) Verdict {
	return NewExtractor(o.log, o.client, o.keys.VerifyingKey).Extract(a)
}
