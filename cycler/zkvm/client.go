package zkvm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/singleflight"
)

var ErrGuestAborted = errors.New("guest aborted")

// Client executes and proves guest programs with a Backend. Keys are set up
// once per program image and shared read-only afterwards.
type Client struct {
	backend Backend
	log     log.Logger
	stdout  io.Writer

	setupGroup singleflight.Group
	keysLock   sync.RWMutex
	keys       map[common.Hash]*Keys
}

type ClientOption func(c *Client)

// WithGuestOutput routes guest stdout, minus cycle-tracker markers, to w.
func WithGuestOutput(w io.Writer) ClientOption {
	return func(c *Client) {
		c.stdout = w
	}
}

func NewClient(logger log.Logger, backend Backend, opts ...ClientOption) *Client {
	c := &Client{
		backend: backend,
		log:     logger,
		stdout:  io.Discard,
		keys:    make(map[common.Hash]*Keys),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Backend() Backend {
	return c.backend
}

// Setup returns the keys of a program, deriving them on first use.
// Concurrent callers for the same program share a single setup.
func (c *Client) Setup(program Program) (*Keys, error) {
	id := crypto.Keccak256Hash(program.Image())
	c.keysLock.RLock()
	keys, ok := c.keys[id]
	c.keysLock.RUnlock()
	if ok {
		return keys, nil
	}
	v, err, _ := c.setupGroup.Do(id.Hex(), func() (any, error) {
		c.keysLock.RLock()
		keys, ok := c.keys[id]
		c.keysLock.RUnlock()
		if ok {
			return keys, nil
		}
		start := time.Now()
		pk, vk, err := c.backend.Setup(program)
		if err != nil {
			return nil, fmt.Errorf("%s setup of program %q: %w", c.backend.Name(), program.Name(), err)
		}
		keys = &Keys{
			Program:      program.Name(),
			Fingerprint:  FingerprintOf(vk),
			ProvingKey:   pk,
			VerifyingKey: vk,
		}
		c.keysLock.Lock()
		c.keys[id] = keys
		c.keysLock.Unlock()
		c.log.Info("program setup complete", "program", program.Name(), "backend", c.backend.Name(),
			"fingerprint", keys.Fingerprint, "elapsed", time.Since(start))
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Keys), nil
}

// Execute runs the program without proving it. Attached proofs are still
// checked when the guest asks for them.
func (c *Client) Execute(program Program, stdin *Stdin) ([]byte, *ExecutionReport, error) {
	env := NewInstrumentedEnv(stdin, NewAttachedProofOracle(c.log, c.backend, stdin.Proofs()), c.stdout)
	if err := env.Run(program); err != nil {
		return nil, env.Report(), fmt.Errorf("%w: program %q: %w", ErrGuestAborted, program.Name(), err)
	}
	return env.PublicValues(), env.Report(), nil
}

// Prove runs the program and proves the resulting public values under keys.
// If the guest aborts, no artifact is produced.
func (c *Client) Prove(ctx context.Context, program Program, keys *Keys, stdin *Stdin, kind ProofKind) (*ProofArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	public, report, err := c.Execute(program, stdin)
	if err != nil {
		return nil, err
	}
	c.log.Debug("guest executed", "program", program.Name(), "report", report.String())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st := Statement{
		Fingerprint: keys.Fingerprint,
		Kind:        kind,
		Digest:      PublicValuesDigest(public),
	}
	blob, err := c.backend.Prove(ctx, keys.ProvingKey, st)
	if err != nil {
		return nil, fmt.Errorf("%s prover: %w", c.backend.Name(), err)
	}
	return &ProofArtifact{
		Kind:         kind,
		Fingerprint:  keys.Fingerprint,
		PublicValues: public,
		Proof:        blob,
	}, nil
}

// Verify checks an artifact against a verifying key. Any failure wraps ErrInvalidProof.
func (c *Client) Verify(a *ProofArtifact, vk VerifyingKey) error {
	if fp := FingerprintOf(vk); a.Fingerprint != fp {
		return fmt.Errorf("%w: artifact fingerprint %s does not match key fingerprint %s", ErrInvalidProof, a.Fingerprint, fp)
	}
	if err := c.backend.Verify(a.Proof, a.Statement(), vk); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProof, err)
	}
	return nil
}
