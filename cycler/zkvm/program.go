package zkvm

import (
	"io"

	"github.com/ethereum/go-ethereum/common"
)

// Program is a deterministic guest computation the engine can execute and prove.
type Program interface {
	// Name is used for logging only.
	Name() string
	// Image is the stable byte representation of the program. Keys are derived
	// from it, so two programs with equal images are the same program.
	Image() []byte
	// Run executes the guest against the environment. A returned error aborts
	// the computation and no proof is produced.
	Run(env Env) error
}

// Env is the guest's view of the engine while it runs.
type Env interface {
	// Read returns the next stdin frame.
	Read() ([]byte, error)
	// Commit appends to the public values of the computation.
	Commit(b []byte)
	// VerifyProof checks that an attached proof produced under fingerprint fp
	// verifies and commits to public values hashing to digest.
	VerifyProof(fp Fingerprint, digest common.Hash) bool
	// Stdout receives guest output, including cycle-tracker markers.
	Stdout() io.Writer
}
