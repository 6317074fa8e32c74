package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrSetup is fatal: no chain work starts without keys.
	ErrSetup               = errors.New("setup failed")
	ErrFingerprintMismatch = errors.New("fingerprint mismatch")
	ErrIdentityNotPresent  = errors.New("closing identity not present in commitment")
	ErrCommitmentMismatch  = errors.New("public values do not extend the incoming commitment")
	ErrEmptyPlan           = errors.New("empty chain plan")
)

// ProvingError reports that no artifact could be produced for a step. Chain
// construction halts at the step; it is not retried.
type ProvingError struct {
	Step int
	Err  error
}

func (e *ProvingError) Error() string {
	return fmt.Sprintf("proving of step %d failed: %v", e.Step, e.Err)
}

func (e *ProvingError) Unwrap() error {
	return e.Err
}
