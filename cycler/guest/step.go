// Package guest is the step function proven at every hop of a chain, and the
// zkvm program wrapping it.
package guest

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethereum-optimism/cycler/cycler/commitment"
	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

var ErrEmbeddedVerification = errors.New("embedded proof verification failed")

const (
	SectionVerification = "verification"
	SectionPushID       = "push own id"
)

// EmbeddedVerifier checks, from inside a running proof, that a proof produced
// under fp exists whose public values hash to digest.
type EmbeddedVerifier interface {
	VerifyProof(fp zkvm.Fingerprint, digest common.Hash) bool
}

// Step verifies the predecessor of a non-empty incoming commitment and
// extends it with the own identity. Tracker markers are written to trace.
func Step(in *Input, v EmbeddedVerifier, trace io.Writer) (commitment.Commitment, error) {
	fmt.Fprintf(trace, "%s%s\n", zkvm.CycleTrackerStart, SectionVerification)
	if !in.Incoming.IsEmpty() {
		digest := in.Incoming.Digest()
		if !v.VerifyProof(in.Fingerprint, digest) {
			return commitment.Commitment{}, fmt.Errorf("%w: fingerprint %s, digest %s", ErrEmbeddedVerification, in.Fingerprint, digest)
		}
	}
	fmt.Fprintf(trace, "%s%s\n", zkvm.CycleTrackerEnd, SectionVerification)

	fmt.Fprintf(trace, "%s%s\n", zkvm.CycleTrackerStart, SectionPushID)
	out := in.Incoming.Append(in.Identity)
	fmt.Fprintf(trace, "%s%s\n", zkvm.CycleTrackerEnd, SectionPushID)
	return out, nil
}

// Program runs Step as a zkvm guest: it reads an Input and commits the
// outgoing commitment bytes as its only public output.
type Program struct {
	name  string
	image []byte
}

var _ zkvm.Program = (*Program)(nil)

const imagePrefix = "cycler/guest/step/v1:"

// Cycler is the step program every node of a chain runs.
var Cycler = NewProgram("cycler")

// NewProgram returns a step program. Programs with different names have
// different images, and so different keys and fingerprints.
func NewProgram(name string) *Program {
	return &Program{name: name, image: []byte(imagePrefix + name)}
}

func (p *Program) Name() string {
	return p.name
}

func (p *Program) Image() []byte {
	return append([]byte(nil), p.image...)
}

func (p *Program) Run(env zkvm.Env) error {
	in, err := ReadInput(env)
	if err != nil {
		return err
	}
	out, err := Step(in, env, env.Stdout())
	if err != nil {
		return err
	}
	env.Commit(out.Bytes())
	return nil
}
