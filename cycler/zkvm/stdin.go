package zkvm

import (
	"errors"
	"fmt"
)

var ErrStdinExhausted = errors.New("stdin exhausted")

// AttachedProof is a proof handed to the guest for embedded verification,
// together with the key it must verify under.
type AttachedProof struct {
	Artifact     *ProofArtifact
	VerifyingKey VerifyingKey
}

// Stdin is the ordered input of one guest run: data frames, consumed in
// write order, plus proofs available to embedded verification.
type Stdin struct {
	frames [][]byte
	proofs []AttachedProof
}

func NewStdin() *Stdin {
	return &Stdin{}
}

// Write appends a frame. The data is copied.
func (s *Stdin) Write(b []byte) {
	frame := make([]byte, len(b))
	copy(frame, b)
	s.frames = append(s.frames, frame)
}

// WriteProof attaches a proof the guest may verify.
func (s *Stdin) WriteProof(artifact *ProofArtifact, vk VerifyingKey) {
	s.proofs = append(s.proofs, AttachedProof{Artifact: artifact, VerifyingKey: vk})
}

func (s *Stdin) Frames() int {
	return len(s.frames)
}

func (s *Stdin) Proofs() []AttachedProof {
	return s.proofs
}

// Size is the total number of frame bytes.
func (s *Stdin) Size() (n uint64) {
	for _, f := range s.frames {
		n += uint64(len(f))
	}
	return
}

func (s *Stdin) frame(i int) ([]byte, error) {
	if i >= len(s.frames) {
		return nil, fmt.Errorf("%w: read of frame %d, only %d written", ErrStdinExhausted, i, len(s.frames))
	}
	return s.frames[i], nil
}
