package zkvm

import "context"

// VerifyingKey is the public half of a program's key pair.
type VerifyingKey interface {
	// Bytes is the canonical encoding; the fingerprint is derived from it.
	Bytes() []byte
}

// ProvingKey is backend specific and opaque to callers.
type ProvingKey any

// Backend is a succinct proof system. It proves statements about guest runs
// that the Client has already executed.
type Backend interface {
	Name() string
	// Setup derives the key pair of a program.
	Setup(program Program) (ProvingKey, VerifyingKey, error)
	// Prove produces a proof blob for the statement. It may take a long time.
	Prove(ctx context.Context, pk ProvingKey, st Statement) ([]byte, error)
	// Verify checks a proof blob against a statement. A nil error means valid.
	Verify(proof []byte, st Statement, vk VerifyingKey) error
	DecodeVerifyingKey(b []byte) (VerifyingKey, error)
}

// Keys is the immutable outcome of a program setup. It is safe to share
// between concurrent chains.
type Keys struct {
	Program      string
	Fingerprint  Fingerprint
	ProvingKey   ProvingKey
	VerifyingKey VerifyingKey
}
