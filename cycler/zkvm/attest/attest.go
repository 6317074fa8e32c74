// Package attest is a proof backend that attests to statements with secp256k1
// signatures. The signing key is derived from the program image, which makes
// setup deterministic: anyone holding the image can re-derive the verifying
// key, and anyone holding the image can also sign. It is meant for development
// and tests, where a succinct proof system is too slow.
package attest

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

const Name = "attest"

var keyDomain = []byte("cycler/attest/key/v1")

type VerifyingKey struct {
	pub []byte // uncompressed secp256k1 public key
}

func (vk *VerifyingKey) Bytes() []byte {
	return append([]byte(nil), vk.pub...)
}

type provingKey struct {
	key *ecdsa.PrivateKey
}

type Backend struct{}

var _ zkvm.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string {
	return Name
}

func (b *Backend) Setup(program zkvm.Program) (zkvm.ProvingKey, zkvm.VerifyingKey, error) {
	seed := crypto.Keccak256(keyDomain, program.Image())
	// rehash in the negligible case the seed is not a valid scalar
	for i := 0; i < 16; i++ {
		key, err := crypto.ToECDSA(seed)
		if err == nil {
			return &provingKey{key: key}, &VerifyingKey{pub: crypto.FromECDSAPub(&key.PublicKey)}, nil
		}
		seed = crypto.Keccak256(seed)
	}
	return nil, nil, errors.New("failed to derive signing key from program image")
}

func (b *Backend) Prove(ctx context.Context, pk zkvm.ProvingKey, st zkvm.Statement) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, ok := pk.(*provingKey)
	if !ok {
		return nil, fmt.Errorf("unexpected proving key type %T", pk)
	}
	h := st.Hash()
	sig, err := crypto.Sign(h[:], key.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign statement: %w", err)
	}
	return sig, nil
}

func (b *Backend) Verify(proof []byte, st zkvm.Statement, vk zkvm.VerifyingKey) error {
	key, ok := vk.(*VerifyingKey)
	if !ok {
		return fmt.Errorf("unexpected verifying key type %T", vk)
	}
	if len(proof) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature length %d", len(proof))
	}
	h := st.Hash()
	pub, err := crypto.Ecrecover(h[:], proof)
	if err != nil {
		return fmt.Errorf("failed to recover signer: %w", err)
	}
	if !bytes.Equal(pub, key.pub) {
		return errors.New("statement not signed by program key")
	}
	if !crypto.VerifySignature(key.pub, h[:], proof[:crypto.RecoveryIDOffset]) {
		return errors.New("invalid signature")
	}
	return nil
}

func (b *Backend) DecodeVerifyingKey(dat []byte) (zkvm.VerifyingKey, error) {
	if _, err := crypto.UnmarshalPubkey(dat); err != nil {
		return nil, fmt.Errorf("invalid verifying key: %w", err)
	}
	return &VerifyingKey{pub: append([]byte(nil), dat...)}, nil
}
