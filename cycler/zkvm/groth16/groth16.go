// Package groth16 is a zkvm backend producing Groth16 proofs over BN254.
//
// The circuit commits to a proof statement: a public MiMC binding over the
// program image, the fingerprint, the proof kind and the public-values digest.
// The digest limbs are private witness values, so a proof verifies only for the
// exact public values it was produced for. Setup samples fresh toxic waste;
// keys are therefore unique per setup and a Client caches them per process.
package groth16

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	nativemimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

const Name = "groth16"

type bindingCircuit struct {
	Image *big.Int `gnark:"-"`

	FingerprintHi frontend.Variable `gnark:",public"`
	FingerprintLo frontend.Variable `gnark:",public"`
	Kind          frontend.Variable `gnark:",public"`
	Binding       frontend.Variable `gnark:",public"`

	DigestHi frontend.Variable
	DigestLo frontend.Variable
}

func (c *bindingCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.Image, c.FingerprintHi, c.FingerprintLo, c.Kind, c.DigestHi, c.DigestLo)
	api.AssertIsEqual(h.Sum(), c.Binding)
	return nil
}

// limbs splits a 32-byte value into two 128-bit field elements.
func limbs(h common.Hash) (hi, lo *big.Int) {
	return new(uint256.Int).SetBytes(h[:16]).ToBig(), new(uint256.Int).SetBytes(h[16:]).ToBig()
}

// imageElement maps a program image to a field element.
func imageElement(image []byte) *big.Int {
	var e fr.Element
	e.SetBytes(crypto.Keccak256(image))
	return e.BigInt(new(big.Int))
}

// binding computes natively what the circuit asserts.
func binding(image *big.Int, st zkvm.Statement) (*big.Int, error) {
	fpHi, fpLo := limbs(st.Fingerprint.Hash())
	dHi, dLo := limbs(st.Digest)
	h := nativemimc.NewMiMC()
	for _, v := range []*big.Int{image, fpHi, fpLo, new(big.Int).SetUint64(uint64(st.Kind)), dHi, dLo} {
		var e fr.Element
		e.SetBigInt(v)
		b := e.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return nil, fmt.Errorf("failed to hash binding input: %w", err)
		}
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

func publicAssignment(image *big.Int, st zkvm.Statement) (*bindingCircuit, error) {
	b, err := binding(image, st)
	if err != nil {
		return nil, err
	}
	fpHi, fpLo := limbs(st.Fingerprint.Hash())
	return &bindingCircuit{
		FingerprintHi: fpHi,
		FingerprintLo: fpLo,
		Kind:          uint64(st.Kind),
		Binding:       b,
	}, nil
}

type VerifyingKey struct {
	image *big.Int
	vk    groth16.VerifyingKey
	enc   []byte
}

// Bytes encodes the image element followed by the gnark verifying key.
func (vk *VerifyingKey) Bytes() []byte {
	return append([]byte(nil), vk.enc...)
}

type provingKey struct {
	image *big.Int
	ccs   constraint.ConstraintSystem
	pk    groth16.ProvingKey
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
	image := imageElement(program.Image())
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &bindingCircuit{Image: image})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to run setup: %w", err)
	}
	enc, err := encodeVerifyingKey(image, vk)
	if err != nil {
		return nil, nil, err
	}
	return &provingKey{image: image, ccs: ccs, pk: pk}, &VerifyingKey{image: image, vk: vk, enc: enc}, nil
}

func encodeVerifyingKey(image *big.Int, vk groth16.VerifyingKey) ([]byte, error) {
	var buf bytes.Buffer
	var e fr.Element
	e.SetBigInt(image)
	ib := e.Bytes()
	buf.Write(ib[:])
	if _, err := vk.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode verifying key: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Backend) Prove(ctx context.Context, pk zkvm.ProvingKey, st zkvm.Statement) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, ok := pk.(*provingKey)
	if !ok {
		return nil, fmt.Errorf("unexpected proving key type %T", pk)
	}
	assignment, err := publicAssignment(key.image, st)
	if err != nil {
		return nil, err
	}
	assignment.DigestHi, assignment.DigestLo = limbs(st.Digest)
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to build witness: %w", err)
	}
	proof, err := groth16.Prove(key.ccs, key.pk, w)
	if err != nil {
		return nil, fmt.Errorf("failed to prove: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode proof: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Backend) Verify(blob []byte, st zkvm.Statement, vk zkvm.VerifyingKey) error {
	key, ok := vk.(*VerifyingKey)
	if !ok {
		return fmt.Errorf("unexpected verifying key type %T", vk)
	}
	if len(blob) == 0 {
		return errors.New("empty proof")
	}
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(blob)); err != nil {
		return fmt.Errorf("failed to decode proof: %w", err)
	}
	assignment, err := publicAssignment(key.image, st)
	if err != nil {
		return err
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("failed to build public witness: %w", err)
	}
	return groth16.Verify(proof, key.vk, w)
}

func (b *Backend) DecodeVerifyingKey(dat []byte) (zkvm.VerifyingKey, error) {
	if len(dat) < fr.Bytes {
		return nil, fmt.Errorf("verifying key too short: %d bytes", len(dat))
	}
	var e fr.Element
	if err := e.SetBytesCanonical(dat[:fr.Bytes]); err != nil {
		return nil, fmt.Errorf("invalid image element: %w", err)
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(dat[fr.Bytes:])); err != nil {
		return nil, fmt.Errorf("invalid verifying key: %w", err)
	}
	return &VerifyingKey{image: e.BigInt(new(big.Int)), vk: vk, enc: append([]byte(nil), dat...)}, nil
}
