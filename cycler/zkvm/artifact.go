package zkvm

import (
	"errors"
	"fmt"
	"os"

	"github.com/ethereum-optimism/optimism/op-service/ioutil"
	"github.com/ethereum-optimism/optimism/op-service/jsonutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	sha256 "github.com/minio/sha256-simd"
)

var (
	ErrUnsupportedProofKind = errors.New("unsupported proof kind")
	ErrInvalidProof         = errors.New("invalid proof")
)

// ProofKind tags the shape of a proof blob. Only compressed proofs can be
// verified from within another guest run.
type ProofKind uint8

const (
	KindCore ProofKind = iota
	KindCompressed
)

func (k ProofKind) String() string {
	switch k {
	case KindCore:
		return "core"
	case KindCompressed:
		return "compressed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

func (k ProofKind) MarshalText() ([]byte, error) {
	switch k {
	case KindCore, KindCompressed:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedProofKind, uint8(k))
	}
}

func (k *ProofKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "core":
		*k = KindCore
	case "compressed":
		*k = KindCompressed
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProofKind, text)
	}
	return nil
}

// PublicValuesDigest is the SHA-256 hash of a run's public values. Guests
// checking a predecessor must hash with the same function.
func PublicValuesDigest(b []byte) common.Hash {
	return sha256.Sum256(b)
}

// Statement is what a proof blob attests to.
type Statement struct {
	Fingerprint Fingerprint
	Kind        ProofKind
	Digest      common.Hash
}

var statementDomain = []byte("cycler/statement/v1")

// Hash binds all statement fields, for backends that sign or commit to a single value.
func (s Statement) Hash() common.Hash {
	fp := s.Fingerprint.Hash()
	return crypto.Keccak256Hash(statementDomain, fp[:], []byte{byte(s.Kind)}, s.Digest[:])
}

// ProofArtifact is the result of one proven guest run. It is never mutated
// after creation.
type ProofArtifact struct {
	Kind         ProofKind     `json:"kind"`
	Fingerprint  Fingerprint   `json:"fingerprint"`
	PublicValues hexutil.Bytes `json:"public-values"`
	Proof        hexutil.Bytes `json:"proof"`
}

// Compressed returns the proof blob if this is a compressed proof.
func (a *ProofArtifact) Compressed() ([]byte, error) {
	if a.Kind != KindCompressed {
		return nil, fmt.Errorf("%w: expected %s proof, got %s", ErrUnsupportedProofKind, KindCompressed, a.Kind)
	}
	return a.Proof, nil
}

func (a *ProofArtifact) Statement() Statement {
	return Statement{
		Fingerprint: a.Fingerprint,
		Kind:        a.Kind,
		Digest:      PublicValuesDigest(a.PublicValues),
	}
}

// Clone returns a deep copy, for callers that need to modify one.
func (a *ProofArtifact) Clone() *ProofArtifact {
	return &ProofArtifact{
		Kind:         a.Kind,
		Fingerprint:  a.Fingerprint,
		PublicValues: append(hexutil.Bytes{}, a.PublicValues...),
		Proof:        append(hexutil.Bytes{}, a.Proof...),
	}
}

func (a *ProofArtifact) String() string {
	return fmt.Sprintf("ProofArtifact{kind: %s, fingerprint: %s, public-values: %v, proof: %d bytes}",
		a.Kind, a.Fingerprint, []byte(a.PublicValues), len(a.Proof))
}

var OutFilePerm = os.FileMode(0o644)

func LoadArtifact(path string) (*ProofArtifact, error) {
	a, err := jsonutil.LoadJSON[ProofArtifact](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load proof artifact %q: %w", path, err)
	}
	return a, nil
}

// WriteArtifact writes the artifact as JSON. An empty path is a no-op, "-" is stdout.
func WriteArtifact(path string, a *ProofArtifact) error {
	if err := jsonutil.WriteJSON(a, ioutil.ToStdOutOrFileOrNoop(path, OutFilePerm)); err != nil {
		return fmt.Errorf("failed to write proof artifact: %w", err)
	}
	return nil
}
