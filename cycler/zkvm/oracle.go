package zkvm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// ProofOracle resolves embedded verification requests against the proofs
// attached to a guest run.
type ProofOracle interface {
	// Get returns true if an attached proof for (fp, digest) verifies.
	Get(fp Fingerprint, digest common.Hash) bool
}

type oracleKey struct {
	fingerprint Fingerprint
	digest      common.Hash
}

type Access struct {
	Fingerprint Fingerprint
	Digest      common.Hash
	Verified    bool
}

// AttachedProofOracle indexes attached proofs by the fingerprint of the key
// they were attached with and the digest of their public values. Proofs are
// verified with the backend lazily, on first access.
type AttachedProofOracle struct {
	backend Backend
	log     log.Logger

	data     map[oracleKey][]AttachedProof
	verified map[oracleKey]bool

	accessList []Access
}

var _ ProofOracle = (*AttachedProofOracle)(nil)

func NewAttachedProofOracle(logger log.Logger, backend Backend, proofs []AttachedProof) *AttachedProofOracle {
	o := &AttachedProofOracle{
		backend:  backend,
		log:      logger,
		data:     make(map[oracleKey][]AttachedProof),
		verified: make(map[oracleKey]bool),
	}
	for _, p := range proofs {
		o.Remember(p)
	}
	return o
}

// Remember indexes an attached proof.
func (o *AttachedProofOracle) Remember(p AttachedProof) {
	key := oracleKey{
		fingerprint: FingerprintOf(p.VerifyingKey),
		digest:      PublicValuesDigest(p.Artifact.PublicValues),
	}
	o.data[key] = append(o.data[key], p)
}

func (o *AttachedProofOracle) Get(fp Fingerprint, digest common.Hash) bool {
	key := oracleKey{fingerprint: fp, digest: digest}
	ok, cached := o.verified[key]
	if !cached {
		ok = o.verify(key)
		o.verified[key] = ok
	}
	o.accessList = append(o.accessList, Access{Fingerprint: fp, Digest: digest, Verified: ok})
	return ok
}

func (o *AttachedProofOracle) verify(key oracleKey) bool {
	candidates := o.data[key]
	if len(candidates) == 0 {
		o.log.Warn("no attached proof matches embedded verification request", "fingerprint", key.fingerprint, "digest", key.digest)
		return false
	}
	for i, p := range candidates {
		// the proof must claim the fingerprint it was attached under
		if p.Artifact.Fingerprint != key.fingerprint {
			o.log.Warn("attached proof fingerprint mismatch", "index", i, "want", key.fingerprint, "got", p.Artifact.Fingerprint)
			continue
		}
		blob, err := p.Artifact.Compressed()
		if err != nil {
			o.log.Warn("attached proof cannot be verified recursively", "index", i, "err", err)
			continue
		}
		if err := o.backend.Verify(blob, p.Artifact.Statement(), p.VerifyingKey); err != nil {
			o.log.Warn("attached proof failed verification", "index", i, "err", err)
			continue
		}
		return true
	}
	return false
}

func (o *AttachedProofOracle) AccessList() []Access {
	out := make([]Access, len(o.accessList))
	copy(out, o.accessList)
	return out
}
