package chain

import (
	"slices"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/cycler/cycler/commitment"
	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

type Verdict uint8

const (
	InvalidProof Verdict = iota
	NoCycle
	CycleDetected
)

func (v Verdict) String() string {
	switch v {
	case CycleDetected:
		return "There is indeed a cycle."
	case NoCycle:
		return "Proof is valid but no cycle."
	default:
		return "Invalid proof."
	}
}

// HasCycle reports whether any identity occurs more than once. Positions are
// not interpreted: the commitment is compared as a multiset.
func HasCycle(c commitment.Commitment) bool {
	sorted := c.Bytes()
	slices.Sort(sorted)
	deduped := slices.Compact(slices.Clone(sorted))
	return len(sorted) != len(deduped)
}

// Extractor verifies final proofs and inspects their commitment.
type Extractor struct {
	log    log.Logger
	client *zkvm.Client
	vk     zkvm.VerifyingKey
}

func NewExtractor(logger log.Logger, client *zkvm.Client, vk zkvm.VerifyingKey) *Extractor {
	return &Extractor{log: logger, client: client, vk: vk}
}

func (e *Extractor) Extract(a *zkvm.ProofArtifact) Verdict {
	if err := e.client.Verify(a, e.vk); err != nil {
		e.log.Warn("final proof failed verification", "err", err)
		return InvalidProof
	}
	c := commitment.FromBytes(a.PublicValues)
	if HasCycle(c) {
		e.log.Info("cycle witnessed", "commitment", c)
		return CycleDetected
	}
	return NoCycle
}
