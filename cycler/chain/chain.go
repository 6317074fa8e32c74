// Package chain drives the step program through a sequence of proofs, each
// verifying its predecessor, and decides whether the final commitment
// witnesses a cycle.
package chain

import (
	"github.com/ethereum-optimism/cycler/cycler/commitment"
	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

// Link is one proven step of a chain.
type Link struct {
	Identity   commitment.Identity
	Commitment commitment.Commitment
	Artifact   *zkvm.ProofArtifact
}

// Chain is an append-only sequence of proven steps under one fingerprint.
// Extending a chain returns a new chain; the receiver is left as is.
type Chain struct {
	fingerprint zkvm.Fingerprint
	links       []Link
}

func (c *Chain) Fingerprint() zkvm.Fingerprint {
	return c.fingerprint
}

func (c *Chain) Len() int {
	return len(c.links)
}

// Links returns the proven steps, genesis first.
func (c *Chain) Links() []Link {
	out := make([]Link, len(c.links))
	copy(out, c.links)
	return out
}

// Last returns the artifact of the latest step.
func (c *Chain) Last() *zkvm.ProofArtifact {
	if len(c.links) == 0 {
		return nil
	}
	return c.links[len(c.links)-1].Artifact
}

// Commitment is the public commitment of the latest step, or the empty
// commitment for a chain without steps.
func (c *Chain) Commitment() commitment.Commitment {
	if len(c.links) == 0 {
		return commitment.Commitment{}
	}
	return c.links[len(c.links)-1].Commitment
}

func (c *Chain) with(l Link) *Chain {
	links := make([]Link, len(c.links), len(c.links)+1)
	copy(links, c.links)
	return &Chain{fingerprint: c.fingerprint, links: append(links, l)}
}
