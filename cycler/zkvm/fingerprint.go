package zkvm

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Fingerprint identifies the program a proof was produced for: the keccak256
// hash of the verifying key, as eight big-endian 32-bit words.
type Fingerprint [8]uint32

func FingerprintFromHash(h common.Hash) (out Fingerprint) {
	for i := range out {
		out[i] = binary.BigEndian.Uint32(h[i*4 : i*4+4])
	}
	return
}

// FingerprintOf derives the fingerprint of a verifying key.
func FingerprintOf(vk VerifyingKey) Fingerprint {
	return FingerprintFromHash(crypto.Keccak256Hash(vk.Bytes()))
}

func (f Fingerprint) Hash() (out common.Hash) {
	for i, w := range f {
		binary.BigEndian.PutUint32(out[i*4:i*4+4], w)
	}
	return
}

func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

func (f Fingerprint) String() string {
	return f.Hash().Hex()
}

func (f Fingerprint) MarshalText() ([]byte, error) {
	return f.Hash().MarshalText()
}

func (f *Fingerprint) UnmarshalText(text []byte) error {
	var h common.Hash
	if err := h.UnmarshalText(text); err != nil {
		return fmt.Errorf("invalid fingerprint: %w", err)
	}
	*f = FingerprintFromHash(h)
	return nil
}
