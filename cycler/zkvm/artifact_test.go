package zkvm

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	h := common.HexToHash("0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")
	fp := FingerprintFromHash(h)
	require.Equal(t, uint32(0x01020304), fp[0])
	require.Equal(t, uint32(0x1d1e1f20), fp[7])
	require.Equal(t, h, fp.Hash())
	require.False(t, fp.IsZero())
	require.True(t, Fingerprint{}.IsZero())

	dat, err := json.Marshal(fp)
	require.NoError(t, err)
	require.Equal(t, `"`+h.Hex()+`"`, string(dat))
	var out Fingerprint
	require.NoError(t, json.Unmarshal(dat, &out))
	require.Equal(t, fp, out)
}

func TestProofKind(t *testing.T) {
	a := &ProofArtifact{Kind: KindCompressed, Proof: []byte{1, 2}}
	blob, err := a.Compressed()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, blob)

	a.Kind = KindCore
	_, err = a.Compressed()
	require.ErrorIs(t, err, ErrUnsupportedProofKind)

	_, err = ProofKind(7).MarshalText()
	require.ErrorIs(t, err, ErrUnsupportedProofKind)
	var k ProofKind
	require.ErrorIs(t, k.UnmarshalText([]byte("plonk")), ErrUnsupportedProofKind)
	require.NoError(t, k.UnmarshalText([]byte("compressed")))
	require.Equal(t, KindCompressed, k)
}

func TestStatementHash(t *testing.T) {
	base := Statement{Fingerprint: Fingerprint{1}, Kind: KindCompressed, Digest: PublicValuesDigest([]byte{1})}
	require.Equal(t, base.Hash(), base.Hash())

	other := base
	other.Kind = KindCore
	require.NotEqual(t, base.Hash(), other.Hash())

	other = base
	other.Fingerprint[7] = 1
	require.NotEqual(t, base.Hash(), other.Hash())

	other = base
	other.Digest = PublicValuesDigest([]byte{2})
	require.NotEqual(t, base.Hash(), other.Hash())
}

func TestArtifactFile(t *testing.T) {
	a := &ProofArtifact{
		Kind:         KindCompressed,
		Fingerprint:  Fingerprint{1, 2, 3, 4, 5, 6, 7, 8},
		PublicValues: []byte{1, 2, 3, 1},
		Proof:        []byte{0xaa, 0xbb},
	}
	path := filepath.Join(t.TempDir(), "proof-4.json")
	require.NoError(t, WriteArtifact(path, a))
	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	require.Equal(t, a, loaded)

	_, err = LoadArtifact(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	require.NoError(t, WriteArtifact("", a), "empty path is a no-op")
}

func TestArtifactClone(t *testing.T) {
	a := &ProofArtifact{Kind: KindCompressed, PublicValues: []byte{1}, Proof: []byte{2}}
	b := a.Clone()
	b.PublicValues[0] = 9
	b.Proof[0] = 9
	require.Equal(t, byte(1), a.PublicValues[0])
	require.Equal(t, byte(2), a.Proof[0])
	require.Contains(t, a.String(), "compressed")
}
