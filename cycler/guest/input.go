package guest

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum-optimism/cycler/cycler/commitment"
	"github.com/ethereum-optimism/cycler/cycler/zkvm"
)

var ErrMalformedInput = errors.New("malformed step input")

const fingerprintSize = 8 * 4

// Input is read by the step function from stdin, one frame per field, in
// field order:
//
//	identity:    1 byte
//	fingerprint: 8 little-endian uint32 words
//	incoming:    little-endian uint64 length, then the commitment bytes
type Input struct {
	Identity    commitment.Identity
	Fingerprint zkvm.Fingerprint
	Incoming    commitment.Commitment
}

func EncodeFingerprint(fp zkvm.Fingerprint) []byte {
	out := make([]byte, 0, fingerprintSize)
	for _, w := range fp {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}

func DecodeFingerprint(b []byte) (fp zkvm.Fingerprint, err error) {
	if len(b) != fingerprintSize {
		return fp, fmt.Errorf("%w: fingerprint frame of %d bytes, expected %d", ErrMalformedInput, len(b), fingerprintSize)
	}
	for i := range fp {
		fp[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return fp, nil
}

func EncodeCommitment(c commitment.Commitment) []byte {
	dat := c.Bytes()
	out := make([]byte, 0, 8+len(dat))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(dat)))
	return append(out, dat...)
}

func DecodeCommitment(b []byte) (commitment.Commitment, error) {
	if len(b) < 8 {
		return commitment.Commitment{}, fmt.Errorf("%w: commitment frame of %d bytes has no length prefix", ErrMalformedInput, len(b))
	}
	n := binary.LittleEndian.Uint64(b[:8])
	if n != uint64(len(b)-8) {
		return commitment.Commitment{}, fmt.Errorf("%w: commitment length prefix %d, but %d bytes follow", ErrMalformedInput, n, len(b)-8)
	}
	return commitment.FromBytes(b[8:]), nil
}

// WriteTo encodes the input as stdin frames.
func (in *Input) WriteTo(stdin *zkvm.Stdin) {
	stdin.Write([]byte{byte(in.Identity)})
	stdin.Write(EncodeFingerprint(in.Fingerprint))
	stdin.Write(EncodeCommitment(in.Incoming))
}

// ReadInput decodes the input frames in order.
func ReadInput(env zkvm.Env) (*Input, error) {
	idFrame, err := env.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}
	if len(idFrame) != 1 {
		return nil, fmt.Errorf("%w: identity frame of %d bytes", ErrMalformedInput, len(idFrame))
	}
	fpFrame, err := env.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read fingerprint: %w", err)
	}
	fp, err := DecodeFingerprint(fpFrame)
	if err != nil {
		return nil, err
	}
	cFrame, err := env.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read incoming commitment: %w", err)
	}
	incoming, err := DecodeCommitment(cFrame)
	if err != nil {
		return nil, err
	}
	return &Input{
		Identity:    commitment.Identity(idFrame[0]),
		Fingerprint: fp,
		Incoming:    incoming,
	}, nil
}
