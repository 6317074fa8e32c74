// Package commitment holds the append-only identity sequence that a chain of
// step proofs accumulates, and the digest that ties a producing step's public
// output to the next step's verified input.
package commitment

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	sha256 "github.com/minio/sha256-simd"
)

// Identity names one participant of a chain.
type Identity uint8

// Digest is the SHA-256 hash of a commitment's byte serialization.
type Digest = common.Hash

// DigestOf hashes raw commitment bytes.
func DigestOf(b []byte) Digest {
	return sha256.Sum256(b)
}

// buffer is the backing storage shared by all handles derived from the same
// append lineage. Only the handle that covers all of data may append in place.
type buffer struct {
	mu   sync.Mutex
	data []byte
}

// Commitment is an immutable view on an ordered sequence of identities.
// The zero value is the empty (genesis) commitment.
//
// Append never changes an existing handle: when the receiver is the tip of its
// buffer the byte is appended in place and the storage is shared, otherwise the
// prefix is copied first.
type Commitment struct {
	buf *buffer
	n   int
}

// Of builds a commitment from identities, in order.
func Of(ids ...Identity) Commitment {
	data := make([]byte, len(ids))
	for i, id := range ids {
		data[i] = byte(id)
	}
	return Commitment{buf: &buffer{data: data}, n: len(data)}
}

// FromBytes builds a commitment from its byte serialization. The input is copied.
func FromBytes(b []byte) Commitment {
	data := make([]byte, len(b))
	copy(data, b)
	return Commitment{buf: &buffer{data: data}, n: len(data)}
}

// Append returns a new commitment extended with id.
func (c Commitment) Append(id Identity) Commitment {
	if c.buf == nil {
		return Of(id)
	}
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	if len(c.buf.data) == c.n {
		c.buf.data = append(c.buf.data, byte(id))
		return Commitment{buf: c.buf, n: c.n + 1}
	}
	data := make([]byte, c.n, c.n+1)
	copy(data, c.buf.data[:c.n])
	data = append(data, byte(id))
	return Commitment{buf: &buffer{data: data}, n: c.n + 1}
}

// Len is the number of identities appended since genesis.
func (c Commitment) Len() int {
	return c.n
}

func (c Commitment) IsEmpty() bool {
	return c.n == 0
}

// view calls fn with the committed bytes while holding the buffer lock.
// fn must not retain the slice.
func (c Commitment) view(fn func(b []byte)) {
	if c.buf == nil {
		fn(nil)
		return
	}
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	fn(c.buf.data[:c.n])
}

// Bytes returns a copy of the byte serialization.
func (c Commitment) Bytes() []byte {
	out := make([]byte, c.n)
	c.view(func(b []byte) { copy(out, b) })
	return out
}

// Identities returns the identities in append order.
func (c Commitment) Identities() []Identity {
	out := make([]Identity, c.n)
	c.view(func(b []byte) {
		for i, v := range b {
			out[i] = Identity(v)
		}
	})
	return out
}

// At returns the i-th appended identity.
func (c Commitment) At(i int) Identity {
	if i < 0 || i >= c.n {
		panic(fmt.Errorf("commitment index %d out of range [0, %d)", i, c.n))
	}
	var id Identity
	c.view(func(b []byte) { id = Identity(b[i]) })
	return id
}

// Contains reports whether id was appended at any position.
func (c Commitment) Contains(id Identity) bool {
	found := false
	c.view(func(b []byte) {
		for _, v := range b {
			if v == byte(id) {
				found = true
				return
			}
		}
	})
	return found
}

func (c Commitment) Digest() Digest {
	var d Digest
	c.view(func(b []byte) { d = DigestOf(b) })
	return d
}

// Equal compares the exact byte sequences.
func (c Commitment) Equal(other Commitment) bool {
	if c.n != other.n {
		return false
	}
	return bytes.Equal(c.Bytes(), other.Bytes())
}

func (c Commitment) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, id := range c.Identities() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", id)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (c Commitment) MarshalText() ([]byte, error) {
	return hexutil.Bytes(c.Bytes()).MarshalText()
}

func (c *Commitment) UnmarshalText(text []byte) error {
	var b hexutil.Bytes
	if err := b.UnmarshalText(text); err != nil {
		return fmt.Errorf("invalid commitment: %w", err)
	}
	*c = FromBytes(b)
	return nil
}
