// Package yamfhash implements Bamboo's tagged-hash wire format: a varint
// algorithm tag, a varint digest length, and the digest bytes themselves.
// Only the BLAKE2b-512 variant is implemented; any other tag decodes as
// ErrUnknownAlgorithm rather than being silently accepted, since YamfHash
// is an open sum type on the wire (future algorithms may be added later).
package yamfhash

import (
	"errors"

	"golang.org/x/crypto/blake2b"

	"github.com/pietgeursen/bamboo-go/varu64"
)

// AlgoBlake2b is the only defined algorithm tag.
const AlgoBlake2b = 0

// DigestSize is the digest length, in bytes, for AlgoBlake2b.
const DigestSize = 64

// EncodedSize is the fixed wire size of a Hash: one byte for the algorithm
// tag, one byte for the digest-length varint, and 64 digest bytes.
const EncodedSize = 1 + 1 + DigestSize

var (
	// ErrUnknownAlgorithm is returned when the tag is not AlgoBlake2b.
	ErrUnknownAlgorithm = errors.New("yamfhash: unknown algorithm tag")
	// ErrWrongDigestLength is returned when the declared digest length
	// does not match the algorithm's fixed size.
	ErrWrongDigestLength = errors.New("yamfhash: wrong digest length for algorithm")
	// ErrBufferTooShort is returned when an encode destination or a
	// decode source does not have enough bytes.
	ErrBufferTooShort = errors.New("yamfhash: buffer too short")
)

// Hash is a tagged content hash. Digest borrows from whatever byte slice
// it was decoded out of; callers that need an independent copy should use
// Owned.
type Hash struct {
	Algorithm uint64
	Digest    []byte
}

// NewBlake2b computes the BLAKE2b-512 digest of data and wraps it.
func NewBlake2b(data []byte) Hash {
	sum := blake2b.Sum512(data)
	return Hash{Algorithm: AlgoBlake2b, Digest: sum[:]}
}

// Owned returns a copy of h whose digest does not alias any other slice.
func (h Hash) Owned() Hash {
	digest := make([]byte, len(h.Digest))
	copy(digest, h.Digest)
	return Hash{Algorithm: h.Algorithm, Digest: digest}
}

// Equal reports whether two hashes have the same algorithm and digest.
func (h Hash) Equal(other Hash) bool {
	if h.Algorithm != other.Algorithm || len(h.Digest) != len(other.Digest) {
		return false
	}
	for i := range h.Digest {
		if h.Digest[i] != other.Digest[i] {
			return false
		}
	}
	return true
}

// Encode writes h's wire form into out, returning the number of bytes
// written.
func Encode(h Hash, out []byte) (int, error) {
	if h.Algorithm != AlgoBlake2b {
		return 0, ErrUnknownAlgorithm
	}
	if len(h.Digest) != DigestSize {
		return 0, ErrWrongDigestLength
	}
	if len(out) < EncodedSize {
		return 0, ErrBufferTooShort
	}
	n, err := varu64.Encode(h.Algorithm, out)
	if err != nil {
		return 0, err
	}
	m, err := varu64.Encode(uint64(len(h.Digest)), out[n:])
	if err != nil {
		return 0, err
	}
	copy(out[n+m:], h.Digest)
	return n + m + len(h.Digest), nil
}

// Decode reads a tagged hash from the front of b, returning the hash
// (borrowing from b) and the remaining unconsumed bytes.
func Decode(b []byte) (Hash, []byte, error) {
	algo, rest, err := varu64.Decode(b)
	if err != nil {
		return Hash{}, nil, err
	}
	if algo != AlgoBlake2b {
		return Hash{}, nil, ErrUnknownAlgorithm
	}
	length, rest, err := varu64.Decode(rest)
	if err != nil {
		return Hash{}, nil, err
	}
	if length != DigestSize {
		return Hash{}, nil, ErrWrongDigestLength
	}
	if uint64(len(rest)) < length {
		return Hash{}, nil, ErrBufferTooShort
	}
	return Hash{Algorithm: algo, Digest: rest[:length]}, rest[length:], nil
}
