// Package yamfsig implements Bamboo's signature wire format: a raw,
// fixed-size 64-byte Ed25519 signature with no length prefix. Some
// historical Bamboo variants length-prefix the signature; the canonical
// current format (and the only one this package implements) does not.
package yamfsig

import "errors"

// Size is the fixed wire size of a Signature.
const Size = 64

// ErrBufferTooShort is returned when an encode destination or decode
// source has fewer than Size bytes available.
var ErrBufferTooShort = errors.New("yamfsig: buffer too short")

// Signature is a raw Ed25519 signature.
type Signature [Size]byte

// Encode copies sig's 64 bytes into out, returning Size.
func Encode(sig Signature, out []byte) (int, error) {
	if len(out) < Size {
		return 0, ErrBufferTooShort
	}
	copy(out, sig[:])
	return Size, nil
}

// Decode reads a signature from the front of b, returning it and the
// remaining unconsumed bytes.
func Decode(b []byte) (Signature, []byte, error) {
	if len(b) < Size {
		return Signature{}, nil, ErrBufferTooShort
	}
	var sig Signature
	copy(sig[:], b[:Size])
	return sig, b[Size:], nil
}
