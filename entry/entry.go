// Package entry implements Bamboo's entry codec: the wire format for a
// single signed log entry, and the borrowed-view decode that lets a
// caller inspect an entry without copying out of its backing buffer.
package entry

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/pietgeursen/bamboo-go/lipmaa"
	"github.com/pietgeursen/bamboo-go/varu64"
	"github.com/pietgeursen/bamboo-go/yamfhash"
	"github.com/pietgeursen/bamboo-go/yamfsig"
)

// AuthorSize is the length, in bytes, of the raw Ed25519 public key that
// identifies an entry's author.
const AuthorSize = 32

const tagByteLength = 1
const maxVaru64Size = 9

// MaxEntrySize is the largest an encoded entry can ever be: the end-of-feed
// tag, the author key, a payload hash, a backlink and a lipmaa link each at
// their encoded size, three varu64 fields at their largest encoded size,
// and a signature.
const MaxEntrySize = tagByteLength + yamfsig.Size + AuthorSize + (yamfhash.EncodedSize * 3) + (maxVaru64Size * 3)

var (
	ErrEncodeBufferLength                 = errors.New("entry: out buffer shorter than encoding length")
	ErrEncodeSeqIsZero                    = errors.New("entry: seq_num is zero")
	ErrEncodeEntryHasBacklinksWhenSeqZero  = errors.New("entry: backlink or lipmaa link set on an entry with seq_num <= 1")
	ErrEncodeAuthorLength                  = errors.New("entry: author is not AuthorSize bytes")
	ErrEncodeLogIDError                    = errors.New("entry: failed to encode log_id")
	ErrEncodeSeqError                      = errors.New("entry: failed to encode seq_num")
	ErrEncodeLipmaaError                   = errors.New("entry: failed to encode lipmaa link")
	ErrEncodeBacklinkError                 = errors.New("entry: failed to encode backlink")
	ErrEncodePayloadSizeError              = errors.New("entry: failed to encode payload_size")
	ErrEncodePayloadHashError              = errors.New("entry: failed to encode payload hash")
	ErrEncodeSigError                      = errors.New("entry: failed to encode signature")

	ErrDecodeInputIsLengthZero = errors.New("entry: input has length 0")
	ErrDecodeAuthorError       = errors.New("entry: could not decode author, input too short or not a valid Ed25519 point")
	ErrDecodeLogIDError        = errors.New("entry: failed to decode log_id")
	ErrDecodeSeqError          = errors.New("entry: failed to decode seq_num")
	ErrDecodeSeqIsZero         = errors.New("entry: seq_num decoded as zero")
	ErrDecodeLipmaaError       = errors.New("entry: failed to decode lipmaa link")
	ErrDecodeBacklinkError     = errors.New("entry: failed to decode backlink")
	ErrDecodePayloadSizeError  = errors.New("entry: failed to decode payload_size")
	ErrDecodePayloadHashError  = errors.New("entry: failed to decode payload hash")
	ErrDecodeSigError          = errors.New("entry: failed to decode signature")
)

// Entry is a single Bamboo log entry. A decoded Entry borrows Author,
// PayloadHash, Backlink, LipmaaLink and Sig from the byte slice it was
// decoded out of; use Owned to obtain copies that outlive that buffer.
type Entry struct {
	IsEndOfFeed bool
	Author      []byte
	LogID       uint64
	SeqNum      uint64
	Backlink    *yamfhash.Hash
	LipmaaLink  *yamfhash.Hash
	PayloadSize uint64
	PayloadHash yamfhash.Hash
	Sig         *yamfsig.Signature
}

// Owned returns a copy of e whose Author, hashes and signature do not
// alias any slice e itself borrows from.
func (e Entry) Owned() Entry {
	author := make([]byte, len(e.Author))
	copy(author, e.Author)

	owned := Entry{
		IsEndOfFeed: e.IsEndOfFeed,
		Author:      author,
		LogID:       e.LogID,
		SeqNum:      e.SeqNum,
		PayloadSize: e.PayloadSize,
		PayloadHash: e.PayloadHash.Owned(),
	}
	if e.Backlink != nil {
		h := e.Backlink.Owned()
		owned.Backlink = &h
	}
	if e.LipmaaLink != nil {
		h := e.LipmaaLink.Owned()
		owned.LipmaaLink = &h
	}
	if e.Sig != nil {
		sig := *e.Sig
		owned.Sig = &sig
	}
	return owned
}

// EncodingLength returns the exact number of bytes Encode would write for e.
func EncodingLength(e Entry) int {
	n := tagByteLength + len(e.Author) + varu64.EncodingLength(e.LogID) + varu64.EncodingLength(e.SeqNum)
	if e.Backlink != nil {
		n += yamfhash.EncodedSize
	}
	if e.LipmaaLink != nil {
		n += yamfhash.EncodedSize
	}
	n += varu64.EncodingLength(e.PayloadSize) + yamfhash.EncodedSize
	if e.Sig != nil {
		n += yamfsig.Size
	}
	return n
}

// EncodeForSigning writes every field of e except the signature into out,
// in the exact byte order that the signature is computed over. It returns
// the number of bytes written.
func EncodeForSigning(e Entry, out []byte) (int, error) {
	if len(out) < EncodingLength(e) {
		return 0, ErrEncodeBufferLength
	}
	if e.SeqNum == 0 {
		return 0, ErrEncodeSeqIsZero
	}
	if len(e.Author) != AuthorSize {
		return 0, ErrEncodeAuthorLength
	}
	if e.SeqNum <= 1 && (e.Backlink != nil || e.LipmaaLink != nil) {
		return 0, ErrEncodeEntryHasBacklinksWhenSeqZero
	}

	n := 0
	if e.IsEndOfFeed {
		out[0] = 1
	} else {
		out[0] = 0
	}
	n++

	n += copy(out[n:], e.Author)

	m, err := varu64.Encode(e.LogID, out[n:])
	if err != nil {
		return 0, fmt.Errorf("entry: encode log_id: %w: %w", ErrEncodeLogIDError, err)
	}
	n += m

	m, err = varu64.Encode(e.SeqNum, out[n:])
	if err != nil {
		return 0, fmt.Errorf("entry: encode seq_num: %w: %w", ErrEncodeSeqError, err)
	}
	n += m

	// A seq_num > 1 with no backlink set is a caller precondition
	// violation: publish always supplies one. Nothing is written in
	// that case, matching what a decoder would then reject.
	if e.SeqNum > 1 && e.Backlink != nil {
		if e.LipmaaLink != nil {
			m, err = yamfhash.Encode(*e.LipmaaLink, out[n:])
			if err != nil {
				return 0, fmt.Errorf("entry: encode lipmaa link: %w: %w", ErrEncodeLipmaaError, err)
			}
			n += m
		}
		m, err = yamfhash.Encode(*e.Backlink, out[n:])
		if err != nil {
			return 0, fmt.Errorf("entry: encode backlink: %w: %w", ErrEncodeBacklinkError, err)
		}
		n += m
	}

	m, err = varu64.Encode(e.PayloadSize, out[n:])
	if err != nil {
		return 0, fmt.Errorf("entry: encode payload_size: %w: %w", ErrEncodePayloadSizeError, err)
	}
	n += m

	m, err = yamfhash.Encode(e.PayloadHash, out[n:])
	if err != nil {
		return 0, fmt.Errorf("entry: encode payload hash: %w: %w", ErrEncodePayloadHashError, err)
	}
	n += m

	return n, nil
}

// Encode writes e's full wire form, including its signature, into out. The
// caller must have set e.Sig (e.g. via publish) before calling Encode.
func Encode(e Entry, out []byte) (int, error) {
	n, err := EncodeForSigning(e, out)
	if err != nil {
		return 0, err
	}
	if e.Sig != nil {
		m, err := yamfsig.Encode(*e.Sig, out[n:])
		if err != nil {
			return 0, fmt.Errorf("entry: encode signature: %w: %w", ErrEncodeSigError, err)
		}
		n += m
	}
	return n, nil
}

// Decode reads an entry from the front of b, returning it and the
// remaining unconsumed bytes. Author, PayloadHash, Backlink, LipmaaLink
// and Sig all borrow from b.
func Decode(b []byte) (Entry, []byte, error) {
	if len(b) == 0 {
		return Entry{}, nil, ErrDecodeInputIsLengthZero
	}
	isEndOfFeed := b[0] == 1

	if len(b) < 1+AuthorSize {
		return Entry{}, nil, ErrDecodeAuthorError
	}
	author := b[1 : 1+AuthorSize]
	if _, err := new(edwards25519.Point).SetBytes(author); err != nil {
		return Entry{}, nil, fmt.Errorf("entry: decode author: %w: %w", ErrDecodeAuthorError, err)
	}
	rest := b[1+AuthorSize:]

	logID, rest, err := varu64.Decode(rest)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("entry: decode log_id: %w: %w", ErrDecodeLogIDError, err)
	}

	seqNum, rest, err := varu64.Decode(rest)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("entry: decode seq_num: %w: %w", ErrDecodeSeqError, err)
	}
	if seqNum == 0 {
		return Entry{}, nil, ErrDecodeSeqIsZero
	}

	var backlink, lipmaaLink *yamfhash.Hash
	switch {
	case seqNum == 1:
		// no links on the first entry of a feed
	case lipmaa.IsRequired(seqNum):
		var lh, bh yamfhash.Hash
		lh, rest, err = yamfhash.Decode(rest)
		if err != nil {
			return Entry{}, nil, fmt.Errorf("entry: decode lipmaa link: %w: %w", ErrDecodeLipmaaError, err)
		}
		lipmaaLink = &lh

		bh, rest, err = yamfhash.Decode(rest)
		if err != nil {
			return Entry{}, nil, fmt.Errorf("entry: decode backlink: %w: %w", ErrDecodeBacklinkError, err)
		}
		backlink = &bh
	default:
		var bh yamfhash.Hash
		bh, rest, err = yamfhash.Decode(rest)
		if err != nil {
			return Entry{}, nil, fmt.Errorf("entry: decode backlink: %w: %w", ErrDecodeBacklinkError, err)
		}
		backlink = &bh
	}

	payloadSize, rest, err := varu64.Decode(rest)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("entry: decode payload_size: %w: %w", ErrDecodePayloadSizeError, err)
	}

	payloadHash, rest, err := yamfhash.Decode(rest)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("entry: decode payload hash: %w: %w", ErrDecodePayloadHashError, err)
	}

	sig, rest, err := yamfsig.Decode(rest)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("entry: decode signature: %w: %w", ErrDecodeSigError, err)
	}

	return Entry{
		IsEndOfFeed: isEndOfFeed,
		Author:      author,
		LogID:       logID,
		SeqNum:      seqNum,
		Backlink:    backlink,
		LipmaaLink:  lipmaaLink,
		PayloadSize: payloadSize,
		PayloadHash: payloadHash,
		Sig:         &sig,
	}, rest, nil
}
