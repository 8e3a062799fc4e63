// Package publish builds and signs the next entry in a single-author log.
package publish

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/pietgeursen/bamboo-go/entry"
	"github.com/pietgeursen/bamboo-go/lipmaa"
	"github.com/pietgeursen/bamboo-go/yamfhash"
	"github.com/pietgeursen/bamboo-go/yamfsig"
)

var (
	ErrAfterEndOfFeed               = errors.New("publish: backlink entry has is_end_of_feed set")
	ErrIncorrectBacklinkLogID       = errors.New("publish: backlink entry has a different log_id")
	ErrIncorrectLipmaaLinkLogID     = errors.New("publish: lipmaa link entry has a different log_id")
	ErrKeyPairDidNotMatchBacklink   = errors.New("publish: key pair does not match backlink entry's author")
	ErrKeyPairDidNotMatchLipmaa     = errors.New("publish: key pair does not match lipmaa link entry's author")
	ErrWithoutLipmaaEntry           = errors.New("publish: seq_num > 1 but no lipmaa entry bytes given")
	ErrWithoutBacklinkEntry         = errors.New("publish: seq_num > 1 but no backlink entry bytes given")
)

// KeyPair is the Ed25519 signing identity of a log's single writer.
type KeyPair struct {
	PublicKey ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// Publish builds, signs and encodes the next entry into out.
//
//   - logID distinguishes multiple logs kept by the same author.
//   - payload is hashed into the entry; storing the payload itself is the
//     caller's responsibility.
//   - previousSeqNum is nil for a log's first entry, else the seq_num of
//     the entry immediately before this one.
//   - lipmaaEntryBytes and backlinkEntryBytes are the encoded bytes of the
//     entries this one must link to; both are nil only when
//     previousSeqNum is nil.
//
// Publish returns the number of bytes written to out.
func Publish(out []byte, keyPair KeyPair, logID uint64, payload []byte, isEndOfFeed bool, previousSeqNum *uint64, lipmaaEntryBytes, backlinkEntryBytes []byte) (int, error) {
	payloadHash := yamfhash.NewBlake2b(payload)

	var seqNum uint64 = 1
	if previousSeqNum != nil {
		seqNum = *previousSeqNum + 1
	}

	e := entry.Entry{
		IsEndOfFeed: isEndOfFeed,
		Author:      []byte(keyPair.PublicKey),
		LogID:       logID,
		SeqNum:      seqNum,
		PayloadSize: uint64(len(payload)),
		PayloadHash: payloadHash,
	}

	if seqNum > 1 {
		if backlinkEntryBytes == nil {
			return 0, ErrWithoutBacklinkEntry
		}
		if lipmaaEntryBytes == nil {
			return 0, ErrWithoutLipmaaEntry
		}

		backlinkEntry, _, err := entry.Decode(backlinkEntryBytes)
		if err != nil {
			return 0, fmt.Errorf("publish: decode backlink entry: %w", err)
		}
		lipmaaEntry, _, err := entry.Decode(lipmaaEntryBytes)
		if err != nil {
			return 0, fmt.Errorf("publish: decode lipmaa entry: %w", err)
		}

		if backlinkEntry.IsEndOfFeed {
			return 0, ErrAfterEndOfFeed
		}
		if logID != backlinkEntry.LogID {
			return 0, ErrIncorrectBacklinkLogID
		}
		if !publicKeyEqual(keyPair.PublicKey, backlinkEntry.Author) {
			return 0, ErrKeyPairDidNotMatchBacklink
		}
		if !publicKeyEqual(keyPair.PublicKey, lipmaaEntry.Author) {
			return 0, ErrKeyPairDidNotMatchLipmaa
		}
		if logID != lipmaaEntry.LogID {
			return 0, ErrIncorrectLipmaaLinkLogID
		}

		backlinkHash := yamfhash.NewBlake2b(backlinkEntryBytes)
		e.Backlink = &backlinkHash

		// Omit the lipmaa link when it would duplicate the backlink.
		if lipmaa.IsRequired(seqNum) {
			lipmaaHash := yamfhash.NewBlake2b(lipmaaEntryBytes)
			e.LipmaaLink = &lipmaaHash
		}
	}

	unsignedLen, err := entry.EncodeForSigning(e, out)
	if err != nil {
		return 0, fmt.Errorf("publish: encode for signing: %w", err)
	}

	var sig yamfsig.Signature
	copy(sig[:], ed25519.Sign(keyPair.PrivateKey, out[:unsignedLen]))
	e.Sig = &sig

	n, err := entry.Encode(e, out)
	if err != nil {
		return 0, fmt.Errorf("publish: encode signed entry: %w", err)
	}
	return n, nil
}

func publicKeyEqual(pub ed25519.PublicKey, author []byte) bool {
	if len(pub) != len(author) {
		return false
	}
	for i := range pub {
		if pub[i] != author[i] {
			return false
		}
	}
	return true
}
