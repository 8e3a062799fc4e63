// Package verify checks a Bamboo entry's links, payload and signature
// against the material a reader has on hand, including verifying many
// entries from the same author and log in parallel.
package verify

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pietgeursen/bamboo-go/entry"
	"github.com/pietgeursen/bamboo-go/lipmaa"
	"github.com/pietgeursen/bamboo-go/yamfhash"
)

var (
	ErrInvalidSignature           = errors.New("verify: signature is invalid")
	ErrPayloadHashDidNotMatch     = errors.New("verify: payload hash does not match entry")
	ErrPayloadLengthDidNotMatch   = errors.New("verify: payload length does not match entry")
	ErrLipmaaHashDoesNotMatch     = errors.New("verify: lipmaa entry hash does not match entry's lipmaa link")
	ErrLipmaaLogIDDoesNotMatch    = errors.New("verify: lipmaa entry has a different log_id")
	ErrLipmaaAuthorDoesNotMatch   = errors.New("verify: lipmaa entry has a different author")
	ErrLipmaaLinkRequired         = errors.New("verify: entry requires a lipmaa link that was not supplied")
	ErrBacklinkLogIDDoesNotMatch  = errors.New("verify: backlink entry has a different log_id")
	ErrBacklinkAuthorDoesNotMatch = errors.New("verify: backlink entry has a different author")
	ErrPublishedAfterEndOfFeed    = errors.New("verify: backlink entry has is_end_of_feed set")
	ErrBacklinkHashDoesNotMatch   = errors.New("verify: backlink entry hash does not match entry's backlink")
	ErrBackLinkRequired           = errors.New("verify: entry requires a backlink that was not supplied")
)

// LinksAndPayload checks an already-decoded entry's payload hash/length
// (if payload is supplied) and its lipmaa link and backlink (if the
// corresponding entry bytes are supplied) without touching the signature.
// A nil backlink argument is accepted whenever the entry encodes a
// backlink, e.g. during partial replication. A nil lipmaa argument is
// accepted only when the entry needs no separate lipmaa link; for an
// entry that does, it is ErrLipmaaLinkRequired.
func LinksAndPayload(e entry.Entry, payload, lipmaaLinkBytes, backlinkBytes []byte) error {
	if payload != nil {
		payloadHash := yamfhash.NewBlake2b(payload)
		if !payloadHash.Equal(e.PayloadHash) {
			return ErrPayloadHashDidNotMatch
		}
		if uint64(len(payload)) != e.PayloadSize {
			return ErrPayloadLengthDidNotMatch
		}
	}

	lipmaaIsRequired := lipmaa.IsRequired(e.SeqNum)
	switch {
	case e.SeqNum == 1:
		// first entry has no links at all
	case lipmaaLinkBytes != nil && e.LipmaaLink != nil && lipmaaIsRequired:
		lipmaaHash := yamfhash.NewBlake2b(lipmaaLinkBytes)
		if !lipmaaHash.Equal(*e.LipmaaLink) {
			return ErrLipmaaHashDoesNotMatch
		}
		lipmaaEntry, _, err := entry.Decode(lipmaaLinkBytes)
		if err != nil {
			return fmt.Errorf("verify: decode lipmaa entry: %w", err)
		}
		if e.LogID != lipmaaEntry.LogID {
			return ErrLipmaaLogIDDoesNotMatch
		}
		if !authorEqual(e.Author, lipmaaEntry.Author) {
			return ErrLipmaaAuthorDoesNotMatch
		}
	case !lipmaaIsRequired:
		// lipmaa link would duplicate the backlink and was correctly omitted
	default:
		return ErrLipmaaLinkRequired
	}

	switch {
	case e.SeqNum == 1:
		// first entry has no links at all
	case backlinkBytes != nil && e.Backlink != nil:
		backlinkEntry, _, err := entry.Decode(backlinkBytes)
		if err != nil {
			return fmt.Errorf("verify: decode backlink entry: %w", err)
		}
		if e.LogID != backlinkEntry.LogID {
			return ErrBacklinkLogIDDoesNotMatch
		}
		if !authorEqual(e.Author, backlinkEntry.Author) {
			return ErrBacklinkAuthorDoesNotMatch
		}
		if backlinkEntry.IsEndOfFeed {
			return ErrPublishedAfterEndOfFeed
		}
		backlinkHash := yamfhash.NewBlake2b(backlinkBytes)
		if !backlinkHash.Equal(*e.Backlink) {
			return ErrBacklinkHashDoesNotMatch
		}
	case e.Backlink != nil:
		// don't hold the backlink entry; happens during partial replication
	default:
		return ErrBackLinkRequired
	}

	return nil
}

// Signature checks e's signature over its unsigned bytes.
func Signature(e entry.Entry) error {
	if e.Sig == nil {
		return ErrInvalidSignature
	}
	buf := make([]byte, entry.EncodingLength(e))
	n, err := entry.EncodeForSigning(e, buf)
	if err != nil {
		return fmt.Errorf("verify: re-encode entry for signing: %w", err)
	}
	if !ed25519.Verify(ed25519.PublicKey(e.Author), buf[:n], e.Sig[:]) {
		return ErrInvalidSignature
	}
	return nil
}

func authorEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Verify decodes entryBytes and checks its links, payload and signature.
// payload, lipmaaLinkBytes and backlinkBytes are all optional; see
// LinksAndPayload for when omitting them is acceptable.
func Verify(entryBytes, payload, lipmaaLinkBytes, backlinkBytes []byte) error {
	e, _, err := entry.Decode(entryBytes)
	if err != nil {
		return fmt.Errorf("verify: decode entry: %w", err)
	}
	if err := LinksAndPayload(e, payload, lipmaaLinkBytes, backlinkBytes); err != nil {
		return err
	}
	return Signature(e)
}

// Item is one entry to check in a Batch call, alongside its optional
// payload.
type Item struct {
	EntryBytes  []byte
	PayloadBytes []byte
}

// Batch verifies the links, payloads and signatures of entries that are
// all from the same author and the same log_id. Links and payloads are
// checked by seq_num lookup within the batch itself rather than against
// an external store, so items should form a contiguous (or at least
// self-referencing) run of a single feed. The links/payload phase and the
// signature phase each fan out with one goroutine per entry; any single
// failure fails the whole batch.
func Batch(items []Item) error {
	entries := make([]entry.Entry, len(items))
	bySeq := make(map[uint64]int, len(items))

	for i, item := range items {
		e, _, err := entry.Decode(item.EntryBytes)
		if err != nil {
			return fmt.Errorf("verify: decode entry %d: %w", i, err)
		}
		entries[i] = e
		bySeq[e.SeqNum] = i
	}

	var g errgroup.Group
	for i := range items {
		i := i
		g.Go(func() error {
			e := entries[i]

			var lipmaaBytes, backlinkBytes []byte
			if j, ok := bySeq[lipmaa.Lipmaa(e.SeqNum)]; ok {
				lipmaaBytes = items[j].EntryBytes
			}
			if j, ok := bySeq[e.SeqNum-1]; ok && e.SeqNum > 0 {
				backlinkBytes = items[j].EntryBytes
			}

			if err := LinksAndPayload(e, items[i].PayloadBytes, lipmaaBytes, backlinkBytes); err != nil {
				return fmt.Errorf("verify: entry seq %d: %w", e.SeqNum, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Ed25519 batch verification is not exposed by the standard library,
	// so signatures are checked independently here rather than with a
	// single combined batch-verify call. They still fan out with one
	// goroutine per entry, as the links/payload phase does, so a large
	// batch pays for parallelism, not just correctness.
	var sg errgroup.Group
	for i := range entries {
		i := i
		sg.Go(func() error {
			if err := Signature(entries[i]); err != nil {
				return fmt.Errorf("verify: entry seq %d: %w", entries[i].SeqNum, err)
			}
			return nil
		})
	}
	return sg.Wait()
}
