// Package feed wraps an entry store with the publish and verify
// operations to give a single author's single log a convenient
// read/write API. It is a reference composition, not part of the core
// codec: anything that can produce and store bytes the same way could
// replace it.
package feed

import (
	"fmt"

	"github.com/pietgeursen/bamboo-go/entry"
	"github.com/pietgeursen/bamboo-go/lipmaa"
	"github.com/pietgeursen/bamboo-go/publish"
	"github.com/pietgeursen/bamboo-go/store"
	"github.com/pietgeursen/bamboo-go/verify"
)

// Log is one author's log_id: a store plus, optionally, the key pair
// needed to publish new entries to it. A Log with a nil KeyPair can still
// Add entries authored elsewhere.
type Log struct {
	Store   store.EntryStore
	LogID   uint64
	KeyPair *publish.KeyPair
}

// New wraps s as a Log. keyPair may be nil for a read-only, remotely
// authored log.
func New(s store.EntryStore, logID uint64, keyPair *publish.KeyPair) *Log {
	return &Log{Store: s, LogID: logID, KeyPair: keyPair}
}

// Publish builds, signs, appends and returns the next entry for payload.
func (l *Log) Publish(payload []byte, isEndOfFeed bool) ([]byte, error) {
	if l.KeyPair == nil {
		return nil, fmt.Errorf("feed: log has no key pair to publish with")
	}

	lastSeq, hasLast, err := l.Store.GetLastSeq()
	if err != nil {
		return nil, fmt.Errorf("feed: get last seq: %w", err)
	}

	var prevSeq *uint64
	var lipmaaBytes, backlinkBytes []byte
	if hasLast {
		prevSeq = &lastSeq

		lipmaaSeq := lipmaa.Lipmaa(lastSeq + 1)
		lipmaaBytes, err = l.Store.GetEntry(lipmaaSeq)
		if err != nil {
			return nil, fmt.Errorf("feed: get lipmaa entry: %w", err)
		}
		backlinkBytes, err = l.Store.GetEntry(lastSeq)
		if err != nil {
			return nil, fmt.Errorf("feed: get backlink entry: %w", err)
		}
	}

	buf := make([]byte, entry.MaxEntrySize)
	n, err := publish.Publish(buf, *l.KeyPair, l.LogID, payload, isEndOfFeed, prevSeq, lipmaaBytes, backlinkBytes)
	if err != nil {
		return nil, fmt.Errorf("feed: publish: %w", err)
	}
	encoded := buf[:n]

	decoded, _, err := entry.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("feed: decode freshly published entry: %w", err)
	}
	if err := l.Store.AddEntry(encoded, decoded.SeqNum); err != nil {
		return nil, fmt.Errorf("feed: append entry: %w", err)
	}

	return encoded, nil
}

// Add verifies and appends an entry authored elsewhere. Its lipmaa link
// must already be present in Store, so entries replicated out of order
// must be added oldest seq_num first.
func (l *Log) Add(entryBytes []byte, payload []byte) error {
	e, _, err := entry.Decode(entryBytes)
	if err != nil {
		return fmt.Errorf("feed: decode entry: %w", err)
	}

	lipmaaBytes, err := l.Store.GetEntry(lipmaa.Lipmaa(e.SeqNum))
	if err != nil {
		return fmt.Errorf("feed: get lipmaa entry: %w", err)
	}

	var backlinkBytes []byte
	if e.SeqNum > 1 {
		backlinkBytes, err = l.Store.GetEntry(e.SeqNum - 1)
		if err != nil {
			return fmt.Errorf("feed: get backlink entry: %w", err)
		}
	}

	if err := verify.Verify(entryBytes, payload, lipmaaBytes, backlinkBytes); err != nil {
		return fmt.Errorf("feed: verify entry: %w", err)
	}

	return l.Store.AddEntry(entryBytes, e.SeqNum)
}
