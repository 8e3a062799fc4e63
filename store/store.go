// Package store defines the entry storage contract a Log needs and
// provides two reference implementations of it: an in-memory store and a
// file-per-entry directory store. Neither is part of the core codec;
// both exist so feed.Log has something concrete to run against.
package store

import (
	"sync"

	"github.com/google/btree"
)

// EntryStore holds the entries of a single author's single log, keyed by
// seq_num. A missing entry is reported as (nil, nil), not an error: most
// callers (partial replication, lipmaa lookups during add) treat "don't
// have it" as an ordinary case rather than a failure.
type EntryStore interface {
	GetLastSeq() (seqNum uint64, ok bool, err error)
	GetEntry(seqNum uint64) (entryBytes []byte, err error)
	GetLastEntry() (entryBytes []byte, err error)
	AddEntry(entryBytes []byte, seqNum uint64) error
}

type seqEntry struct {
	seqNum uint64
	bytes  []byte
}

func lessSeqEntry(a, b seqEntry) bool { return a.seqNum < b.seqNum }

// Memory is an in-memory EntryStore backed by a B-tree keyed on seq_num,
// so GetLastEntry and GetLastSeq are cheap max lookups rather than a full
// scan. btree.BTreeG is not itself safe for concurrent use, so mu guards
// every access. Safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[seqEntry]
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{tree: btree.NewG(32, lessSeqEntry)}
}

func (m *Memory) GetLastSeq() (uint64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max, ok := m.tree.Max()
	if !ok {
		return 0, false, nil
	}
	return max.seqNum, true, nil
}

func (m *Memory) GetEntry(seqNum uint64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.tree.Get(seqEntry{seqNum: seqNum})
	if !ok {
		return nil, nil
	}
	return item.bytes, nil
}

func (m *Memory) GetLastEntry() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max, ok := m.tree.Max()
	if !ok {
		return nil, nil
	}
	return max.bytes, nil
}

func (m *Memory) AddEntry(entryBytes []byte, seqNum uint64) error {
	cp := make([]byte, len(entryBytes))
	copy(cp, entryBytes)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.ReplaceOrInsert(seqEntry{seqNum: seqNum, bytes: cp})
	return nil
}
