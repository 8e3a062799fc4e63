package store

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Dir is a persistent EntryStore that writes one file per entry under
// root/<author-hex>/<log_id>/<seq_num>.entry.
type Dir struct {
	root string
}

// NewDir opens (creating if necessary) the on-disk store for one
// author's log_id under root.
func NewDir(root string, author []byte, logID uint64) (*Dir, error) {
	dir := filepath.Join(root, hex.EncodeToString(author), strconv.FormatUint(logID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create log directory: %w", err)
	}
	return &Dir{root: dir}, nil
}

func (d *Dir) entryPath(seqNum uint64) string {
	return filepath.Join(d.root, strconv.FormatUint(seqNum, 10)+".entry")
}

func (d *Dir) GetEntry(seqNum uint64) ([]byte, error) {
	b, err := os.ReadFile(d.entryPath(seqNum))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read entry %d: %w", seqNum, err)
	}
	return b, nil
}

func (d *Dir) GetLastSeq() (uint64, bool, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return 0, false, fmt.Errorf("store: list log directory: %w", err)
	}

	var max uint64
	found := false
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".entry")
		if !ok {
			continue
		}
		seq, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			continue
		}
		if !found || seq > max {
			max = seq
			found = true
		}
	}
	return max, found, nil
}

func (d *Dir) GetLastEntry() ([]byte, error) {
	seq, ok, err := d.GetLastSeq()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return d.GetEntry(seq)
}

func (d *Dir) AddEntry(entryBytes []byte, seqNum uint64) error {
	tmp := d.entryPath(seqNum) + ".tmp"
	if err := os.WriteFile(tmp, entryBytes, 0o644); err != nil {
		return fmt.Errorf("store: write entry %d: %w", seqNum, err)
	}
	if err := os.Rename(tmp, d.entryPath(seqNum)); err != nil {
		return fmt.Errorf("store: finalize entry %d: %w", seqNum, err)
	}
	return nil
}
