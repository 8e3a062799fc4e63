package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/pietgeursen/bamboo-go/verify"
)

func runVerifyBatch(args []string) error {
	fs := flag.NewFlagSet("verify-batch", flag.ExitOnError)
	dir := fs.String("dir", "", "path to a log's entry directory (as laid out by store.Dir)")
	payloadsDir := fs.String("payloads", "", "optional directory of <seq_num>.payload files")
	fs.Bool("json-logs", false, "emit structured JSON logs")
	fs.Parse(args)

	if *dir == "" {
		return fmt.Errorf("verify-batch: -dir is required")
	}

	files, err := entryFilesSortedBySeq(*dir)
	if err != nil {
		return fmt.Errorf("verify-batch: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("verify-batch: no entries found in %s", *dir)
	}

	bar := progressbar.Default(int64(len(files)), "reading entries")
	items := make([]verify.Item, 0, len(files))
	for _, f := range files {
		entryBytes, err := os.ReadFile(filepath.Join(*dir, f.name))
		if err != nil {
			return fmt.Errorf("verify-batch: read %s: %w", f.name, err)
		}

		var payload []byte
		if *payloadsDir != "" {
			payload, err = os.ReadFile(filepath.Join(*payloadsDir, strconv.FormatUint(f.seq, 10)+".payload"))
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("verify-batch: read payload for seq %d: %w", f.seq, err)
			}
		}

		items = append(items, verify.Item{EntryBytes: entryBytes, PayloadBytes: payload})
		bar.Add(1)
	}

	if err := verify.Batch(items); err != nil {
		return fmt.Errorf("verify-batch: %w", err)
	}

	slog.Info("batch verified ok", "dir", *dir, "entries", len(items))
	return nil
}

type seqFile struct {
	seq  uint64
	name string
}

func entryFilesSortedBySeq(dir string) ([]seqFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list entry directory: %w", err)
	}

	var files []seqFile
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".entry")
		if !ok {
			continue
		}
		seq, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, seqFile{seq: seq, name: e.Name()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].seq < files[j].seq })
	return files, nil
}
