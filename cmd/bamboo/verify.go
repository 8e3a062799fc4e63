package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pietgeursen/bamboo-go/verify"
)

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	entryPath := fs.String("entry", "", "path to the encoded entry")
	payloadPath := fs.String("payload", "", "path to the payload (optional)")
	lipmaaPath := fs.String("lipmaa", "", "path to the lipmaa link entry (optional)")
	backlinkPath := fs.String("backlink", "", "path to the backlink entry (optional)")
	fs.Bool("json-logs", false, "emit structured JSON logs")
	fs.Parse(args)

	if *entryPath == "" {
		return fmt.Errorf("verify: -entry is required")
	}

	entryBytes, err := os.ReadFile(*entryPath)
	if err != nil {
		return fmt.Errorf("verify: read entry: %w", err)
	}

	payload, err := readOptional(*payloadPath)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	lipmaaBytes, err := readOptional(*lipmaaPath)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	backlinkBytes, err := readOptional(*backlinkPath)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if err := verify.Verify(entryBytes, payload, lipmaaBytes, backlinkBytes); err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	slog.Info("entry verified ok", "entry", *entryPath)
	return nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}
