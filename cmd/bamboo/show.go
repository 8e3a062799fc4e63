package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/x/ansi"

	"github.com/pietgeursen/bamboo-go/cliutil"
	"github.com/pietgeursen/bamboo-go/entry"
)

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	entryPath := fs.String("entry", "", "path to the encoded entry")
	payloadPath := fs.String("payload", "", "optional payload to print a preview of")
	fs.Bool("json-logs", false, "emit structured JSON logs")
	fs.Parse(args)

	if *entryPath == "" {
		return fmt.Errorf("show: -entry is required")
	}

	entryBytes, err := os.ReadFile(*entryPath)
	if err != nil {
		return fmt.Errorf("show: read entry: %w", err)
	}

	decoded, _, err := entry.Decode(entryBytes)
	if err != nil {
		return fmt.Errorf("show: decode entry: %w", err)
	}

	if err := printJSON(cliutil.NewEntryView(decoded)); err != nil {
		return fmt.Errorf("show: %w", err)
	}

	if *payloadPath != "" {
		payload, err := os.ReadFile(*payloadPath)
		if err != nil {
			return fmt.Errorf("show: read payload: %w", err)
		}
		// Payload bytes are untrusted input; strip any embedded escape
		// sequences before they reach the terminal.
		fmt.Println(ansi.Strip(string(payload)))
	}

	return nil
}
