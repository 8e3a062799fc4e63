// Command bamboo publishes, verifies and inspects entries in a
// single-author, hash-linked Bamboo log from the command line.
package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/pietgeursen/bamboo-go/cliutil"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var exitErr *cliutil.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "bamboo: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return &cliutil.ExitError{Code: usage()}
	}

	jsonLogs := false
	for _, a := range args {
		if a == "-json-logs" {
			jsonLogs = true
		}
	}
	setupLogging(jsonLogs)

	switch args[0] {
	case "keygen":
		return runKeygen(args[1:])
	case "publish":
		return runPublish(args[1:])
	case "verify":
		return runVerify(args[1:])
	case "verify-batch":
		return runVerifyBatch(args[1:])
	case "show":
		return runShow(args[1:])
	case "-h", "-help", "--help", "help":
		return &cliutil.ExitError{Code: usage()}
	default:
		fmt.Fprintf(os.Stderr, "bamboo: unknown command %q\n", args[0])
		return &cliutil.ExitError{Code: usage()}
	}
}

func usage() int {
	fmt.Fprintln(os.Stderr, `usage: bamboo <command> [flags]

commands:
  keygen         generate an Ed25519 key pair
  publish        publish a new entry to a log
  verify         verify a single entry
  verify-batch   verify every entry in a store directory
  show           print an entry as JSON`)
	return 2
}

func setupLogging(jsonLogs bool) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if jsonLogs || !term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// keyFile is the on-disk YAML representation of an Ed25519 key pair.
type keyFile struct {
	PublicKey  string `yaml:"publicKey"`
	PrivateKey string `yaml:"privateKey"`
}

func loadKeyFile(path string) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read key file: %w", err)
	}
	var kf keyFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, nil, fmt.Errorf("parse key file: %w", err)
	}
	pub, err := hex.DecodeString(kf.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("decode public key: %w", err)
	}
	priv, err := hex.DecodeString(kf.PrivateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("decode private key: %w", err)
	}
	return ed25519.PublicKey(pub), ed25519.PrivateKey(priv), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
