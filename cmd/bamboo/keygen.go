package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

func runKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	out := fs.String("out", "", "path to write the generated key pair (YAML)")
	fs.Bool("json-logs", false, "emit structured JSON logs")
	fs.Parse(args)

	if *out == "" {
		return fmt.Errorf("keygen: -out is required")
	}

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("keygen: generate key: %w", err)
	}

	data, err := yaml.Marshal(keyFile{
		PublicKey:  hex.EncodeToString(pub),
		PrivateKey: hex.EncodeToString(priv),
	})
	if err != nil {
		return fmt.Errorf("keygen: marshal key file: %w", err)
	}

	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return fmt.Errorf("keygen: write key file: %w", err)
	}

	slog.Info("generated key pair", "out", *out, "publicKey", hex.EncodeToString(pub))
	return nil
}
