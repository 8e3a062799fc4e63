package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pietgeursen/bamboo-go/feed"
	"github.com/pietgeursen/bamboo-go/publish"
	"github.com/pietgeursen/bamboo-go/store"
)

func runPublish(args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	keyPath := fs.String("key", "", "path to the key file (YAML)")
	storeDir := fs.String("store", "", "path to the store directory")
	logID := fs.Uint64("log-id", 0, "log_id to publish to")
	payloadPath := fs.String("payload", "", "path to the payload file")
	isEndOfFeed := fs.Bool("end-of-feed", false, "mark this entry as the last in the feed")
	fs.Bool("json-logs", false, "emit structured JSON logs")
	fs.Parse(args)

	if *keyPath == "" || *storeDir == "" || *payloadPath == "" {
		return fmt.Errorf("publish: -key, -store and -payload are required")
	}

	pub, priv, err := loadKeyFile(*keyPath)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	payload, err := os.ReadFile(*payloadPath)
	if err != nil {
		return fmt.Errorf("publish: read payload: %w", err)
	}

	s, err := store.NewDir(*storeDir, pub, *logID)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	kp := &publish.KeyPair{PublicKey: pub, PrivateKey: priv}
	log := feed.New(s, *logID, kp)

	entryBytes, err := log.Publish(payload, *isEndOfFeed)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	slog.Info("published entry", "author", hex.EncodeToString(pub), "logId", *logID, "bytes", len(entryBytes))
	return nil
}
