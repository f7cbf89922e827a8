package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/solana-keyring/keyring/internal/keypair"
)

// loadKeypairFile reads a JSON or base58 keypair file (spec §6), trying
// JSON first since it is unambiguous (a leading '[').
func loadKeypairFile(path string) (*keypair.Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return keypair.ImportJSON(trimmed)
	}
	return keypair.ImportBase58(strings.TrimSpace(string(trimmed)))
}

// writeKeypairFile writes kp as a JSON array file with owner-only
// permissions (spec §6: "exported files are created with 0o600 where
// supported").
func writeKeypairFile(path string, kp *keypair.Keypair) error {
	data, err := kp.ExportJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write keypair file: %w", err)
	}
	return nil
}
