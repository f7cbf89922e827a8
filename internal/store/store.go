// Package store implements the encrypted keyring (spec §4.1, C2): a
// relational schema (sqlite, opened idempotently) tying keypairs, hardware
// wallets, multisigs, the address book and tags together, with per-record
// envelope encryption of secrets under a passphrase-derived key.
package store

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store owns the sqlite handle backing the keyring database named in
// spec §6 (<home>/.solana-keyring/keyring.db).
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if absent) the sqlite database at path and applies
// the schema idempotently via embedded goose migrations.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// The store assumes exclusive access outside of the agent (spec §4.1
	// "Ordering & atomicity"); a single connection keeps sqlite's
	// file-level locking simple and avoids cross-connection races within
	// one process.
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrationFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("store: set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
