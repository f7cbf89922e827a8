package store

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// HardwareRecord is a registered hardware-wallet entry (spec §3). No secret
// is ever stored for these; the device holds it.
type HardwareRecord struct {
	Pubkey         string
	Label          string
	DerivationPath string
	CreatedAt      time.Time
}

// StoreHardwareWallet registers a hardware wallet's public key, label and
// derivation path.
func (s *Store) StoreHardwareWallet(pubkey, label, derivationPath string, tags []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "begin tx", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.Exec(
		`INSERT INTO ledger_wallets (pubkey, label, derivation_path, created_at) VALUES (?, ?, ?, ?)`,
		pubkey, label, derivationPath, now,
	)
	if err != nil {
		if isUniqueConstraint(err) {
			return keyringerr.New(keyringerr.AlreadyExists, "label or pubkey already exists")
		}
		return keyringerr.Wrap(keyringerr.Internal, "insert hardware wallet", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "last insert id", err)
	}
	for _, t := range tags {
		if err := linkTag(tx, ledgerJunction, id, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListHardwareWallets returns registered hardware wallets, optionally
// filtered by tag, ordered by label ascending.
func (s *Store) ListHardwareWallets(tag *string) ([]HardwareRecord, error) {
	builder := sq.Select("pubkey", "label", "derivation_path", "created_at").
		From("ledger_wallets").
		OrderBy("label ASC")
	if clause, args := tagFilterClause(ledgerJunction, "ledger_wallets", tag); clause != "" {
		builder = builder.Where(clause, args...)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "build query", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "list hardware wallets", err)
	}
	defer rows.Close()

	var out []HardwareRecord
	for rows.Next() {
		var r HardwareRecord
		var created int64
		if err := rows.Scan(&r.Pubkey, &r.Label, &r.DerivationPath, &created); err != nil {
			return nil, keyringerr.Wrap(keyringerr.Internal, "scan hardware wallet", err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteHardwareWallet removes the record matching ident (label or pubkey).
func (s *Store) DeleteHardwareWallet(ident string) error {
	res, err := s.db.Exec(`DELETE FROM ledger_wallets WHERE label = ? OR pubkey = ?`, ident, ident)
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "delete hardware wallet", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "rows affected", err)
	}
	if n == 0 {
		return keyringerr.New(keyringerr.DeviceNotFound, "no hardware wallet matches "+ident)
	}
	return nil
}

// AddHardwareTag links ident's hardware wallet to tag, creating it if absent.
func (s *Store) AddHardwareTag(ident, tag string) error {
	return s.withRecordID("ledger_wallets", ident, keyringerr.DeviceNotFound, func(tx *sql.Tx, id int64) error {
		return linkTag(tx, ledgerJunction, id, tag)
	})
}

// RemoveHardwareTag unlinks ident's hardware wallet from tag.
func (s *Store) RemoveHardwareTag(ident, tag string) error {
	return s.withRecordID("ledger_wallets", ident, keyringerr.DeviceNotFound, func(tx *sql.Tx, id int64) error {
		return unlinkTag(tx, ledgerJunction, id, tag)
	})
}
