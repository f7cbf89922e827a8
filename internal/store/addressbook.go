package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// AddressBookRecord is a named external address (spec §3).
type AddressBookRecord struct {
	Pubkey    string
	Label     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddAddress inserts a new address-book entry.
func (s *Store) AddAddress(pubkey, label, notes string) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(
		`INSERT INTO address_book (pubkey, label, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		pubkey, label, nullIfEmpty(notes), now, now,
	)
	if err != nil {
		if isUniqueConstraint(err) {
			return keyringerr.New(keyringerr.AlreadyExists, "label or pubkey already exists")
		}
		return keyringerr.Wrap(keyringerr.Internal, "insert address", err)
	}
	return nil
}

// ListAddresses returns all address-book entries ordered by label ascending.
func (s *Store) ListAddresses() ([]AddressBookRecord, error) {
	query, _, err := sq.Select("pubkey", "label", "COALESCE(notes, '')", "created_at", "updated_at").
		From("address_book").
		OrderBy("label ASC").
		ToSql()
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "build query", err)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "list addresses", err)
	}
	defer rows.Close()

	var out []AddressBookRecord
	for rows.Next() {
		var r AddressBookRecord
		var created, updated int64
		if err := rows.Scan(&r.Pubkey, &r.Label, &r.Notes, &created, &updated); err != nil {
			return nil, keyringerr.Wrap(keyringerr.Internal, "scan address", err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		r.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteAddress removes the entry matching ident (label or pubkey).
func (s *Store) DeleteAddress(ident string) error {
	res, err := s.db.Exec(`DELETE FROM address_book WHERE label = ? OR pubkey = ?`, ident, ident)
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "delete address", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "rows affected", err)
	}
	if n == 0 {
		return keyringerr.New(keyringerr.AddressNotFound, "no address matches "+ident)
	}
	return nil
}
