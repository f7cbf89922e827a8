package store

import (
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// MultisigMember is one member sub-table row (spec §3).
type MultisigMember struct {
	MemberPubkey string
	Permissions  uint8
	Label        string
}

// MultisigRecord is a registered multisig vault plus its members.
type MultisigRecord struct {
	MultisigPubkey string
	Label          string
	VaultIndex     uint8
	Threshold      uint16
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Members        []MultisigMember
}

// StoreMultisig registers a multisig vault and its member set.
func (s *Store) StoreMultisig(rec MultisigRecord, tags []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "begin tx", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.Exec(
		`INSERT INTO squads_multisigs (multisig_pubkey, label, vault_index, threshold, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.MultisigPubkey, rec.Label, rec.VaultIndex, rec.Threshold, now, now,
	)
	if err != nil {
		if isUniqueConstraint(err) {
			return keyringerr.New(keyringerr.AlreadyExists, "label or pubkey already exists")
		}
		return keyringerr.Wrap(keyringerr.Internal, "insert multisig", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "last insert id", err)
	}
	for _, m := range rec.Members {
		if _, err := tx.Exec(
			`INSERT INTO squads_members (multisig_id, member_pubkey, permissions, label) VALUES (?, ?, ?, ?)`,
			id, m.MemberPubkey, m.Permissions, nullIfEmpty(m.Label),
		); err != nil {
			return keyringerr.Wrap(keyringerr.Internal, "insert member", err)
		}
	}
	for _, t := range tags {
		if err := linkTag(tx, squadsJunction, id, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListMultisigs returns registered multisigs with their members, optionally
// filtered by tag, ordered by label ascending.
func (s *Store) ListMultisigs(tag *string) ([]MultisigRecord, error) {
	builder := sq.Select("id", "multisig_pubkey", "label", "vault_index", "threshold", "created_at", "updated_at").
		From("squads_multisigs").
		OrderBy("label ASC")
	if clause, args := tagFilterClause(squadsJunction, "squads_multisigs", tag); clause != "" {
		builder = builder.Where(clause, args...)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "build query", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "list multisigs", err)
	}
	defer rows.Close()

	var out []MultisigRecord
	var ids []int64
	for rows.Next() {
		var r MultisigRecord
		var id int64
		var created, updated int64
		if err := rows.Scan(&id, &r.MultisigPubkey, &r.Label, &r.VaultIndex, &r.Threshold, &created, &updated); err != nil {
			return nil, keyringerr.Wrap(keyringerr.Internal, "scan multisig", err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		r.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, r)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		members, err := s.loadMembers(id)
		if err != nil {
			return nil, err
		}
		out[i].Members = members
	}
	return out, nil
}

func (s *Store) loadMembers(multisigID int64) ([]MultisigMember, error) {
	rows, err := s.db.Query(
		`SELECT member_pubkey, permissions, COALESCE(label, '') FROM squads_members WHERE multisig_id = ?`,
		multisigID,
	)
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "list members", err)
	}
	defer rows.Close()

	var out []MultisigMember
	for rows.Next() {
		var m MultisigMember
		if err := rows.Scan(&m.MemberPubkey, &m.Permissions, &m.Label); err != nil {
			return nil, keyringerr.Wrap(keyringerr.Internal, "scan member", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMultisig removes the record matching ident, cascading members and tags.
func (s *Store) DeleteMultisig(ident string) error {
	res, err := s.db.Exec(`DELETE FROM squads_multisigs WHERE label = ? OR multisig_pubkey = ?`, ident, ident)
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "delete multisig", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "rows affected", err)
	}
	if n == 0 {
		return keyringerr.New(keyringerr.MultisigNotFound, "no multisig matches "+ident)
	}
	return nil
}

// AddMultisigTag links ident's multisig to tag, creating it if absent.
func (s *Store) AddMultisigTag(ident, tag string) error {
	return s.withMultisigID(ident, func(tx *sql.Tx, id int64) error {
		return linkTag(tx, squadsJunction, id, tag)
	})
}

// RemoveMultisigTag unlinks ident's multisig from tag.
func (s *Store) RemoveMultisigTag(ident, tag string) error {
	return s.withMultisigID(ident, func(tx *sql.Tx, id int64) error {
		return unlinkTag(tx, squadsJunction, id, tag)
	})
}

func (s *Store) withMultisigID(ident string, fn func(tx *sql.Tx, id int64) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "begin tx", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`SELECT id FROM squads_multisigs WHERE label = ? OR multisig_pubkey = ?`, ident, ident).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return keyringerr.New(keyringerr.MultisigNotFound, "no multisig matches "+ident)
	}
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "resolve multisig", err)
	}
	if err := fn(tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
