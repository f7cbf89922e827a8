package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/solana-keyring/keyring/internal/cryptoutil"
	"github.com/solana-keyring/keyring/internal/keypair"
	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// KeypairRecord is the non-secret projection of a stored keypair (spec §3).
type KeypairRecord struct {
	ID        int64
	Pubkey    string
	Label     string
	KeyType   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoreKeypair envelope-encrypts secret under passphrase and inserts a new
// keypair record labeled label, linking tags. The insert, envelope and tag
// links are one logical unit: either all exist or none do (spec §4.1
// "Ordering & atomicity").
func (s *Store) StoreKeypair(secret []byte, label string, passphrase []byte, tags []string) (string, error) {
	if err := s.requirePassphrase(passphrase); err != nil {
		return "", err
	}

	kp, err := keypair.FromSeed(append([]byte(nil), secret...))
	if err != nil {
		return "", err
	}
	defer kp.Close()
	pubkeyStr := keypair.EncodePublicKeyBase58(kp.PublicKey())

	env, err := cryptoutil.Encrypt(append([]byte(nil), secret...), passphrase)
	if err != nil {
		return "", keyringerr.Wrap(keyringerr.Internal, "encrypt keypair", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", keyringerr.Wrap(keyringerr.Internal, "begin tx", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.Exec(
		`INSERT INTO keypairs (pubkey, label, key_type, ciphertext, nonce, salt, created_at, updated_at)
		 VALUES (?, ?, 'ed25519', ?, ?, ?, ?, ?)`,
		pubkeyStr, label, env.Ciphertext, env.Nonce[:], env.Salt[:], now, now,
	)
	if err != nil {
		if isUniqueConstraint(err) {
			return "", keyringerr.New(keyringerr.AlreadyExists, "label or pubkey already exists")
		}
		return "", keyringerr.Wrap(keyringerr.Internal, "insert keypair", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", keyringerr.Wrap(keyringerr.Internal, "last insert id", err)
	}
	for _, t := range tags {
		if err := linkTag(tx, keypairJunction, id, t); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", keyringerr.Wrap(keyringerr.Internal, "commit", err)
	}
	return pubkeyStr, nil
}

// LoadKeypair resolves ident (label or pubkey) and decrypts the stored
// secret under passphrase. The returned Secret owns the 32-byte Ed25519
// seed; callers must Close it.
func (s *Store) LoadKeypair(ident string, passphrase []byte) (*cryptoutil.Secret, error) {
	var ciphertext, nonce, salt []byte
	err := s.db.QueryRow(
		`SELECT ciphertext, nonce, salt FROM keypairs WHERE label = ? OR pubkey = ?`,
		ident, ident,
	).Scan(&ciphertext, &nonce, &salt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, keyringerr.New(keyringerr.KeypairNotFound, "no keypair matches "+ident)
	}
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "load keypair row", err)
	}

	env := &cryptoutil.Envelope{Ciphertext: ciphertext}
	copy(env.Nonce[:], nonce)
	copy(env.Salt[:], salt)

	plaintext, err := cryptoutil.Decrypt(env, passphrase)
	if err != nil {
		if errors.Is(err, cryptoutil.ErrAuthFailed) {
			return nil, keyringerr.New(keyringerr.InvalidPassphrase, "invalid passphrase")
		}
		return nil, keyringerr.Wrap(keyringerr.Internal, "decrypt keypair", err)
	}
	return cryptoutil.NewSecret(plaintext), nil
}

// ListKeypairs returns all keypair records, optionally filtered to those
// linked to tag, ordered by label ascending.
func (s *Store) ListKeypairs(tag *string) ([]KeypairRecord, error) {
	builder := sq.Select("id", "pubkey", "label", "key_type", "created_at", "updated_at").
		From("keypairs").
		OrderBy("label ASC")

	if clause, args := tagFilterClause(keypairJunction, "keypairs", tag); clause != "" {
		builder = builder.Where(clause, args...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "build query", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "list keypairs", err)
	}
	defer rows.Close()

	var out []KeypairRecord
	for rows.Next() {
		var r KeypairRecord
		var created, updated int64
		if err := rows.Scan(&r.ID, &r.Pubkey, &r.Label, &r.KeyType, &created, &updated); err != nil {
			return nil, keyringerr.Wrap(keyringerr.Internal, "scan keypair", err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		r.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteKeypair removes the record matching ident, cascading its tag links.
func (s *Store) DeleteKeypair(ident string) error {
	res, err := s.db.Exec(`DELETE FROM keypairs WHERE label = ? OR pubkey = ?`, ident, ident)
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "delete keypair", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "rows affected", err)
	}
	if n == 0 {
		return keyringerr.New(keyringerr.KeypairNotFound, "no keypair matches "+ident)
	}
	return nil
}

// RenameKeypair changes ident's label. Label updates are a separate
// operation from generate/import/delete (spec §3): the underlying
// envelope and pubkey are untouched.
func (s *Store) RenameKeypair(ident, newLabel string) error {
	return s.withRecordID("keypairs", ident, keyringerr.KeypairNotFound, func(tx *sql.Tx, id int64) error {
		_, err := tx.Exec(`UPDATE keypairs SET label = ?, updated_at = ? WHERE id = ?`, newLabel, time.Now().Unix(), id)
		if err != nil {
			if isUniqueConstraint(err) {
				return keyringerr.New(keyringerr.AlreadyExists, "label already exists")
			}
			return keyringerr.Wrap(keyringerr.Internal, "rename keypair", err)
		}
		return nil
	})
}

// AddKeypairTag links ident's keypair record to tag, creating the tag if
// absent. Idempotent.
func (s *Store) AddKeypairTag(ident, tag string) error {
	return s.withRecordID("keypairs", ident, keyringerr.KeypairNotFound, func(tx *sql.Tx, id int64) error {
		return linkTag(tx, keypairJunction, id, tag)
	})
}

// RemoveKeypairTag unlinks ident's keypair record from tag. Idempotent.
func (s *Store) RemoveKeypairTag(ident, tag string) error {
	return s.withRecordID("keypairs", ident, keyringerr.KeypairNotFound, func(tx *sql.Tx, id int64) error {
		return unlinkTag(tx, keypairJunction, id, tag)
	})
}

// withRecordID resolves ident against table's label/pubkey columns inside a
// transaction and invokes fn with the resolved row id, committing on
// success. notFoundCode is returned if ident resolves to nothing.
func (s *Store) withRecordID(table, ident string, notFoundCode keyringerr.Code, fn func(tx *sql.Tx, id int64) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "begin tx", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`SELECT id FROM `+table+` WHERE label = ? OR pubkey = ?`, ident, ident).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return keyringerr.New(notFoundCode, "no record matches "+ident)
	}
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "resolve record", err)
	}
	if err := fn(tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "commit", err)
	}
	return nil
}

func isUniqueConstraint(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "constraint failed")
}
