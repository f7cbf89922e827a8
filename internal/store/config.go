package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/solana-keyring/keyring/internal/cryptoutil"
	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// IsInitialized reports whether the Config singleton exists (spec
// invariant 1).
func (s *Store) IsInitialized() (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM config WHERE id = 1`).Scan(&n); err != nil {
		return false, keyringerr.Wrap(keyringerr.Internal, "check config", err)
	}
	return n == 1, nil
}

// Initialize creates the Config singleton from passphrase. Fails
// AlreadyInitialized if Config already exists.
func (s *Store) Initialize(passphrase []byte) error {
	if len(passphrase) == 0 {
		return keyringerr.New(keyringerr.InvalidFormat, "passphrase must not be empty")
	}
	initialized, err := s.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return keyringerr.New(keyringerr.AlreadyInitialized, "keyring already initialized")
	}

	salt, err := cryptoutil.RandomSalt()
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "generate config salt", err)
	}
	key := cryptoutil.DeriveKey(passphrase, salt)
	defer cryptoutil.Zeroize(key[:])

	now := time.Now().Unix()
	_, err = s.db.Exec(
		`INSERT INTO config (id, version, password_salt, password_hash, created_at, updated_at)
		 VALUES (1, 1, ?, ?, ?, ?)`,
		salt[:], key[:], now, now,
	)
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "insert config", err)
	}
	return nil
}

// VerifyPassphrase compares passphrase against the stored Config hash in
// constant time. This is the only store operation that surfaces
// InvalidPassphrase as a plain boolean rather than an error; downstream
// decrypt failures are mapped to the same code by the caller.
func (s *Store) VerifyPassphrase(passphrase []byte) (bool, error) {
	var salt, hash []byte
	err := s.db.QueryRow(`SELECT password_salt, password_hash FROM config WHERE id = 1`).Scan(&salt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, keyringerr.New(keyringerr.NotInitialized, "keyring not initialized")
	}
	if err != nil {
		return false, keyringerr.Wrap(keyringerr.Internal, "load config", err)
	}

	var saltArr [cryptoutil.SaltSize]byte
	copy(saltArr[:], salt)
	derived := cryptoutil.DeriveKey(passphrase, saltArr)
	defer cryptoutil.Zeroize(derived[:])

	return cryptoutil.ConstantTimeEqual(derived[:], hash), nil
}

// requirePassphrase is a convenience used by record-level operations to
// turn a failed passphrase check into the InvalidPassphrase taxonomy error.
func (s *Store) requirePassphrase(passphrase []byte) error {
	ok, err := s.VerifyPassphrase(passphrase)
	if err != nil {
		return err
	}
	if !ok {
		return keyringerr.New(keyringerr.InvalidPassphrase, "invalid passphrase")
	}
	return nil
}
