// Package cryptoutil implements the cryptographic primitives shared by the
// encrypted store and the agent: the Argon2id key-derivation function, the
// per-record AES-256-GCM envelope, and constant-time comparison helpers.
//
// The KDF parameters (m=65536 KiB, t=3, p=4, 32-byte output) are a contract:
// a store written with these parameters must open under any implementation
// that uses the same ones, so they are not configurable.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize  = 32
	NonceSize = 12
	KeySize   = 32

	kdfTime    = 3
	kdfMemory  = 65536 // KiB
	kdfThreads = 4
)

// Envelope is the on-disk representation of an encrypted secret (spec §3,
// EncryptedSecret). Salt is per-record and independent of the Config salt.
type Envelope struct {
	Ciphertext []byte
	Nonce      [NonceSize]byte
	Salt       [SaltSize]byte
}

// DeriveKey runs Argon2id over passphrase with the fixed contract
// parameters, returning a 32-byte key.
func DeriveKey(passphrase []byte, salt [SaltSize]byte) [KeySize]byte {
	raw := argon2.IDKey(passphrase, salt[:], kdfTime, kdfMemory, kdfThreads, KeySize)
	var key [KeySize]byte
	copy(key[:], raw)
	Zeroize(raw)
	return key
}

// RandomSalt draws a fresh per-record salt from the OS CSPRNG.
func RandomSalt() ([SaltSize]byte, error) {
	var salt [SaltSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return salt, fmt.Errorf("cryptoutil: read salt: %w", err)
	}
	return salt, nil
}

// Encrypt seals plaintext under a key freshly derived from passphrase and a
// random salt/nonce pair, returning the envelope to persist. plaintext is
// zeroized before return regardless of outcome; callers that need to keep
// using it must copy first.
func Encrypt(plaintext, passphrase []byte) (*Envelope, error) {
	defer Zeroize(plaintext)

	salt, err := RandomSalt()
	if err != nil {
		return nil, err
	}
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("cryptoutil: read nonce: %w", err)
	}

	key := DeriveKey(passphrase, salt)
	defer Zeroize(key[:])

	gcm, err := newGCM(key[:])
	if err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce[:], plaintext, nil)
	return &Envelope{Ciphertext: ciphertext, Nonce: nonce, Salt: salt}, nil
}

// Decrypt rederives the key from env.Salt and passphrase and opens the
// envelope. Any failure — including a wrong passphrase, which manifests as
// an authentication-tag mismatch — is reported as ErrAuthFailed; callers
// map this to the taxonomy's InvalidPassphrase code without distinguishing
// tampering from a wrong passphrase (spec invariant 5).
func Decrypt(env *Envelope, passphrase []byte) ([]byte, error) {
	key := DeriveKey(passphrase, env.Salt)
	defer Zeroize(key[:])

	gcm, err := newGCM(key[:])
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, env.Nonce[:], env.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: new gcm: %w", err)
	}
	return gcm, nil
}

// ConstantTimeEqual reports whether a and b are equal without leaking
// timing information about where they first differ.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Zeroize overwrites b with zero bytes. It is a best-effort defense against
// secrets lingering in memory; it does not protect against a compiler that
// proves the write is dead, but matches the zeroization discipline used
// throughout this module for every buffer that ever held a secret.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Secret is an owned, zeroizing byte buffer. Go has no destructors, so
// callers must defer Close explicitly at the point of ownership — the
// convention used throughout this module for every value that ever holds
// key material (passphrases, Ed25519 seeds, derived keys).
type Secret struct {
	b []byte
}

// NewSecret takes ownership of b; the caller must not use b after this call.
func NewSecret(b []byte) *Secret { return &Secret{b: b} }

// Bytes returns the underlying buffer. The returned slice aliases the
// Secret's storage and becomes invalid after Close.
func (s *Secret) Bytes() []byte { return s.b }

// Clone returns a new Secret holding an independent copy of the data.
func (s *Secret) Clone() *Secret {
	cp := make([]byte, len(s.b))
	copy(cp, s.b)
	return &Secret{b: cp}
}

// Close zeroizes the buffer. Safe to call multiple times.
func (s *Secret) Close() {
	if s == nil {
		return
	}
	Zeroize(s.b)
}

// ErrAuthFailed is returned by Decrypt on AEAD tag failure. Defined here
// (rather than in keyringerr) to keep this package import-free of the
// taxonomy; the store maps it to keyringerr.InvalidPassphrase.
var ErrAuthFailed = authFailedErr{}

type authFailedErr struct{}

func (authFailedErr) Error() string { return "cryptoutil: authentication failed" }
