// Package keypair implements the software keypair actor (spec §4 C4): an
// Ed25519 signer whose secret is owned exclusively by the Keypair value and
// zeroized on Close, plus the JSON and base58 import/export codecs from
// spec §6.
package keypair

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/solana-keyring/keyring/internal/actor"
	"github.com/solana-keyring/keyring/internal/cryptoutil"
	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// SeedSize is the length of an Ed25519 seed (the secret stored at rest).
const SeedSize = ed25519.SeedSize // 32

// Keypair is a software Ed25519 signing actor. It owns its seed exclusively;
// callers must call Close when done to zeroize the secret.
type Keypair struct {
	pub  actor.PublicKey
	seed *cryptoutil.Secret
}

var _ actor.MessageSigner = (*Keypair)(nil)
var _ actor.TransactionSigner = (*Keypair)(nil)

// FromSeed takes ownership of a 32-byte Ed25519 seed and derives the
// keypair's public key. seed must not be reused by the caller afterward.
func FromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedSize {
		return nil, keyringerr.New(keyringerr.InvalidFormat, fmt.Sprintf("seed must be %d bytes, got %d", SeedSize, len(seed)))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, keyringerr.New(keyringerr.Internal, "ed25519: unexpected public key type")
	}
	var pk actor.PublicKey
	copy(pk[:], pub)
	return &Keypair{pub: pk, seed: cryptoutil.NewSecret(seed)}, nil
}

// Generate draws a fresh random seed and returns the resulting keypair.
func Generate() (*Keypair, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, keyringerr.Wrap(keyringerr.Internal, "generate seed", err)
	}
	return FromSeed(seed)
}

// PublicKey returns the actor's 32-byte Ed25519 public key.
func (k *Keypair) PublicKey() actor.PublicKey { return k.pub }

// Seed returns a copy of the 32-byte secret seed. Callers must zeroize the
// returned slice (cryptoutil.Zeroize) after use.
func (k *Keypair) Seed() []byte {
	out := make([]byte, SeedSize)
	copy(out, k.seed.Bytes())
	return out
}

// SignMessage signs an arbitrary payload.
func (k *Keypair) SignMessage(msg []byte) (actor.Signature, error) {
	return k.sign(msg)
}

// SignTransaction signs a serialized transaction message. Software keys
// never require physical confirmation.
func (k *Keypair) SignTransaction(message []byte) (actor.Signature, error) {
	return k.sign(message)
}

// IsInteractive is always false for a software keypair.
func (k *Keypair) IsInteractive() bool { return false }

func (k *Keypair) sign(msg []byte) (actor.Signature, error) {
	priv := ed25519.NewKeyFromSeed(k.seed.Bytes())
	defer cryptoutil.Zeroize(priv)
	raw := ed25519.Sign(priv, msg)
	var sig actor.Signature
	copy(sig[:], raw)
	return sig, nil
}

// Close zeroizes the owned seed. Safe to call multiple times.
func (k *Keypair) Close() { k.seed.Close() }

// fileJSON is the on-disk JSON array format from spec §6: 32 bytes (seed
// only) or 64 bytes (seed ‖ derived public key, which must match).
type fileJSON = []byte

// ExportJSON renders the keypair as a JSON array of 64 little-endian bytes
// (seed ‖ public key), matching common Ed25519 keypair file conventions.
func (k *Keypair) ExportJSON() ([]byte, error) {
	full := make([]byte, 0, 64)
	full = append(full, k.seed.Bytes()...)
	full = append(full, k.pub[:]...)
	// json.Marshal renders a []byte as a base64 string, so widen to ints to
	// get a JSON array of numbers.
	arr := make([]int, len(full))
	for i, b := range full {
		arr[i] = int(b)
	}
	return json.Marshal(arr)
}

// ImportJSON parses a JSON array of 32 or 64 bytes. For 64 bytes, the
// trailing 32 must equal the Ed25519 public key derived from the leading
// 32-byte seed (spec §6); any mismatch is InvalidFormat.
func ImportJSON(data []byte) (*Keypair, error) {
	var raw []byte
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, keyringerr.Wrap(keyringerr.InvalidFormat, "decode keypair json", err)
	}
	return fromRaw(raw)
}

// ExportBase58 renders the same 64-byte layout as ExportJSON, base58-encoded.
func (k *Keypair) ExportBase58() (string, error) {
	full := make([]byte, 0, 64)
	full = append(full, k.seed.Bytes()...)
	full = append(full, k.pub[:]...)
	return base58.Encode(full), nil
}

// ImportBase58 parses a base58 string holding 32 or 64 bytes, with the same
// validation as ImportJSON.
func ImportBase58(s string) (*Keypair, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.InvalidFormat, "decode base58 keypair", err)
	}
	return fromRaw(raw)
}

func fromRaw(raw []byte) (*Keypair, error) {
	switch len(raw) {
	case SeedSize:
		return FromSeed(raw)
	case 2 * SeedSize:
		seed := append([]byte(nil), raw[:SeedSize]...)
		wantPub := raw[SeedSize:]
		kp, err := FromSeed(seed)
		if err != nil {
			return nil, err
		}
		if !cryptoutil.ConstantTimeEqual(kp.pub[:], wantPub) {
			kp.Close()
			return nil, keyringerr.New(keyringerr.InvalidFormat, "embedded public key does not match derived public key")
		}
		return kp, nil
	default:
		return nil, keyringerr.New(keyringerr.InvalidFormat, fmt.Sprintf("keypair data must be 32 or 64 bytes, got %d", len(raw)))
	}
}

// EncodePublicKeyBase58 renders a 32-byte public key as base58, the
// canonical address representation used throughout this module.
func EncodePublicKeyBase58(pub actor.PublicKey) string {
	return base58.Encode(pub[:])
}

// DecodePublicKeyBase58 parses a base58-encoded 32-byte public key.
func DecodePublicKeyBase58(s string) (actor.PublicKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return actor.PublicKey{}, keyringerr.Wrap(keyringerr.InvalidFormat, "decode base58 pubkey", err)
	}
	if len(raw) != 32 {
		return actor.PublicKey{}, keyringerr.New(keyringerr.InvalidFormat, fmt.Sprintf("pubkey must be 32 bytes, got %d", len(raw)))
	}
	var pk actor.PublicKey
	copy(pk[:], raw)
	return pk, nil
}
