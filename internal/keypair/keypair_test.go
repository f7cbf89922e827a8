package keypair

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"testing"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

func TestGenerateAndSign(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	defer kp.Close()

	msg := []byte("hello solana")
	sig, err := kp.SignMessage(msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	pub := kp.PublicKey()
	if !ed25519.Verify(pub[:], msg, sig[:]) {
		t.Fatal("signature does not verify")
	}
	if kp.IsInteractive() {
		t.Fatal("software keypair must not be interactive")
	}
}

func TestExportImportJSONRoundTrip(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	defer kp.Close()
	wantPub := kp.PublicKey()

	data, err := kp.ExportJSON()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var raw []byte
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) != 64 {
		t.Fatalf("unexpected export shape: %v len=%d", err, len(raw))
	}

	imported, err := ImportJSON(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer imported.Close()

	if imported.PublicKey() != wantPub {
		t.Fatal("imported pubkey mismatch")
	}
}

func TestImportJSONRejectsMismatchedPubkey(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	seed := kp.Seed()
	kp.Close()

	tampered := append(append([]byte(nil), seed...), make([]byte, 32)...) // wrong trailing pubkey
	data, _ := json.Marshal(tampered)

	_, err = ImportJSON(data)
	var kerr *keyringerr.Error
	if !errors.As(err, &kerr) || kerr.Code != keyringerr.InvalidFormat {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}

func TestExportImportBase58RoundTrip(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	defer kp.Close()

	s, err := kp.ExportBase58()
	if err != nil {
		t.Fatalf("export base58: %v", err)
	}
	imported, err := ImportBase58(s)
	if err != nil {
		t.Fatalf("import base58: %v", err)
	}
	defer imported.Close()
	if imported.PublicKey() != kp.PublicKey() {
		t.Fatal("pubkey mismatch after base58 round trip")
	}
}

func TestEncodeDecodePublicKeyBase58(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	defer kp.Close()

	s := EncodePublicKeyBase58(kp.PublicKey())
	decoded, err := DecodePublicKeyBase58(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != kp.PublicKey() {
		t.Fatal("pubkey mismatch after base58 encode/decode")
	}
}

func TestFromSeedRejectsWrongLength(t *testing.T) {
	_, err := FromSeed(make([]byte, 31))
	var kerr *keyringerr.Error
	if !errors.As(err, &kerr) || kerr.Code != keyringerr.InvalidFormat {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}
