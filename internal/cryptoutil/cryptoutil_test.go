package cryptoutil

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	passphrase := []byte("correct horse battery staple")

	env, err := Encrypt(append([]byte(nil), secret...), passphrase)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	got, err := Decrypt(env, passphrase)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatalf("round trip mismatch: got %x want %x", got, secret)
	}
}

func TestDecryptWrongPassphraseFails(t *testing.T) {
	secret := []byte("seed-material-32-bytes-long!!!!")
	env, err := Encrypt(append([]byte(nil), secret...), []byte("correct"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := Decrypt(env, []byte("wrong")); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestSuccessiveEncryptionsDiffer(t *testing.T) {
	secret := []byte("seed-material-32-bytes-long!!!!")
	passphrase := []byte("pw")

	a, err := Encrypt(append([]byte(nil), secret...), passphrase)
	if err != nil {
		t.Fatalf("encrypt a: %v", err)
	}
	b, err := Encrypt(append([]byte(nil), secret...), passphrase)
	if err != nil {
		t.Fatalf("encrypt b: %v", err)
	}

	if a.Salt == b.Salt {
		t.Fatalf("salts must differ across encryptions")
	}
	if a.Nonce == b.Nonce {
		t.Fatalf("nonces must differ across encryptions")
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Fatalf("ciphertexts must differ across encryptions")
	}
}

func TestConstantTimeEqual(t *testing.T) {
	if !ConstantTimeEqual([]byte("abc"), []byte("abc")) {
		t.Fatal("expected equal")
	}
	if ConstantTimeEqual([]byte("abc"), []byte("abd")) {
		t.Fatal("expected not equal")
	}
	if ConstantTimeEqual([]byte("abc"), []byte("abcd")) {
		t.Fatal("expected length mismatch to be unequal")
	}
}

func TestZeroize(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zeroize(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not zeroized", i)
		}
	}
}

func FuzzEnvelopeRoundTrip(f *testing.F) {
	f.Add([]byte("0123456789abcdef0123456789abcdef"), []byte("passphrase"))
	f.Add([]byte{}, []byte("x"))

	f.Fuzz(func(t *testing.T, secret, passphrase []byte) {
		if len(secret) > 1<<16 || len(passphrase) == 0 {
			return
		}
		env, err := Encrypt(append([]byte(nil), secret...), passphrase)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		got, err := Decrypt(env, passphrase)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !bytes.Equal(got, secret) {
			t.Fatalf("round trip mismatch")
		}
	})
}
