package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/solana-keyring/keyring/internal/keypair"
	"github.com/solana-keyring/keyring/internal/keyringerr"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "keyring.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInitializeThenVerify(t *testing.T) {
	s := openTestStore(t)

	initialized, err := s.IsInitialized()
	if err != nil || initialized {
		t.Fatalf("expected not initialized, got initialized=%v err=%v", initialized, err)
	}

	if err := s.Initialize([]byte("correct horse battery staple")); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := s.Initialize([]byte("correct horse battery staple")); err == nil {
		t.Fatal("expected AlreadyInitialized on second initialize")
	} else if keyringerr.CodeOf(err) != keyringerr.AlreadyInitialized {
		t.Fatalf("expected AlreadyInitialized, got %v", err)
	}

	ok, err := s.VerifyPassphrase([]byte("correct horse battery staple"))
	if err != nil || !ok {
		t.Fatalf("expected valid passphrase to verify, ok=%v err=%v", ok, err)
	}
	ok, err = s.VerifyPassphrase([]byte("wrong"))
	if err != nil || ok {
		t.Fatalf("expected wrong passphrase to fail verify, ok=%v err=%v", ok, err)
	}
}

func TestGenerateStoreLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	passphrase := []byte("pp")
	if err := s.Initialize(passphrase); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = byte(i)
	}

	pubkey, err := s.StoreKeypair(secret, "alice", passphrase, []string{"work"})
	if err != nil {
		t.Fatalf("store keypair: %v", err)
	}

	loaded, err := s.LoadKeypair("alice", passphrase)
	if err != nil {
		t.Fatalf("load keypair: %v", err)
	}
	defer loaded.Close()

	kp, err := keypair.FromSeed(append([]byte(nil), loaded.Bytes()...))
	if err != nil {
		t.Fatalf("derive from loaded seed: %v", err)
	}
	defer kp.Close()
	if got := keypair.EncodePublicKeyBase58(kp.PublicKey()); got != pubkey {
		t.Fatalf("derived pubkey %s != stored pubkey %s", got, pubkey)
	}

	tagWork := "work"
	list, err := s.ListKeypairs(&tagWork)
	if err != nil {
		t.Fatalf("list keypairs: %v", err)
	}
	if len(list) != 1 || list[0].Label != "alice" {
		t.Fatalf("expected exactly one keypair labeled alice, got %+v", list)
	}
}

func TestLoadKeypairWrongPassphrase(t *testing.T) {
	s := openTestStore(t)
	passphrase := []byte("pp")
	if err := s.Initialize(passphrase); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	secret := make([]byte, 32)
	if _, err := s.StoreKeypair(secret, "alice", passphrase, nil); err != nil {
		t.Fatalf("store keypair: %v", err)
	}

	_, err := s.LoadKeypair("alice", []byte("bad"))
	if !errors.Is(err, &keyringerr.Error{Code: keyringerr.InvalidPassphrase}) {
		t.Fatalf("expected InvalidPassphrase, got %v", err)
	}
}

func TestDeleteKeypairCascadesTags(t *testing.T) {
	s := openTestStore(t)
	passphrase := []byte("pp")
	if err := s.Initialize(passphrase); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	secret := make([]byte, 32)
	if _, err := s.StoreKeypair(secret, "alice", passphrase, []string{"work"}); err != nil {
		t.Fatalf("store keypair: %v", err)
	}
	if err := s.DeleteKeypair("alice"); err != nil {
		t.Fatalf("delete keypair: %v", err)
	}
	list, err := s.ListKeypairs(nil)
	if err != nil {
		t.Fatalf("list keypairs: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no keypairs after delete, got %+v", list)
	}
	var links int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM keypair_tags`).Scan(&links); err != nil {
		t.Fatalf("count tag links: %v", err)
	}
	if links != 0 {
		t.Fatalf("expected tag links to be removed with the keypair, got %d", links)
	}
}

func TestMultisigAndAddressBook(t *testing.T) {
	s := openTestStore(t)

	err := s.StoreMultisig(MultisigRecord{
		MultisigPubkey: "MsPubkey111",
		Label:          "treasury",
		VaultIndex:     0,
		Threshold:      2,
		Members: []MultisigMember{
			{MemberPubkey: "Mem1", Permissions: 7},
			{MemberPubkey: "Mem2", Permissions: 7},
		},
	}, nil)
	if err != nil {
		t.Fatalf("store multisig: %v", err)
	}
	list, err := s.ListMultisigs(nil)
	if err != nil {
		t.Fatalf("list multisigs: %v", err)
	}
	if len(list) != 1 || len(list[0].Members) != 2 {
		t.Fatalf("unexpected multisig listing: %+v", list)
	}

	if err := s.AddAddress("AddrPubkey111", "exchange", "hot wallet"); err != nil {
		t.Fatalf("add address: %v", err)
	}
	addrs, err := s.ListAddresses()
	if err != nil {
		t.Fatalf("list addresses: %v", err)
	}
	if len(addrs) != 1 || addrs[0].Label != "exchange" {
		t.Fatalf("unexpected address listing: %+v", addrs)
	}
}
