package multisig

import "testing"

func TestBuildVaultTransactionExecuteSkipsVaultPDA(t *testing.T) {
	multisigPubkey := [32]byte{1}
	proposalPDA := [32]byte{2}
	transactionPDA := [32]byte{3}
	vaultPDA := [32]byte{4}
	member := [32]byte{5}
	other := [32]byte{6}

	vt := VaultTransactionAccount{
		NumSigners:            2,
		NumWritableSigners:    1,
		NumWritableNonSigners: 1,
		AccountKeys:           [][32]byte{member, vaultPDA, other},
	}

	ix := BuildVaultTransactionExecute(multisigPubkey, proposalPDA, transactionPDA, vaultPDA, member, vt)

	seen := 0
	for _, acc := range ix.Accounts {
		if acc.Pubkey == vaultPDA {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("expected vaultPDA to appear exactly once (the dedicated authority account), got %d", seen)
	}

	var sawOther bool
	for _, acc := range ix.Accounts {
		if acc.Pubkey == other {
			sawOther = true
		}
	}
	if !sawOther {
		t.Fatalf("expected non-vault account key %x to be reconstructed into the instruction", other)
	}
}
