// Package multisig implements the Squads-style multisig proposal engine
// (spec §4.5, C6): program-derived address computation, on-chain account
// layout parsing, instruction encoding, and the propose/approve/execute
// submission protocol behind actor.WalletTransport.
package multisig

import (
	"crypto/sha256"
	"encoding/binary"
)

// ProgramID is the target program's on-chain identifier. PDAs are scoped
// to it; a deployment against a different program instance overrides it.
var ProgramID = [32]byte{
	0x0a, 0x6c, 0x05, 0xa0, 0xe5, 0x17, 0x21, 0x5c,
	0xe1, 0xca, 0xc3, 0x5f, 0xd6, 0x03, 0xf3, 0xd2,
	0x84, 0x0d, 0x98, 0x09, 0x4a, 0x83, 0xea, 0xd9,
	0x0a, 0xb3, 0xe7, 0xa4, 0xf0, 0x65, 0xd9, 0x4b,
}

const (
	seedVault       = "squad"
	seedAuthority   = "authority"
	seedTransaction = "transaction"
	seedProposal    = "proposal"
)

// derivePDA hashes the seeds followed by the program id, matching the
// target chain's deterministic address derivation. Off-curve validation
// and bump-seed search are a simplification this implementation omits
// (see DESIGN.md); callers treat the result as opaque and do not attempt
// to sign for it directly.
func derivePDA(seeds ...[]byte) [32]byte {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write(ProgramID[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// VaultAuthority derives the vault authority PDA for vaultIndex.
func VaultAuthority(multisigPubkey [32]byte, vaultIndex uint8) [32]byte {
	return derivePDA([]byte(seedVault), multisigPubkey[:], []byte{vaultIndex}, []byte(seedAuthority))
}

// TransactionPDA derives the vault-transaction PDA for transaction index.
func TransactionPDA(multisigPubkey [32]byte, index uint64) [32]byte {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], index)
	return derivePDA([]byte(seedTransaction), multisigPubkey[:], le[:])
}

// ProposalPDA derives the proposal PDA for transaction index.
func ProposalPDA(multisigPubkey [32]byte, index uint64) [32]byte {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], index)
	return derivePDA([]byte(seedProposal), multisigPubkey[:], le[:])
}
