package multisig

import (
	"encoding/binary"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// executedStatus is the proposal status byte value meaning "executed"
// (spec §4.5).
const executedStatus = 3

// MultisigAccount is the parsed subset of the on-chain multisig account
// the engine needs: current transaction index and approval threshold.
type MultisigAccount struct {
	Threshold        uint16
	TransactionIndex uint64
}

// ParseMultisigAccount reads threshold at offset 72 and transaction_index
// at offset 78, skipping the 8-byte discriminator and the two embedded
// pubkeys (spec §4.5).
func ParseMultisigAccount(data []byte) (MultisigAccount, error) {
	const minLen = 78 + 8
	if len(data) < minLen {
		return MultisigAccount{}, keyringerr.New(keyringerr.InvalidAccountData, "multisig account too short")
	}
	return MultisigAccount{
		Threshold:        binary.LittleEndian.Uint16(data[72:74]),
		TransactionIndex: binary.LittleEndian.Uint64(data[78:86]),
	}, nil
}

// VaultTransactionAccount is the parsed subset needed to reconstruct the
// execute instruction's account list.
type VaultTransactionAccount struct {
	VaultIndex             uint8
	NumSigners             uint8
	NumWritableSigners     uint8
	NumWritableNonSigners  uint8
	AccountKeys            [][32]byte
}

// ParseVaultTransactionAccount parses the fixed prefix through the
// ephemeral-signer-bumps vector, then the inlined message header and
// account_keys vector (spec §4.5). Trailing message bytes (instructions)
// are not needed for execution-account extraction and are ignored.
func ParseVaultTransactionAccount(data []byte) (VaultTransactionAccount, error) {
	const fixedLen = 8 + 32 + 32 + 8 + 1 + 1 + 1 // disc, multisig, creator, index, bump, vault_index, vault_bump
	if len(data) < fixedLen+4 {
		return VaultTransactionAccount{}, keyringerr.New(keyringerr.InvalidAccountData, "vault transaction account too short")
	}
	vaultIndex := data[8+32+32+8+1]

	off := fixedLen
	bumpsLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4 + bumpsLen

	if len(data) < off+3+4 {
		return VaultTransactionAccount{}, keyringerr.New(keyringerr.InvalidAccountData, "vault transaction message header truncated")
	}
	numSigners := data[off]
	numWritableSigners := data[off+1]
	numWritableNonSigners := data[off+2]
	off += 3

	keysLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	if keysLen < 0 || len(data) < off+keysLen*32 {
		return VaultTransactionAccount{}, keyringerr.New(keyringerr.InvalidAccountData, "vault transaction account_keys truncated")
	}
	keys := make([][32]byte, keysLen)
	for i := 0; i < keysLen; i++ {
		copy(keys[i][:], data[off+i*32:off+(i+1)*32])
	}

	return VaultTransactionAccount{
		VaultIndex:            vaultIndex,
		NumSigners:             numSigners,
		NumWritableSigners:     numWritableSigners,
		NumWritableNonSigners:  numWritableNonSigners,
		AccountKeys:            keys,
	}, nil
}

// IsWritable reports whether the account at position i (0-indexed in
// AccountKeys) is writable, per the signer/non-signer/writable layering
// the target program's account-meta ordering encodes.
func (v VaultTransactionAccount) IsWritable(i int) bool {
	if i < int(v.NumWritableSigners) {
		return true
	}
	nonSignerStart := int(v.NumSigners)
	if i >= nonSignerStart && i < nonSignerStart+int(v.NumWritableNonSigners) {
		return true
	}
	return false
}

// ProposalAccount is the parsed subset needed to evaluate the threshold.
type ProposalAccount struct {
	Status        uint8
	ApprovalCount uint32
}

// IsExecuted reports whether the proposal's status is the executed value.
func (p ProposalAccount) IsExecuted() bool { return p.Status == executedStatus }

// ParseProposalAccount reads status at offset 48 and the approved vector's
// length (the approval count) at offset 50 (spec §4.5).
func ParseProposalAccount(data []byte) (ProposalAccount, error) {
	const minLen = 50 + 4
	if len(data) < minLen {
		return ProposalAccount{}, keyringerr.New(keyringerr.InvalidAccountData, "proposal account too short")
	}
	return ProposalAccount{
		Status:        data[48],
		ApprovalCount: binary.LittleEndian.Uint32(data[50:54]),
	}, nil
}
