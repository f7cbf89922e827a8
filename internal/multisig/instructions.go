package multisig

import (
	"crypto/sha256"
	"encoding/binary"
)

// discriminator derives the 8-byte instruction discriminator the target
// program's ABI expects: the first 8 bytes of sha256("global:<name>"),
// the same scheme Anchor-based programs use. Computing it from the
// instruction name keeps the constant self-documenting while still being
// a fixed value per spec §4.5 ("discriminators are fixed constants").
func discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

var (
	discVaultTransactionCreate  = discriminator("vault_transaction_create")
	discProposalCreate         = discriminator("proposal_create")
	discProposalApprove        = discriminator("proposal_approve")
	discVaultTransactionExecute = discriminator("vault_transaction_execute")
)

// argWriter serializes instruction arguments little-endian per spec §4.5's
// encoding rules: u8/u64/bool natural width, Option as a presence byte,
// Vec/String as a u32 length prefix followed by elements.
type argWriter struct {
	buf []byte
}

func (w *argWriter) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *argWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *argWriter) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *argWriter) bytes(v []byte) {
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(v)))
	w.buf = append(w.buf, l[:]...)
	w.buf = append(w.buf, v...)
}

func (w *argWriter) optionBytes(v []byte) {
	if v == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.bytes(v)
}

func (w *argWriter) str(v string) { w.bytes([]byte(v)) }

// Instruction is a program call: the target account list plus the
// discriminator-prefixed, little-endian-encoded argument payload.
type Instruction struct {
	ProgramID [32]byte
	Accounts  []AccountMeta
	Data      []byte
}

// AccountMeta describes one account reference in an instruction.
type AccountMeta struct {
	Pubkey     [32]byte
	IsSigner   bool
	IsWritable bool
}

// BuildVaultTransactionCreate builds the instruction that registers a new
// vault transaction with the raw transaction message bytes.
func BuildVaultTransactionCreate(multisigPubkey, transactionPDA, creator [32]byte, vaultIndex uint8, transactionMessage []byte) Instruction {
	w := argWriter{}
	w.buf = append(w.buf, discVaultTransactionCreate[:]...)
	w.u8(vaultIndex)
	w.u8(0) // ephemeral_signers: 0
	w.bytes(transactionMessage)
	w.optionBytes(nil) // memo: none

	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountMeta{
			{Pubkey: multisigPubkey, IsWritable: true},
			{Pubkey: transactionPDA, IsWritable: true},
			{Pubkey: creator, IsSigner: true, IsWritable: true},
		},
		Data: w.buf,
	}
}

// BuildProposalCreate builds the instruction that opens a proposal for
// transactionIndex.
func BuildProposalCreate(multisigPubkey, proposalPDA, creator [32]byte, transactionIndex uint64) Instruction {
	w := argWriter{}
	w.buf = append(w.buf, discProposalCreate[:]...)
	w.u64(transactionIndex)
	w.boolean(false) // draft: false

	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountMeta{
			{Pubkey: multisigPubkey, IsWritable: true},
			{Pubkey: proposalPDA, IsWritable: true},
			{Pubkey: creator, IsSigner: true, IsWritable: true},
		},
		Data: w.buf,
	}
}

// BuildProposalApprove builds the instruction recording the member's
// approval of proposalPDA.
func BuildProposalApprove(multisigPubkey, proposalPDA, member [32]byte) Instruction {
	w := argWriter{}
	w.buf = append(w.buf, discProposalApprove[:]...)

	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountMeta{
			{Pubkey: multisigPubkey},
			{Pubkey: proposalPDA, IsWritable: true},
			{Pubkey: member, IsSigner: true},
		},
		Data: w.buf,
	}
}

// BuildVaultTransactionExecute builds the instruction that executes a
// vault transaction once its proposal has met the approval threshold. The
// vault authority PDA is passed as a non-signer writable account followed
// by the accounts reconstructed from the vault-transaction account layout
// (spec §4.5 step 7).
func BuildVaultTransactionExecute(multisigPubkey, proposalPDA, transactionPDA, vaultPDA, member [32]byte, vt VaultTransactionAccount) Instruction {
	w := argWriter{}
	w.buf = append(w.buf, discVaultTransactionExecute[:]...)

	accounts := make([]AccountMeta, 0, 4+len(vt.AccountKeys))
	accounts = append(accounts,
		AccountMeta{Pubkey: multisigPubkey},
		AccountMeta{Pubkey: proposalPDA, IsWritable: true},
		AccountMeta{Pubkey: transactionPDA, IsWritable: true},
		AccountMeta{Pubkey: member, IsSigner: true},
		AccountMeta{Pubkey: vaultPDA, IsWritable: true},
	)
	for i, key := range vt.AccountKeys {
		if key == vaultPDA {
			continue
		}
		accounts = append(accounts, AccountMeta{
			Pubkey:     key,
			IsSigner:   i < int(vt.NumSigners),
			IsWritable: vt.IsWritable(i),
		})
	}

	return Instruction{
		ProgramID: ProgramID,
		Accounts:  accounts,
		Data:      w.buf,
	}
}
