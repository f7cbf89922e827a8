// Package rpcclient defines the external collaborator boundary between the
// keyring and the blockchain network: the minimal read/send surface the
// multisig proposal engine needs, and nothing else (spec §1's "external
// collaborators" boundary — no balance/transfer surface belongs here).
package rpcclient

import (
	"context"
	"time"
)

// Blockhash identifies a recent ledger state a transaction is built against.
type Blockhash [32]byte

// Client is the read/send surface the multisig engine drives. A production
// client wraps the network JSON-RPC transport used by the target chain's
// validators; tests substitute a mock.
type Client interface {
	// GetLatestBlockhash returns a recent blockhash to build transactions against.
	GetLatestBlockhash(ctx context.Context) (Blockhash, error)

	// GetAccountData returns the raw account bytes for pubkey, or
	// keyringerr.MultisigNotFound-classed errors if it does not exist.
	GetAccountData(ctx context.Context, pubkey [32]byte) ([]byte, error)

	// SendAndConfirm submits a fully-signed transaction and blocks until the
	// network confirms it, returning the transaction signature.
	SendAndConfirm(ctx context.Context, tx []byte) ([64]byte, error)
}

// PollInterval is how often WaitForCompletion-style loops re-check
// on-chain state (spec §4.5 wait_for_completion).
const PollInterval = 2 * time.Second
