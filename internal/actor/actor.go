// Package actor defines the signing contracts shared by every actor kind
// (software keypair, hardware wallet, multisig vault): two synchronous
// signer interfaces for the hot path, and one asynchronous transport
// interface that lets a multisig vault's propose/approve/execute sequence
// share a submission contract with direct signing.
//
// Deliberately there is no single interface unifying sync and async
// signing (spec §9, "avoid a single god-interface"): MessageSigner and
// TransactionSigner cover the synchronous cases, WalletTransport covers
// submission regardless of whether it completes immediately or not. A
// transport owns its signer; there are no back-edges from signer to
// transport or from proposal to member.
package actor

import (
	"context"
	"time"
)

// PublicKey is a 32-byte Ed25519 public key.
type PublicKey [32]byte

// Signature is a 64-byte Ed25519 signature.
type Signature [64]byte

// MessageSigner signs arbitrary off-chain payloads (e.g. auth challenges).
type MessageSigner interface {
	PublicKey() PublicKey
	SignMessage(msg []byte) (Signature, error)
}

// TransactionSigner signs a serialized on-chain transaction message.
// IsInteractive reports whether the signing call requires physical user
// action (a hardware-wallet confirmation) and may therefore be slow.
type TransactionSigner interface {
	PublicKey() PublicKey
	SignTransaction(message []byte) (Signature, error)
	IsInteractive() bool
}

// SubmitKind tags the variant carried by a SubmitResult.
type SubmitKind uint8

const (
	KindSigned SubmitKind = iota
	KindPending
	KindExecuted
	KindTimeout
)

// SubmitResult is the tagged result of WalletTransport.Submit and its
// follow-ups. Exactly one of the variant-specific fields is meaningful,
// selected by Kind; see IsComplete and Sig.
type SubmitResult struct {
	Kind SubmitKind

	// Signed / Executed
	Signature Signature

	// Pending / Executed
	Proposal         PublicKey
	TransactionIndex  uint64
	Approvals        uint32
	Threshold        uint32
	Executed         bool
}

// IsComplete is true for Signed and Executed results.
func (r SubmitResult) IsComplete() bool {
	return r.Kind == KindSigned || r.Kind == KindExecuted
}

// Sig returns the signature for Signed/Executed results, and ok=false
// otherwise.
func (r SubmitResult) Sig() (Signature, bool) {
	if r.Kind == KindSigned || r.Kind == KindExecuted {
		return r.Signature, true
	}
	return Signature{}, false
}

// WalletTransport is the asynchronous submission contract. A direct
// transport (wrapping a TransactionSigner) completes Submit immediately
// with a Signed result; a multisig transport may return Pending and
// require later polling via CheckStatus / WaitForCompletion.
type WalletTransport interface {
	Authority() PublicKey
	Submit(ctx context.Context, message []byte) (SubmitResult, error)
	CheckStatus(ctx context.Context, prev SubmitResult) (SubmitResult, error)
	WaitForCompletion(ctx context.Context, prev SubmitResult, timeout time.Duration) (SubmitResult, error)
	RequiresNetwork() bool
}
