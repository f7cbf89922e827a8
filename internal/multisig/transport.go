package multisig

import (
	"context"
	"time"

	"github.com/solana-keyring/keyring/internal/actor"
	"github.com/solana-keyring/keyring/internal/keyringerr"
	"github.com/solana-keyring/keyring/internal/rpcclient"
)

// Transport implements actor.WalletTransport over a Squads-style multisig
// vault (spec §4.5): Submit runs the propose/approve sequence and
// executes once the threshold is met, CheckStatus/WaitForCompletion poll
// the on-chain proposal account.
type Transport struct {
	rpc            rpcclient.Client
	member         actor.TransactionSigner
	multisigPubkey [32]byte
	vaultIndex     uint8
}

// NewTransport constructs a multisig transport for one member key acting
// against one registered vault.
func NewTransport(rpc rpcclient.Client, member actor.TransactionSigner, multisigPubkey [32]byte, vaultIndex uint8) *Transport {
	return &Transport{rpc: rpc, member: member, multisigPubkey: multisigPubkey, vaultIndex: vaultIndex}
}

// Authority returns the vault authority PDA: the address that will own
// and sign for assets moved by an executed transaction.
func (t *Transport) Authority() actor.PublicKey {
	return actor.PublicKey(VaultAuthority(t.multisigPubkey, t.vaultIndex))
}

// RequiresNetwork is true: every step of the submission protocol touches
// the chain.
func (t *Transport) RequiresNetwork() bool { return true }

// Submit runs the full propose → approve → (execute) sequence described
// in spec §4.5 and returns Pending if the threshold is not yet met after
// this member's approval, or Executed if it was.
func (t *Transport) Submit(ctx context.Context, message []byte) (actor.SubmitResult, error) {
	ms, err := t.fetchMultisig(ctx)
	if err != nil {
		return actor.SubmitResult{}, err
	}
	next := ms.TransactionIndex + 1

	txPDA := TransactionPDA(t.multisigPubkey, next)
	proposalPDA := ProposalPDA(t.multisigPubkey, next)
	member := t.member.PublicKey()

	createIx := BuildVaultTransactionCreate(t.multisigPubkey, txPDA, [32]byte(member), t.vaultIndex, message)
	proposeIx := BuildProposalCreate(t.multisigPubkey, proposalPDA, [32]byte(member), next)
	if err := t.signAndSend(ctx, createIx, proposeIx); err != nil {
		return actor.SubmitResult{}, keyringerr.Wrap(keyringerr.ProposalFailed, "create vault transaction and proposal", err)
	}

	approveIx := BuildProposalApprove(t.multisigPubkey, proposalPDA, [32]byte(member))
	if err := t.signAndSend(ctx, approveIx); err != nil {
		return actor.SubmitResult{}, keyringerr.Wrap(keyringerr.ApprovalFailed, "approve proposal", err)
	}

	proposal, err := t.fetchProposal(ctx, proposalPDA)
	if err != nil {
		return actor.SubmitResult{}, err
	}
	pending := actor.SubmitResult{
		Kind:             actor.KindPending,
		Proposal:         actor.PublicKey(proposalPDA),
		TransactionIndex: next,
		Approvals:        proposal.ApprovalCount,
		Threshold:        uint32(ms.Threshold),
	}
	if proposal.IsExecuted() {
		// Already executed on chain: report it as CheckStatus does, with a
		// placeholder signature.
		pending.Kind = actor.KindExecuted
		pending.Executed = true
		return pending, nil
	}
	if proposal.ApprovalCount < uint32(ms.Threshold) {
		return pending, nil
	}
	return t.execute(ctx, txPDA, proposalPDA, next, uint32(ms.Threshold), proposal.ApprovalCount)
}

func (t *Transport) execute(ctx context.Context, txPDA, proposalPDA [32]byte, index uint64, threshold, approvals uint32) (actor.SubmitResult, error) {
	vtData, err := t.rpc.GetAccountData(ctx, txPDA)
	if err != nil {
		return actor.SubmitResult{}, keyringerr.Wrap(keyringerr.ExecutionFailed, "fetch vault transaction account", err)
	}
	vt, err := ParseVaultTransactionAccount(vtData)
	if err != nil {
		return actor.SubmitResult{}, err
	}
	vaultPDA := VaultAuthority(t.multisigPubkey, t.vaultIndex)
	member := t.member.PublicKey()

	executeIx := BuildVaultTransactionExecute(t.multisigPubkey, proposalPDA, txPDA, vaultPDA, [32]byte(member), vt)
	sig, err := t.signAndSendForSignature(ctx, executeIx)
	if err != nil {
		return actor.SubmitResult{}, keyringerr.Wrap(keyringerr.ExecutionFailed, "execute vault transaction", err)
	}
	return actor.SubmitResult{
		Kind:             actor.KindExecuted,
		Signature:        sig,
		Proposal:         actor.PublicKey(proposalPDA),
		TransactionIndex: index,
		Approvals:        approvals,
		Threshold:        threshold,
		Executed:         true,
	}, nil
}

// CheckStatus re-fetches and re-parses the proposal account (spec §4.5).
// An already-Executed prev is returned unchanged; a fresh execution is
// reported with a placeholder signature since the historical execution
// signature is not recoverable from account state alone (spec §9 known
// gap).
func (t *Transport) CheckStatus(ctx context.Context, prev actor.SubmitResult) (actor.SubmitResult, error) {
	if prev.Kind == actor.KindExecuted {
		return prev, nil
	}
	ms, err := t.fetchMultisig(ctx)
	if err != nil {
		return actor.SubmitResult{}, err
	}
	proposal, err := t.fetchProposal(ctx, [32]byte(prev.Proposal))
	if err != nil {
		return actor.SubmitResult{}, err
	}
	if proposal.IsExecuted() {
		return actor.SubmitResult{
			Kind:             actor.KindExecuted,
			Proposal:         prev.Proposal,
			TransactionIndex: prev.TransactionIndex,
			Approvals:        proposal.ApprovalCount,
			Threshold:        uint32(ms.Threshold),
			Executed:         true,
		}, nil
	}
	return actor.SubmitResult{
		Kind:             actor.KindPending,
		Proposal:         prev.Proposal,
		TransactionIndex: prev.TransactionIndex,
		Approvals:        proposal.ApprovalCount,
		Threshold:        uint32(ms.Threshold),
	}, nil
}

// WaitForCompletion polls CheckStatus every rpcclient.PollInterval until
// the result is complete or timeout elapses (spec §4.5).
func (t *Transport) WaitForCompletion(ctx context.Context, prev actor.SubmitResult, timeout time.Duration) (actor.SubmitResult, error) {
	deadline := time.Now().Add(timeout)
	cur := prev
	for {
		if cur.IsComplete() {
			return cur, nil
		}
		if time.Now().After(deadline) {
			return actor.SubmitResult{Kind: actor.KindTimeout}, nil
		}
		select {
		case <-ctx.Done():
			return actor.SubmitResult{}, ctx.Err()
		case <-time.After(rpcclient.PollInterval):
		}
		next, err := t.CheckStatus(ctx, cur)
		if err != nil {
			return actor.SubmitResult{}, err
		}
		cur = next
	}
}

func (t *Transport) fetchMultisig(ctx context.Context) (MultisigAccount, error) {
	data, err := t.rpc.GetAccountData(ctx, t.multisigPubkey)
	if err != nil {
		return MultisigAccount{}, keyringerr.New(keyringerr.MultisigNotFound, "fetch multisig account: "+err.Error())
	}
	return ParseMultisigAccount(data)
}

func (t *Transport) fetchProposal(ctx context.Context, proposalPDA [32]byte) (ProposalAccount, error) {
	data, err := t.rpc.GetAccountData(ctx, proposalPDA)
	if err != nil {
		return ProposalAccount{}, keyringerr.Wrap(keyringerr.InvalidAccountData, "fetch proposal account", err)
	}
	return ParseProposalAccount(data)
}

func (t *Transport) signAndSend(ctx context.Context, instructions ...Instruction) error {
	_, err := t.signAndSendForSignature(ctx, instructions...)
	return err
}

func (t *Transport) signAndSendForSignature(ctx context.Context, instructions ...Instruction) (actor.Signature, error) {
	blockhash, err := t.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return actor.Signature{}, err
	}
	msg := serializeMessage(blockhash, instructions...)
	sig, err := t.member.SignTransaction(msg)
	if err != nil {
		return actor.Signature{}, err
	}
	tx := append(append([]byte(nil), sig[:]...), msg...)
	rpcSig, err := t.rpc.SendAndConfirm(ctx, tx)
	if err != nil {
		return actor.Signature{}, err
	}
	return actor.Signature(rpcSig), nil
}
