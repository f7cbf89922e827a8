package multisig

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/solana-keyring/keyring/internal/actor"
	"github.com/solana-keyring/keyring/internal/keypair"
	"github.com/solana-keyring/keyring/internal/rpcclient"
)

// mockRPC implements rpcclient.Client against an in-memory account table,
// letting tests script the on-chain state the engine observes (spec §8
// scenario f).
type mockRPC struct {
	accounts map[[32]byte][]byte
	sendErr  error
	sent     int
}

func (m *mockRPC) GetLatestBlockhash(context.Context) (rpcclient.Blockhash, error) {
	return rpcclient.Blockhash{1, 2, 3}, nil
}

func (m *mockRPC) GetAccountData(_ context.Context, pubkey [32]byte) ([]byte, error) {
	data, ok := m.accounts[pubkey]
	if !ok {
		return nil, errNotFound
	}
	return data, nil
}

func (m *mockRPC) SendAndConfirm(_ context.Context, _ []byte) ([64]byte, error) {
	m.sent++
	if m.sendErr != nil {
		return [64]byte{}, m.sendErr
	}
	var sig [64]byte
	sig[0] = byte(m.sent)
	return sig, nil
}

type stubErr string

func (e stubErr) Error() string { return string(e) }

const errNotFound = stubErr("account not found")

func encodeMultisig(threshold uint16, transactionIndex uint64) []byte {
	data := make([]byte, 86)
	binary.LittleEndian.PutUint16(data[72:74], threshold)
	binary.LittleEndian.PutUint64(data[78:86], transactionIndex)
	return data
}

func encodeProposal(status uint8, approvalCount uint32) []byte {
	data := make([]byte, 54)
	data[48] = status
	binary.LittleEndian.PutUint32(data[50:54], approvalCount)
	return data
}

func TestSubmitBelowThresholdThenExecutedOnCheckStatus(t *testing.T) {
	multisigPubkey := [32]byte{9, 9, 9}

	member, err := keypair.Generate()
	if err != nil {
		t.Fatalf("generate member: %v", err)
	}
	defer member.Close()

	next := uint64(8)
	txPDA := TransactionPDA(multisigPubkey, next)
	proposalPDA := ProposalPDA(multisigPubkey, next)

	rpc := &mockRPC{accounts: map[[32]byte][]byte{
		multisigPubkey: encodeMultisig(2, 7),
		proposalPDA:    encodeProposal(0, 1), // approval_count=1, not executed
	}}

	transport := NewTransport(rpc, member, multisigPubkey, 0)
	result, err := transport.Submit(context.Background(), []byte("transfer 1 lamport"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Kind != actor.KindPending {
		t.Fatalf("expected Pending, got %v", result.Kind)
	}
	if result.TransactionIndex != next {
		t.Fatalf("transaction index = %d, want %d", result.TransactionIndex, next)
	}
	if result.Approvals != 1 || result.Threshold != 2 {
		t.Fatalf("approvals/threshold = %d/%d, want 1/2", result.Approvals, result.Threshold)
	}

	// Simulate the proposal crossing the threshold and being executed.
	rpc.accounts[proposalPDA] = encodeProposal(3, 2)
	rpc.accounts[txPDA] = makeVaultTransactionAccount()

	final, err := transport.CheckStatus(context.Background(), result)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if !final.IsComplete() {
		t.Fatalf("expected complete result, got %+v", final)
	}
	if final.Approvals != 2 || final.Threshold != 2 {
		t.Fatalf("final approvals/threshold = %d/%d, want 2/2", final.Approvals, final.Threshold)
	}
}

func makeVaultTransactionAccount() []byte {
	data := make([]byte, 8+32+32+8+1+1+1+4)
	// ephemeral_signer_bumps len = 0, then message header:
	data = append(data, 0, 0, 0) // num_signers, num_writable_signers, num_writable_non_signers
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], 0)
	data = append(data, l[:]...)
	return data
}
