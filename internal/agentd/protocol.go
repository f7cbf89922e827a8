package agentd

import (
	"encoding/json"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

var errAgentLocked = keyringerr.New(keyringerr.AgentLocked, "agent is locked")

// Request is the wire envelope for every client call (spec §4.2).
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the wire envelope for every reply.
type Response struct {
	Status  string      `json:"status"`
	Result  interface{} `json:"result,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

const (
	MethodPing            = "Ping"
	MethodStatus          = "Status"
	MethodUnlock          = "Unlock"
	MethodLock            = "Lock"
	MethodListSigners     = "ListSigners"
	MethodSignTransaction = "SignTransaction"
	MethodShutdown        = "Shutdown"
)

// UnlockParams carries the passphrase for Unlock.
type UnlockParams struct {
	Passphrase string `json:"passphrase"`
}

// ListSignersParams optionally filters by tag.
type ListSignersParams struct {
	Tag *string `json:"tag,omitempty"`
}

// SignTransactionParams carries a base64-encoded message and a
// label-or-pubkey signer identifier.
type SignTransactionParams struct {
	Transaction string `json:"transaction"`
	Signer      string `json:"signer"`
}

// StatusResult is the Status method's result payload.
type StatusResult struct {
	Unlocked           bool  `json:"unlocked"`
	UptimeSeconds      int64 `json:"uptime_seconds"`
	LockTimeoutSeconds int64 `json:"lock_timeout_seconds"`
	SignerCount        int   `json:"signer_count"`
}

// SignerInfo describes one registered software keypair.
type SignerInfo struct {
	Label  string   `json:"label"`
	Pubkey string   `json:"pubkey"`
	Tags   []string `json:"tags,omitempty"`
}
