// Package txsummary is the external collaborator (spec §1 "a small helper
// that pretty-prints a decoded transaction message") consumed by the
// signing flow before a confirmation prompt is shown. Decoding the target
// chain's wire transaction format is out of scope here; this package
// defines the boundary the agent calls through and a minimal renderer
// sufficient to show a human a recognizable summary.
package txsummary

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Summarizer renders a short human-readable description of a serialized
// transaction message, shown to the user before they approve a signature.
type Summarizer interface {
	Summarize(message []byte) (string, error)
}

// Default is a minimal summarizer: it reports the message's byte length
// and a base64 preview, without attempting full instruction decoding.
type Default struct{}

// Summarize renders message as a short preview line.
func (Default) Summarize(message []byte) (string, error) {
	if len(message) == 0 {
		return "", fmt.Errorf("txsummary: empty transaction message")
	}
	enc := base64.StdEncoding.EncodeToString(message)
	if len(enc) > 48 {
		enc = enc[:45] + "..."
	}
	return fmt.Sprintf("transaction (%d bytes): %s", len(message), enc), nil
}

// Confirm formats a full confirmation prompt around a summary line.
func Confirm(summary string) string {
	return strings.TrimSpace("Sign this transaction?\n\n" + summary)
}
