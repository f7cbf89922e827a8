// Package notify defines a local desktop-notification hook for sensitive
// operations (unlock, a multisig proposal reaching its threshold). No code
// in this module calls a Notifier: the agent and the multisig transport
// send no notifications. Delivery failures are non-fatal (spec §9): the
// default implementation logs instead of delivering.
package notify

import "github.com/rs/zerolog"

// Notifier delivers a short title/body notification to the local user.
type Notifier interface {
	Notify(title, body string) error
}

// LoggingNotifier logs notifications instead of delivering them, the
// reasonable default on a headless host or a platform without a
// notification daemon.
type LoggingNotifier struct {
	Log zerolog.Logger
}

// Notify logs title and body at info level.
func (n LoggingNotifier) Notify(title, body string) error {
	n.Log.Info().Str("title", title).Str("body", body).Msg("notification")
	return nil
}
