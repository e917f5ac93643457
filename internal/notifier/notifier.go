package notifier

import "github.com/mvoss/ttstats/internal/league"

// Notifier defines a high-level interface for sending notifications about
// business events. This decouples the pipeline from the specific provider
// (e.g., Slack).
type Notifier interface {
	// SendConfirmationNeeded is sent once per unconfirmed, verified
	// participant when a match completes without auto-confirming.
	SendConfirmationNeeded(match *league.Match, player league.PlayerInfo, dryRun bool) error
	// SendResultNotification announces a completed match to the club.
	SendResultNotification(match *league.Match, dryRun bool) error
}
