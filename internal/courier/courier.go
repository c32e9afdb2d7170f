// Package courier delivers outbound chat messages to the user's platform
// (Telegram, Slack, Discord). Adapters format and truncate text for their
// platform; formatting problems never fail a send.
package courier

import "context"

// Courier is the interface platform-specific senders implement. handle is
// the platform-native destination: a Telegram chat ID, Slack channel, or
// Discord channel.
type Courier interface {
	Send(ctx context.Context, handle string, text string) error
}
