package slack

import "context"

// Service provides the subset of the Slack API used for operator alerts
type Service interface {
	// PostMessage posts a plain text message to a channel and returns the message timestamp
	PostMessage(ctx context.Context, channelID, text string) (string, error)
}
