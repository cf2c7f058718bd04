// Package platform abstracts the chat platform behind a small client
// interface so the dispatch loop and tests do not depend on Mattermost.
package platform

import (
	"context"

	"github.com/chastnik/mm-bot/internal/models"
)

// Client is the chat platform surface the bot needs.
type Client interface {
	// Poll returns new inbound events since the previous call.
	Poll(ctx context.Context) ([]models.InboundEvent, error)
	// Send posts a plain text message to a channel.
	Send(ctx context.Context, channelID, text string) error
	// SendWithAttachment posts a message with one attached file.
	SendWithAttachment(ctx context.Context, channelID, text, filename string, data []byte) error
	// FetchAttachment downloads an attached file's bytes.
	FetchAttachment(ctx context.Context, fileID string) ([]byte, error)
	// IsDirect reports whether the channel is a known direct-message channel.
	IsDirect(channelID string) bool
}
