package clients

import (
	"context"

	"github.com/samber/mo"

	"latchbot/models"
)

// MessageOptions holds the optional parameters of a send message call
type MessageOptions struct {
	ThreadID mo.Option[int64]
}

type MessageOption func(*MessageOptions)

// WithThreadID posts the message as a reply to the given parent message
func WithThreadID(threadID int64) MessageOption {
	return func(o *MessageOptions) {
		o.ThreadID = mo.Some(threadID)
	}
}

// ApplyMessageOptions folds opts into a MessageOptions value
func ApplyMessageOptions(opts ...MessageOption) MessageOptions {
	var options MessageOptions
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// LatchClient defines the bot operations of the Latch API
type LatchClient interface {
	// Message operations
	SendMessage(ctx context.Context, conversationID int64, text string, opts ...MessageOption) (*models.Message, error)
	SendThreadedReply(ctx context.Context, conversationID, threadID int64, text string) (*models.Message, error)

	// Conversation operations
	GetConversation(ctx context.Context, conversationID int64) (*models.Conversation, error)
}
