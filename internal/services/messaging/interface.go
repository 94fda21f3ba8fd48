package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/nomic/internal/services/messaging Service

import (
	"context"
	"errors"
)

// MaxMessageLength is the most characters a single chat message may hold
const MaxMessageLength = 2000

// ErrMessageNotFound is returned when a message was deleted out of band
var ErrMessageNotFound = errors.New("message not found")

// Service is the chat platform as seen by the game: channels of messages
// that can be posted, edited, deleted and reacted to
type Service interface {
	// SendMessage posts a new message to a channel
	SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error)

	// EditMessage replaces the content of a message the bot posted
	EditMessage(ctx context.Context, input *EditMessageInput) error

	// DeleteMessage deletes a single message
	DeleteMessage(ctx context.Context, input *DeleteMessageInput) error

	// BulkDeleteMessages deletes many messages of one channel in as few calls as possible.
	// Messages that are already gone are ignored.
	BulkDeleteMessages(ctx context.Context, input *BulkDeleteMessagesInput) error

	// AddReaction adds one of the bot's own reactions to a message
	AddReaction(ctx context.Context, input *AddReactionInput) error

	// ClearReactions removes every reaction from a message
	ClearReactions(ctx context.Context, input *ClearReactionsInput) error

	// FetchMessage retrieves a message, returning ErrMessageNotFound if it is gone
	FetchMessage(ctx context.Context, input *FetchMessageInput) (*FetchMessageOutput, error)
}
