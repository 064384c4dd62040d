package repository

import (
	"context"

	"github.com/langaide/langaide/internal/domain/entity"
)

// MessageRepository is the append-only chat turn log.
type MessageRepository interface {
	// Append persists a single message.
	Append(ctx context.Context, message *entity.Message) error

	// AppendTurn persists a user message and its AI reply in one
	// transaction. On error neither row is written; a reader never
	// observes a lone half of a turn.
	AppendTurn(ctx context.Context, userMsg, aiMsg *entity.Message) error

	// Recent returns at most limit messages of a chat,
	// most-recent-first, as a snapshot at call time.
	Recent(ctx context.Context, chatID string, limit int) ([]*entity.Message, error)

	// ListByTime returns the full chat history, oldest-first.
	ListByTime(ctx context.Context, chatID string) ([]*entity.Message, error)

	// Count returns the number of messages in a chat.
	Count(ctx context.Context, chatID string) (int64, error)
}
