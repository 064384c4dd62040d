package persistence

import (
	"context"
	"sync"

	"github.com/langaide/langaide/internal/domain/entity"
	"github.com/langaide/langaide/internal/domain/repository"
)

// MemoryMessageRepository is the in-memory chat turn log (development
// and tests). Messages are held in append order, which is also time
// order because timestamps are assigned at creation.
type MemoryMessageRepository struct {
	mu     sync.RWMutex
	byChat map[string][]*entity.Message
}

// NewMemoryMessageRepository creates an in-memory message repository.
func NewMemoryMessageRepository() repository.MessageRepository {
	return &MemoryMessageRepository{
		byChat: make(map[string][]*entity.Message),
	}
}

// Append persists a single message.
func (r *MemoryMessageRepository) Append(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byChat[message.ChatID()] = append(r.byChat[message.ChatID()], message)
	return nil
}

// AppendTurn persists both halves of a turn under one lock, so a
// reader never observes the user message without the AI reply.
func (r *MemoryMessageRepository) AppendTurn(ctx context.Context, userMsg, aiMsg *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byChat[userMsg.ChatID()] = append(r.byChat[userMsg.ChatID()], userMsg)
	r.byChat[aiMsg.ChatID()] = append(r.byChat[aiMsg.ChatID()], aiMsg)
	return nil
}

// Recent returns at most limit messages, most-recent-first.
func (r *MemoryMessageRepository) Recent(ctx context.Context, chatID string, limit int) ([]*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.byChat[chatID]
	if limit > len(all) {
		limit = len(all)
	}

	recent := make([]*entity.Message, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		recent = append(recent, all[i])
	}
	return recent, nil
}

// ListByTime returns the full history, oldest-first.
func (r *MemoryMessageRepository) ListByTime(ctx context.Context, chatID string) ([]*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.byChat[chatID]
	history := make([]*entity.Message, len(all))
	copy(history, all)
	return history, nil
}

// Count returns the number of messages in a chat.
func (r *MemoryMessageRepository) Count(ctx context.Context, chatID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.byChat[chatID])), nil
}
