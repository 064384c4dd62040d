package service

import (
	"github.com/langaide/langaide/internal/domain/entity"
)

// ChatRole tags a transcript entry for the completion API.
type ChatRole string

const (
	RoleUser    ChatRole = "USER"
	RoleChatbot ChatRole = "CHATBOT"
)

// ChatTurn is one role-tagged transcript entry, text verbatim.
type ChatTurn struct {
	Role    ChatRole
	Message string
}

// DefaultHistoryWindow is the fallback window size when config gives
// a non-positive value.
const DefaultHistoryWindow = 5

// ContextWindowBuilder maps recent messages into the oldest-first,
// role-tagged transcript the completion API consumes. The window is
// advisory context only; no deduplication or speaker-consistency
// checks are performed.
type ContextWindowBuilder struct {
	window int
}

// NewContextWindowBuilder creates a builder with the given window size.
func NewContextWindowBuilder(window int) *ContextWindowBuilder {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &ContextWindowBuilder{window: window}
}

// Window returns the configured window size.
func (b *ContextWindowBuilder) Window() int {
	return b.window
}

// Build takes the most-recent-first message slice, keeps at most the
// window's worth, and returns it oldest-first with each entry tagged
// RoleUser when the sender is the given human identity, RoleChatbot
// otherwise. Fewer messages than the window means all are used.
func (b *ContextWindowBuilder) Build(recent []*entity.Message, humanID string) []ChatTurn {
	if len(recent) > b.window {
		recent = recent[:b.window]
	}

	turns := make([]ChatTurn, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		role := RoleChatbot
		if msg.Sender().ID() == humanID {
			role = RoleUser
		}
		turns = append(turns, ChatTurn{
			Role:    role,
			Message: msg.Text(),
		})
	}

	return turns
}
