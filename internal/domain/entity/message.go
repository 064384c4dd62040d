package entity

import (
	"strings"
	"time"

	"github.com/langaide/langaide/internal/domain/valueobject"
)

// Message is one chat turn half: either a human utterance or the AI
// reply that answers it. Messages are append-only; nothing in the
// system mutates or deletes one after creation.
type Message struct {
	id        string
	chatID    string
	sender    valueobject.Participant
	recipient valueobject.Participant
	fromAI    bool
	text      string
	language  string
	timestamp time.Time
}

// NewMessage creates a new message (factory method). The timestamp is
// assigned here, server-side; whitespace-only text is rejected.
func NewMessage(
	id string,
	chatID string,
	sender valueobject.Participant,
	recipient valueobject.Participant,
	text string,
	language string,
	fromAI bool,
) (*Message, error) {
	if id == "" {
		return nil, ErrInvalidMessageID
	}
	if chatID == "" {
		return nil, ErrInvalidChatID
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessageText
	}

	return &Message{
		id:        id,
		chatID:    chatID,
		sender:    sender,
		recipient: recipient,
		fromAI:    fromAI,
		text:      text,
		language:  language,
		timestamp: time.Now(),
	}, nil
}

// ReconstructMessage rebuilds a message from the persistence layer.
func ReconstructMessage(
	id string,
	chatID string,
	sender valueobject.Participant,
	recipient valueobject.Participant,
	text string,
	language string,
	fromAI bool,
	timestamp time.Time,
) *Message {
	return &Message{
		id:        id,
		chatID:    chatID,
		sender:    sender,
		recipient: recipient,
		fromAI:    fromAI,
		text:      text,
		language:  language,
		timestamp: timestamp,
	}
}

func (m *Message) ID() string                           { return m.id }
func (m *Message) ChatID() string                       { return m.chatID }
func (m *Message) Sender() valueobject.Participant      { return m.sender }
func (m *Message) Recipient() valueobject.Participant   { return m.recipient }
func (m *Message) Text() string                         { return m.text }
func (m *Message) Language() string                     { return m.language }
func (m *Message) IsFromAI() bool                       { return m.fromAI }
func (m *Message) Timestamp() time.Time                 { return m.timestamp }
