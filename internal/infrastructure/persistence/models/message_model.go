package models

import (
	"time"
)

// MessageModel is the database chat message record. Sender and
// recipient ids are nullable: accounts may be deleted out-of-band
// while their messages remain. The usernames are denormalized so
// history rendering survives such deletions.
type MessageModel struct {
	ID            string    `gorm:"primaryKey;size:64"`
	ChatID        string    `gorm:"index:idx_messages_chat_time;size:64;not null"`
	SenderID      *string   `gorm:"size:64"`
	SenderName    string    `gorm:"size:150"`
	RecipientID   *string   `gorm:"size:64"`
	RecipientName string    `gorm:"size:150"`
	IsFromAI      bool      `gorm:"not null;default:false"`
	Text          string    `gorm:"type:text;not null"`
	Language      string    `gorm:"size:10;not null"`
	CreatedAt     time.Time `gorm:"index:idx_messages_chat_time"`
}

func (MessageModel) TableName() string {
	return "messages"
}
