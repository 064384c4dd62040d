package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/langaide/langaide/internal/domain/entity"
	"github.com/langaide/langaide/internal/domain/repository"
	"github.com/langaide/langaide/internal/domain/valueobject"
	"github.com/langaide/langaide/internal/infrastructure/persistence/models"
	domainErrors "github.com/langaide/langaide/pkg/errors"
)

// GormMessageRepository is the GORM-backed chat turn log.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a GORM message repository.
func NewGormMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &GormMessageRepository{db: db}
}

// Append persists a single message.
func (r *GormMessageRepository) Append(ctx context.Context, message *entity.Message) error {
	if err := r.db.WithContext(ctx).Create(toMessageModel(message)).Error; err != nil {
		return domainErrors.NewInternalErrorWithCause("failed to append message", err)
	}
	return nil
}

// AppendTurn persists the user message and the AI reply in one
// transaction, user row first. Any failure rolls both back.
func (r *GormMessageRepository) AppendTurn(ctx context.Context, userMsg, aiMsg *entity.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toMessageModel(userMsg)).Error; err != nil {
			return err
		}
		if err := tx.Create(toMessageModel(aiMsg)).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domainErrors.NewInternalErrorWithCause("failed to append chat turn", err)
	}
	return nil
}

// Recent returns at most limit messages of a chat, most-recent-first.
func (r *GormMessageRepository) Recent(ctx context.Context, chatID string, limit int) ([]*entity.Message, error) {
	var rows []models.MessageModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, domainErrors.NewInternalErrorWithCause("failed to load recent messages", err)
	}
	return toMessageEntities(rows), nil
}

// ListByTime returns the full chat history, oldest-first.
func (r *GormMessageRepository) ListByTime(ctx context.Context, chatID string) ([]*entity.Message, error) {
	var rows []models.MessageModel
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, domainErrors.NewInternalErrorWithCause("failed to load chat history", err)
	}
	return toMessageEntities(rows), nil
}

// Count returns the number of messages in a chat.
func (r *GormMessageRepository) Count(ctx context.Context, chatID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MessageModel{}).
		Where("chat_id = ?", chatID).
		Count(&count).Error
	if err != nil {
		return 0, domainErrors.NewInternalErrorWithCause("failed to count messages", err)
	}
	return count, nil
}

func toMessageModel(message *entity.Message) *models.MessageModel {
	model := &models.MessageModel{
		ID:            message.ID(),
		ChatID:        message.ChatID(),
		SenderName:    message.Sender().Username(),
		RecipientName: message.Recipient().Username(),
		IsFromAI:      message.IsFromAI(),
		Text:          message.Text(),
		Language:      message.Language(),
		CreatedAt:     message.Timestamp(),
	}
	if id := message.Sender().ID(); id != "" {
		model.SenderID = &id
	}
	if id := message.Recipient().ID(); id != "" {
		model.RecipientID = &id
	}
	return model
}

func toMessageEntity(model *models.MessageModel) *entity.Message {
	var senderID, recipientID string
	if model.SenderID != nil {
		senderID = *model.SenderID
	}
	if model.RecipientID != nil {
		recipientID = *model.RecipientID
	}

	sender := valueobject.NewParticipant(senderID, model.SenderName, model.IsFromAI)
	recipient := valueobject.NewParticipant(recipientID, model.RecipientName, !model.IsFromAI)

	return entity.ReconstructMessage(
		model.ID,
		model.ChatID,
		sender,
		recipient,
		model.Text,
		model.Language,
		model.IsFromAI,
		model.CreatedAt,
	)
}

func toMessageEntities(rows []models.MessageModel) []*entity.Message {
	messages := make([]*entity.Message, 0, len(rows))
	for i := range rows {
		messages = append(messages, toMessageEntity(&rows[i]))
	}
	return messages
}
