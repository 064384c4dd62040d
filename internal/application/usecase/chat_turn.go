package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/domain/entity"
	"github.com/langaide/langaide/internal/domain/repository"
	"github.com/langaide/langaide/internal/domain/service"
	"github.com/langaide/langaide/internal/domain/valueobject"
	apperrors "github.com/langaide/langaide/pkg/errors"
)

// MessageDTO is one persisted message as returned to the caller.
type MessageDTO struct {
	MessageID string    `json:"message_id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Text      string    `json:"message_text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatTurnUseCase orchestrates one chat turn: validate the utterance,
// build the context window, request a completion, persist both halves
// of the turn atomically, and return them.
//
// The human identity is always the authenticated caller; the AI
// persona is the seeded bot account. Neither is ever created here.
type ChatTurnUseCase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	completion  service.CompletionClient
	tuning      service.TuningSource
	bot         valueobject.Participant
	logger      *zap.Logger
	onTurn      func(callerID string, messages []MessageDTO)
}

// NewChatTurnUseCase creates the chat turn orchestrator. bot is the
// seeded AI persona account.
func NewChatTurnUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	completion service.CompletionClient,
	tuning service.TuningSource,
	bot *entity.User,
	logger *zap.Logger,
) *ChatTurnUseCase {
	return &ChatTurnUseCase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		completion:  completion,
		tuning:      tuning,
		bot:         valueobject.NewParticipant(bot.ID(), bot.Username(), true),
		logger:      logger,
	}
}

// SetTurnListener registers a callback invoked after a turn is
// persisted (live feed broadcast).
func (uc *ChatTurnUseCase) SetTurnListener(fn func(callerID string, messages []MessageDTO)) {
	uc.onTurn = fn
}

// Execute runs one chat turn for the authenticated caller and returns
// the two persisted messages, user half first.
//
// Failure order matters: validation failures return before any side
// effect, a completion failure aborts before any write, and a write
// failure rolls back both rows. No path leaves half a turn behind.
func (uc *ChatTurnUseCase) Execute(ctx context.Context, callerID, text string) ([]MessageDTO, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewInvalidInputError("no message provided")
	}

	caller, err := uc.userRepo.FindByID(ctx, callerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("unknown session identity")
		}
		return nil, err
	}

	human := valueobject.NewParticipant(caller.ID(), caller.Username(), false)
	chatID := chatIDFor(caller)
	tuning := uc.tuning.Tuning()

	// Context is scoped to the caller's chat, never global.
	windowBuilder := service.NewContextWindowBuilder(tuning.HistoryWindow)
	recent, err := uc.messageRepo.Recent(ctx, chatID, windowBuilder.Window())
	if err != nil {
		// The window is advisory; a failed read degrades to an empty
		// history rather than failing the turn.
		uc.logger.Warn("Failed to load recent messages", zap.Error(err))
		recent = nil
	}
	history := windowBuilder.Build(recent, human.ID())

	// The external call happens before, and entirely outside, the
	// write transaction.
	reply, err := uc.completion.Chat(ctx, &service.CompletionRequest{
		History: history,
		Message: text,
	})
	if err != nil {
		uc.logger.Error("Completion request failed",
			zap.String("chat_id", chatID),
			zap.Error(err),
		)
		return nil, err
	}

	userMsg, err := entity.NewMessage(
		uuid.NewString(), chatID, human, uc.bot, text, tuning.Language, false,
	)
	if err != nil {
		return nil, apperrors.NewInternalErrorWithCause("build user message", err)
	}

	aiMsg, err := entity.NewMessage(
		uuid.NewString(), chatID, uc.bot, human, reply, tuning.Language, true,
	)
	if err != nil {
		return nil, apperrors.NewInternalErrorWithCause("build ai message", err)
	}

	if err := uc.messageRepo.AppendTurn(ctx, userMsg, aiMsg); err != nil {
		uc.logger.Error("Failed to persist chat turn",
			zap.String("chat_id", chatID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.logger.Info("Chat turn persisted",
		zap.String("chat_id", chatID),
		zap.String("user_message_id", userMsg.ID()),
		zap.String("ai_message_id", aiMsg.ID()),
		zap.Int("context_turns", len(history)),
	)

	messages := []MessageDTO{toDTO(userMsg), toDTO(aiMsg)}
	if uc.onTurn != nil {
		uc.onTurn(caller.ID(), messages)
	}
	return messages, nil
}

// History returns the caller's full chat history, oldest-first.
func (uc *ChatTurnUseCase) History(ctx context.Context, callerID string) ([]MessageDTO, error) {
	caller, err := uc.userRepo.FindByID(ctx, callerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("unknown session identity")
		}
		return nil, err
	}

	history, err := uc.messageRepo.ListByTime(ctx, chatIDFor(caller))
	if err != nil {
		return nil, err
	}

	messages := make([]MessageDTO, 0, len(history))
	for _, msg := range history {
		messages = append(messages, toDTO(msg))
	}
	return messages, nil
}

// chatIDFor derives the caller's conversation id. One conversation per
// account for now; a chat-selection surface can widen this later.
func chatIDFor(user *entity.User) string {
	return "chat:" + user.ID()
}

func toDTO(msg *entity.Message) MessageDTO {
	return MessageDTO{
		MessageID: msg.ID(),
		Sender:    msg.Sender().Username(),
		Recipient: msg.Recipient().Username(),
		Text:      msg.Text(),
		Timestamp: msg.Timestamp(),
	}
}
