package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/application/usecase"
	"github.com/langaide/langaide/internal/infrastructure/auth"
)

// ChatHandler serves the chat turn and history endpoints.
type ChatHandler struct {
	chatTurn *usecase.ChatTurnUseCase
	logger   *zap.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(chatTurn *usecase.ChatTurnUseCase, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatTurn: chatTurn,
		logger:   logger,
	}
}

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Message string `json:"message"`
}

// PostChat runs one chat turn.
// POST /chat
func (h *ChatHandler) PostChat(c *gin.Context) {
	callerID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no message provided"})
		return
	}

	messages, err := h.chatTurn.Execute(c.Request.Context(), callerID, req.Message)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetChat returns the caller's full chat history, oldest-first.
// GET /chat
func (h *ChatHandler) GetChat(c *gin.Context) {
	callerID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	messages, err := h.chatTurn.History(c.Request.Context(), callerID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
