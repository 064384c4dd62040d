package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/application/usecase"
	apperrors "github.com/langaide/langaide/pkg/errors"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	accounts *usecase.AccountUseCase
	logger   *zap.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(accounts *usecase.AccountUseCase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// LoginRequest is the POST /login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the POST /register body.
type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"recaptchaToken"`
}

// Login authenticates by email and returns a session token.
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid email or password"})
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid email or password"})
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not process your request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "token": token})
}

// Register creates a new account.
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data."})
		return
	}

	err := h.accounts.Register(c.Request.Context(), usecase.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		CaptchaToken: req.CaptchaToken,
	})
	if err != nil {
		// A failed captcha verification service rejects the
		// registration rather than surfacing a server error.
		if apperrors.IsUpstream(err) {
			h.logger.Error("Captcha verification unavailable", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reCAPTCHA."})
			return
		}
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful"})
}

// CheckUsername reports username availability.
// GET /register?username=
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	taken, err := h.accounts.UsernameTaken(c.Request.Context(), username)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"isTaken": taken})
}
