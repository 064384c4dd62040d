package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/application/usecase"
	"github.com/langaide/langaide/internal/infrastructure/auth"
	"github.com/langaide/langaide/internal/interfaces/http/handlers"
	"github.com/langaide/langaide/internal/interfaces/websocket"
)

// Server is the HTTP interface.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// Config configures the HTTP server.
type Config struct {
	Host string
	Port int
	Mode string // local, production
}

// NewServer builds the router and wires every endpoint.
func NewServer(
	cfg Config,
	chatTurn *usecase.ChatTurnUseCase,
	accounts *usecase.AccountUseCase,
	tokens *auth.TokenManager,
	hub *websocket.Hub,
	logger *zap.Logger,
) *Server {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logger))

	chatHandler := handlers.NewChatHandler(chatTurn, logger)
	authHandler := handlers.NewAuthHandler(accounts, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	router.POST("/login", authHandler.Login)
	router.POST("/register", authHandler.Register)
	router.GET("/register", authHandler.CheckUsername)

	authed := router.Group("/", auth.Middleware(tokens))
	{
		authed.POST("/chat", chatHandler.PostChat)
		authed.GET("/chat", chatHandler.GetChat)
	}

	if hub != nil {
		router.GET("/ws", hub.Handler(tokens))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: logger,
	}
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// ginLogger logs each request through zap.
func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
