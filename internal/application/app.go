package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/langaide/langaide/internal/application/usecase"
	"github.com/langaide/langaide/internal/domain/entity"
	"github.com/langaide/langaide/internal/domain/repository"
	"github.com/langaide/langaide/internal/domain/service"
	"github.com/langaide/langaide/internal/infrastructure/auth"
	"github.com/langaide/langaide/internal/infrastructure/captcha"
	"github.com/langaide/langaide/internal/infrastructure/completion/cohere"
	"github.com/langaide/langaide/internal/infrastructure/config"
	"github.com/langaide/langaide/internal/infrastructure/persistence"
	httpServer "github.com/langaide/langaide/internal/interfaces/http"
	"github.com/langaide/langaide/internal/interfaces/websocket"
	apperrors "github.com/langaide/langaide/pkg/errors"
	"github.com/langaide/langaide/pkg/safego"
)

// App is the dependency-injection container.
type App struct {
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB

	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository

	hasher  *auth.PasswordHasher
	tokens  *auth.TokenManager
	tuning  service.TuningSource
	watcher *service.TuningWatcher
	bot     *entity.User

	chatTurn *usecase.ChatTurnUseCase
	accounts *usecase.AccountUseCase

	hub        *websocket.Hub
	httpServer *httpServer.Server

	cancelBackground context.CancelFunc
}

// NewApp wires the application together.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
	}

	if err := app.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := app.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to init infrastructure: %w", err)
	}

	if err := app.seedBotAccount(); err != nil {
		return nil, fmt.Errorf("failed to seed bot account: %w", err)
	}

	if err := app.initApplicationServices(); err != nil {
		return nil, fmt.Errorf("failed to init application services: %w", err)
	}

	app.initInterfaces()

	return app, nil
}

func (a *App) initRepositories() error {
	db, err := persistence.NewDBConnection(&a.config.Database)
	if err != nil {
		return err
	}

	a.db = db
	a.userRepo = persistence.NewGormUserRepository(db)
	a.messageRepo = persistence.NewGormMessageRepository(db)
	return nil
}

func (a *App) initInfrastructure() error {
	a.hasher = auth.NewPasswordHasher(a.config.Auth.BcryptCost)

	if a.config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	a.tokens = auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.TokenValidity)

	initial := service.ChatTuning{
		HistoryWindow: a.config.Chat.HistoryWindow,
		Language:      a.config.Chat.Language,
	}
	if path := config.LocalPath(); path != "" {
		a.watcher = service.NewTuningWatcher(path, initial, a.loadTuning, a.logger)
		a.tuning = a.watcher
	} else {
		a.tuning = service.StaticTuning(initial)
	}

	return nil
}

// seedBotAccount ensures the AI persona exists. This is the only
// identity the system ever creates on its own; human identities come
// from registration.
func (a *App) seedBotAccount() error {
	ctx := context.Background()
	username := a.config.Chat.BotUsername

	bot, err := a.userRepo.FindByUsername(ctx, username)
	if err == nil {
		a.bot = bot
		return nil
	}
	if !apperrors.IsNotFound(err) {
		return err
	}

	// No usable password: the persona can never log in.
	bot, err = entity.NewUser(uuid.NewString(), username, username+"@langaide.local", "")
	if err != nil {
		return err
	}
	bot.MarkStaff()

	if err := a.userRepo.Create(ctx, bot); err != nil {
		return err
	}

	a.logger.Info("Seeded AI persona account",
		zap.String("user_id", bot.ID()),
		zap.String("username", bot.Username()),
	)
	a.bot = bot
	return nil
}

func (a *App) initApplicationServices() error {
	var verifier captcha.Verifier
	if a.config.Captcha.Disabled {
		a.logger.Warn("Captcha verification is disabled")
		verifier = captcha.NoopVerifier{}
	} else {
		verifier = captcha.NewRecaptchaVerifier(a.config.Captcha, a.logger)
	}

	var completionClient service.CompletionClient = cohere.New(a.config.Cohere, a.logger)
	if a.config.Cohere.MaxRetries > 0 {
		completionClient = service.NewRetryingCompletionClient(completionClient, a.config.Cohere.MaxRetries, a.logger)
	}

	a.chatTurn = usecase.NewChatTurnUseCase(
		a.messageRepo,
		a.userRepo,
		completionClient,
		a.tuning,
		a.bot,
		a.logger,
	)
	a.accounts = usecase.NewAccountUseCase(a.userRepo, a.hasher, a.tokens, verifier, a.logger)
	return nil
}

func (a *App) initInterfaces() {
	a.hub = websocket.NewHub(a.logger)
	a.chatTurn.SetTurnListener(a.hub.BroadcastTurn)

	a.httpServer = httpServer.NewServer(
		httpServer.Config{
			Host: a.config.Server.Host,
			Port: a.config.Server.Port,
			Mode: a.config.Server.Mode,
		},
		a.chatTurn,
		a.accounts,
		a.tokens,
		a.hub,
		a.logger,
	)
}

// Start launches background services and the HTTP interface.
func (a *App) Start(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	a.cancelBackground = cancel

	if a.watcher != nil {
		safego.Go(a.logger, "tuning-watcher", func() {
			a.watcher.Run(bgCtx)
		})
	}

	return a.httpServer.Start(ctx)
}

// Stop shuts everything down gracefully.
func (a *App) Stop(ctx context.Context) error {
	if a.cancelBackground != nil {
		a.cancelBackground()
	}

	a.hub.Shutdown(ctx)

	return a.httpServer.Stop(ctx)
}

// loadTuning re-reads the chat section of the config file for the
// tuning watcher. Missing keys fall back to boot-time values.
func (a *App) loadTuning(path string) (service.ChatTuning, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("chat.history_window", a.config.Chat.HistoryWindow)
	v.SetDefault("chat.language", a.config.Chat.Language)

	if err := v.ReadInConfig(); err != nil {
		return service.ChatTuning{}, err
	}

	return service.ChatTuning{
		HistoryWindow: v.GetInt("chat.history_window"),
		Language:      v.GetString("chat.language"),
	}, nil
}
