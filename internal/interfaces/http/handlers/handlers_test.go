package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/application/usecase"
	"github.com/langaide/langaide/internal/domain/entity"
	"github.com/langaide/langaide/internal/domain/service"
	"github.com/langaide/langaide/internal/infrastructure/auth"
	"github.com/langaide/langaide/internal/infrastructure/captcha"
	"github.com/langaide/langaide/internal/infrastructure/persistence"
	"github.com/langaide/langaide/internal/interfaces/http/handlers"
	apperrors "github.com/langaide/langaide/pkg/errors"
)

// fixedCompletion answers every request with the same text.
type fixedCompletion struct {
	reply string
	err   error
}

func (f *fixedCompletion) Chat(ctx context.Context, req *service.CompletionRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type rig struct {
	router *gin.Engine
	tokens *auth.TokenManager
	token  string
}

// newRig wires the full handler stack over in-memory stores with one
// registered account ("alice") and the seeded bot.
func newRig(t *testing.T, completion service.CompletionClient) *rig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	userRepo := persistence.NewMemoryUserRepository()
	messageRepo := persistence.NewMemoryMessageRepository()
	hasher := auth.NewPasswordHasher(4)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	caller, err := entity.NewUser("user-1", "alice", "alice@example.com", mustHash(t, hasher, "s3cret"))
	if err != nil {
		t.Fatalf("build caller: %v", err)
	}
	bot, err := entity.NewUser("bot-1", "ai", "ai@langaide.local", "")
	if err != nil {
		t.Fatalf("build bot: %v", err)
	}
	for _, u := range []*entity.User{caller, bot} {
		if err := userRepo.Create(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	chatTurn := usecase.NewChatTurnUseCase(
		messageRepo, userRepo, completion,
		service.StaticTuning{HistoryWindow: 5, Language: "en"},
		bot, logger,
	)
	accounts := usecase.NewAccountUseCase(userRepo, hasher, tokens, captcha.NoopVerifier{}, logger)

	chatHandler := handlers.NewChatHandler(chatTurn, logger)
	authHandler := handlers.NewAuthHandler(accounts, logger)

	router := gin.New()
	router.POST("/login", authHandler.Login)
	router.POST("/register", authHandler.Register)
	router.GET("/register", authHandler.CheckUsername)
	protected := router.Group("/", auth.Middleware(tokens))
	protected.POST("/chat", chatHandler.PostChat)
	protected.GET("/chat", chatHandler.GetChat)

	token, err := tokens.Generate("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	return &rig{router: router, tokens: tokens, token: token}
}

func mustHash(t *testing.T, hasher *auth.PasswordHasher, password string) string {
	t.Helper()
	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}

func (r *rig) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	w := httptest.NewRecorder()
	r.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestPostChat_ReturnsPersistedPair(t *testing.T) {
	r := newRig(t, &fixedCompletion{reply: "Bonjour!"})

	w := r.do(t, http.MethodPost, "/chat", `{"message":"Hello"}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decode(t, w)
	messages, ok := body["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %v", body["messages"])
	}

	first := messages[0].(map[string]any)
	for _, key := range []string{"message_id", "sender", "recipient", "message_text", "timestamp"} {
		if _, ok := first[key]; !ok {
			t.Fatalf("message missing %q: %v", key, first)
		}
	}
	if first["sender"] != "alice" || first["message_text"] != "Hello" {
		t.Fatalf("unexpected user half: %v", first)
	}
	second := messages[1].(map[string]any)
	if second["sender"] != "ai" || second["message_text"] != "Bonjour!" {
		t.Fatalf("unexpected AI half: %v", second)
	}
}

func TestPostChat_RequiresAuth(t *testing.T) {
	r := newRig(t, &fixedCompletion{reply: "x"})

	w := r.do(t, http.MethodPost, "/chat", `{"message":"Hello"}`, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestPostChat_BlankMessage(t *testing.T) {
	r := newRig(t, &fixedCompletion{reply: "x"})

	w := r.do(t, http.MethodPost, "/chat", `{"message":"   "}`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPostChat_UpstreamFailureRedacted(t *testing.T) {
	cause := apperrors.NewUpstreamError("api key rejected by provider", nil, false)
	r := newRig(t, &fixedCompletion{err: cause})

	w := r.do(t, http.MethodPost, "/chat", `{"message":"Hello"}`, true)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	body := decode(t, w)
	if body["error"] != "could not process your message" {
		t.Fatalf("expected redacted message, got %v", body["error"])
	}
	if strings.Contains(w.Body.String(), "api key") {
		t.Fatal("upstream detail must not leak to the caller")
	}
}

func TestGetChat_ReturnsHistoryOldestFirst(t *testing.T) {
	r := newRig(t, &fixedCompletion{reply: "r"})

	for _, text := range []string{"one", "two"} {
		w := r.do(t, http.MethodPost, "/chat", `{"message":"`+text+`"}`, true)
		if w.Code != http.StatusOK {
			t.Fatalf("turn %q: got %d", text, w.Code)
		}
	}

	w := r.do(t, http.MethodGet, "/chat", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	messages := decode(t, w)["messages"].([]any)
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[0].(map[string]any)["message_text"] != "one" {
		t.Fatal("expected oldest message first")
	}
}

func TestRegister_Created(t *testing.T) {
	r := newRig(t, &fixedCompletion{reply: "x"})

	w := r.do(t, http.MethodPost, "/register",
		`{"username":"bob","email":"bob@example.com","password":"pw","recaptchaToken":"tok"}`, false)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if decode(t, w)["message"] != "Registration successful" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	r := newRig(t, &fixedCompletion{reply: "x"})

	w := r.do(t, http.MethodPost, "/register",
		`{"username":"alice","email":"new@example.com","password":"pw","recaptchaToken":"tok"}`, false)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if decode(t, w)["error"] != "this username is already taken" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestCheckUsername(t *testing.T) {
	r := newRig(t, &fixedCompletion{reply: "x"})

	w := r.do(t, http.MethodGet, "/register?username=alice", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if decode(t, w)["isTaken"] != true {
		t.Fatalf("expected alice taken: %s", w.Body.String())
	}

	w = r.do(t, http.MethodGet, "/register?username=bob", "", false)
	if decode(t, w)["isTaken"] != false {
		t.Fatalf("expected bob free: %s", w.Body.String())
	}
}

func TestLogin_SuccessAndFailure(t *testing.T) {
	r := newRig(t, &fixedCompletion{reply: "x"})

	w := r.do(t, http.MethodPost, "/login", `{"email":"alice@example.com","password":"s3cret"}`, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["status"] != "success" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	token, _ := body["token"].(string)
	if _, err := r.tokens.Verify(token); err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}

	w = r.do(t, http.MethodPost, "/login", `{"email":"alice@example.com","password":"wrong"}`, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	body = decode(t, w)
	if body["status"] != "error" || body["message"] != "Invalid email or password" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
