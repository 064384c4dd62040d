package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/langaide/langaide/internal/domain/entity"
	"github.com/langaide/langaide/internal/domain/valueobject"
	apperrors "github.com/langaide/langaide/pkg/errors"
)

func testUser(t *testing.T, id, username, email string) *entity.User {
	t.Helper()
	user, err := entity.NewUser(id, username, email, "hash")
	if err != nil {
		t.Fatalf("build user: %v", err)
	}
	return user
}

func testMessage(t *testing.T, id, chatID, text string) *entity.Message {
	t.Helper()
	sender := valueobject.NewParticipant("u-1", "user", false)
	recipient := valueobject.NewParticipant("b-1", "ai", true)
	msg, err := entity.NewMessage(id, chatID, sender, recipient, text, "en", false)
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	return msg
}

func TestMemoryUserRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, testUser(t, "id-1", "alice", "alice@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := repo.FindByID(ctx, "id-1")
	if err != nil || byID.Username() != "alice" {
		t.Fatalf("FindByID: got %v, %v", byID, err)
	}
	byName, err := repo.FindByUsername(ctx, "alice")
	if err != nil || byName.ID() != "id-1" {
		t.Fatalf("FindByUsername: got %v, %v", byName, err)
	}
	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil || byEmail.ID() != "id-1" {
		t.Fatalf("FindByEmail: got %v, %v", byEmail, err)
	}
}

func TestMemoryUserRepository_Duplicates(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, testUser(t, "id-1", "alice", "alice@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.Create(ctx, testUser(t, "id-2", "alice", "other@example.com"))
	if !apperrors.IsAlreadyExists(err) {
		t.Fatalf("duplicate username: expected already-exists, got %v", err)
	}

	err = repo.Create(ctx, testUser(t, "id-3", "bob", "alice@example.com"))
	if !apperrors.IsAlreadyExists(err) {
		t.Fatalf("duplicate email: expected already-exists, got %v", err)
	}
}

func TestMemoryUserRepository_NotFound(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, "missing"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	taken, err := repo.UsernameExists(ctx, "missing")
	if err != nil || taken {
		t.Fatalf("expected free username, got %v, %v", taken, err)
	}
}

func TestMemoryMessageRepository_RecentOrderAndLimit(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		msg := testMessage(t, fmt.Sprintf("id-%d", i), "chat-1", fmt.Sprintf("msg-%d", i))
		if err := repo.Append(ctx, msg); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, "chat-1", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(recent))
	}
	// Most-recent-first: msg-7 down to msg-3.
	for i, msg := range recent {
		want := fmt.Sprintf("msg-%d", 7-i)
		if msg.Text() != want {
			t.Fatalf("recent %d: expected %q, got %q", i, want, msg.Text())
		}
	}
}

func TestMemoryMessageRepository_RecentFewerThanLimit(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Append(ctx, testMessage(t, fmt.Sprintf("id-%d", i), "chat-1", fmt.Sprintf("msg-%d", i))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, "chat-1", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected all 3 messages, got %d", len(recent))
	}
}

func TestMemoryMessageRepository_AppendTurn(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	userMsg := testMessage(t, "id-u", "chat-1", "hello")
	aiMsg := testMessage(t, "id-a", "chat-1", "hi there")
	if err := repo.AppendTurn(ctx, userMsg, aiMsg); err != nil {
		t.Fatalf("append turn: %v", err)
	}

	n, err := repo.Count(ctx, "chat-1")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 rows, got %d, %v", n, err)
	}

	history, err := repo.ListByTime(ctx, "chat-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if history[0].ID() != "id-u" || history[1].ID() != "id-a" {
		t.Fatal("expected user half before AI half")
	}
}

func TestMemoryMessageRepository_ChatsAreIsolated(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	if err := repo.Append(ctx, testMessage(t, "id-1", "chat-1", "one")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(ctx, testMessage(t, "id-2", "chat-2", "two")); err != nil {
		t.Fatalf("append: %v", err)
	}

	recent, err := repo.Recent(ctx, "chat-1", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Text() != "one" {
		t.Fatalf("chat-1 must only see its own messages, got %d", len(recent))
	}

	history, err := repo.ListByTime(ctx, "chat-3")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("unknown chat must be empty, got %d", len(history))
	}
}
