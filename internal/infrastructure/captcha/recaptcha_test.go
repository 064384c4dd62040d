package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/infrastructure/config"
	apperrors "github.com/langaide/langaide/pkg/errors"
)

func newTestVerifier(t *testing.T, handler http.HandlerFunc) *RecaptchaVerifier {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	v := NewRecaptchaVerifier(config.CaptchaConfig{
		ProjectID: "test-project",
		APIKey:    "test-key",
		SiteKey:   "test-site",
	}, zap.NewNop())
	v.endpoint = srv.URL

	return v
}

func TestVerify_ValidToken(t *testing.T) {
	var captured assessment
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode assessment: %v", err)
		}
		w.Write([]byte(`{"tokenProperties":{"valid":true}}`))
	})

	valid, err := v.Verify(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !valid {
		t.Fatal("expected token accepted")
	}
	if captured.Event.Token != "tok-1" || captured.Event.SiteKey != "test-site" {
		t.Fatalf("assessment event not forwarded: %+v", captured.Event)
	}
}

func TestVerify_InvalidToken(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tokenProperties":{"valid":false}}`))
	})

	valid, err := v.Verify(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Fatal("expected token rejected")
	}
}

func TestVerify_EmptyTokenSkipsCall(t *testing.T) {
	called := false
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	valid, err := v.Verify(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Fatal("blank token must be invalid")
	}
	if called {
		t.Fatal("blank token must not reach the API")
	}
}

func TestVerify_ServerErrorIsUpstream(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := v.Verify(context.Background(), "tok-1")
	if !apperrors.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !apperrors.IsRetryable(err) {
		t.Fatal("5xx must be retryable")
	}
}

func TestVerify_MalformedBody(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := v.Verify(context.Background(), "tok-1")
	if !apperrors.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestNoopVerifier(t *testing.T) {
	valid, err := NoopVerifier{}.Verify(context.Background(), "anything")
	if err != nil || !valid {
		t.Fatalf("noop verifier must accept, got %v, %v", valid, err)
	}
}
