package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/langaide/langaide/pkg/errors"
)

// CompletionRequest carries the role-tagged history plus the new user
// utterance to the text-generation service.
type CompletionRequest struct {
	History []ChatTurn
	Message string
}

// CompletionClient is the boundary adapter to the external
// conversational completion API.
type CompletionClient interface {
	// Chat returns the generated reply text, or an upstream error on
	// network failure, non-2xx response, malformed body, or timeout.
	Chat(ctx context.Context, req *CompletionRequest) (string, error)
}

// RetryingCompletionClient wraps a CompletionClient with a small
// bounded retry for transient upstream failures (timeouts, 429, 5xx).
// Request errors and anything non-retryable fail immediately.
type RetryingCompletionClient struct {
	inner      CompletionClient
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

// NewRetryingCompletionClient wraps inner with maxRetries additional
// attempts. maxRetries <= 0 disables retrying entirely.
func NewRetryingCompletionClient(inner CompletionClient, maxRetries int, logger *zap.Logger) *RetryingCompletionClient {
	return &RetryingCompletionClient{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  500 * time.Millisecond,
		logger:     logger.With(zap.String("component", "completion-retry")),
	}
}

var _ CompletionClient = (*RetryingCompletionClient)(nil)

// Chat implements CompletionClient.
func (c *RetryingCompletionClient) Chat(ctx context.Context, req *CompletionRequest) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.logger.Warn("Retrying completion request",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return "", apperrors.NewUpstreamError("completion request cancelled", ctx.Err(), false)
			case <-time.After(delay):
			}
		}

		reply, err := c.inner.Chat(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if !apperrors.IsRetryable(err) {
			return "", err
		}
	}

	return "", lastErr
}

// backoff returns an exponential delay with full jitter.
func (c *RetryingCompletionClient) backoff(attempt int) time.Duration {
	ceiling := c.baseDelay << (attempt - 1)
	return time.Duration(rand.Int63n(int64(ceiling)) + int64(c.baseDelay)/2)
}
