package cohere

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/domain/service"
	"github.com/langaide/langaide/internal/infrastructure/config"
	apperrors "github.com/langaide/langaide/pkg/errors"
)

// Client is the HTTP adapter to the Cohere conversational chat API.
// It implements service.CompletionClient.
type Client struct {
	baseURL          string
	apiKey           string
	model            string
	promptTruncation string
	temperature      float64
	topK             int
	timeout          time.Duration
	client           *http.Client
	logger           *zap.Logger
}

// New creates a Cohere chat client from config.
func New(cfg config.CohereConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.cohere.ai/v1"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
	}

	return &Client{
		baseURL:          baseURL,
		apiKey:           cfg.APIKey,
		model:            cfg.Model,
		promptTruncation: cfg.PromptTruncation,
		temperature:      cfg.Temperature,
		topK:             cfg.TopK,
		timeout:          timeout,
		client:           &http.Client{Transport: transport},
		logger:           logger.With(zap.String("component", "cohere")),
	}
}

// Compile-time interface check
var _ service.CompletionClient = (*Client)(nil)

// Chat implements service.CompletionClient. The call carries the
// configured timeout; a deadline hit is reported as a retryable
// upstream error with no partial effect.
func (c *Client) Chat(ctx context.Context, req *service.CompletionRequest) (string, error) {
	apiReq := c.buildAPIRequest(req)

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", apperrors.NewInternalErrorWithCause("marshal completion request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalErrorWithCause("create completion request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		retryable := errors.Is(err, context.DeadlineExceeded) || isTimeout(err)
		return "", apperrors.NewUpstreamError("completion request failed", err, retryable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUpstreamError("read completion response", err, true)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp.StatusCode, respBody)
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", apperrors.NewUpstreamError("malformed completion response", err, false)
	}
	if apiResp.Text == "" {
		return "", apperrors.NewUpstreamError("completion response contains no text", nil, false)
	}

	c.logger.Debug("Completion generated",
		zap.String("response_id", apiResp.ID),
		zap.Int("total_tokens", apiResp.TokenCount.TotalTokens),
	)

	return apiResp.Text, nil
}

func (c *Client) buildAPIRequest(req *service.CompletionRequest) *Request {
	history := make([]HistoryTurn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, HistoryTurn{
			Role:    string(turn.Role),
			Message: turn.Message,
		})
	}

	return &Request{
		Model:            c.model,
		ChatHistory:      history,
		Message:          req.Message,
		PromptTruncation: c.promptTruncation,
		Temperature:      c.temperature,
		K:                c.topK,
	}
}

// statusError maps a non-2xx upstream status to an AppError. Rate
// limits and server-side failures are retryable; request errors are
// not.
func (c *Client) statusError(status int, body []byte) error {
	var apiErr ErrorResponse
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		detail = apiErr.Message
	}

	c.logger.Warn("Completion API error",
		zap.Int("status", status),
		zap.String("detail", detail),
	)

	retryable := status == http.StatusTooManyRequests || status >= 500
	return apperrors.NewUpstreamError("completion service rejected the request", errors.New(detail), retryable)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
