package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/langaide/langaide/internal/infrastructure/config"
	apperrors "github.com/langaide/langaide/pkg/errors"
)

// Verifier checks registration captcha tokens.
type Verifier interface {
	// Verify reports whether the token is valid. An unreachable or
	// failing verification service is an upstream error, not a "false".
	Verify(ctx context.Context, token string) (bool, error)
}

// RecaptchaVerifier calls the reCAPTCHA Enterprise assessments API.
type RecaptchaVerifier struct {
	endpoint string
	siteKey  string
	client   *http.Client
	logger   *zap.Logger
}

// assessment is the Enterprise API request body.
type assessment struct {
	Event assessmentEvent `json:"event"`
}

type assessmentEvent struct {
	Token   string `json:"token"`
	SiteKey string `json:"siteKey"`
}

// assessmentResult is the slice of the response we care about.
type assessmentResult struct {
	TokenProperties struct {
		Valid bool `json:"valid"`
	} `json:"tokenProperties"`
}

// NewRecaptchaVerifier creates an Enterprise assessment client.
func NewRecaptchaVerifier(cfg config.CaptchaConfig, logger *zap.Logger) *RecaptchaVerifier {
	endpoint := fmt.Sprintf(
		"https://recaptchaenterprise.googleapis.com/v1/projects/%s/assessments?key=%s",
		cfg.ProjectID, cfg.APIKey,
	)

	return &RecaptchaVerifier{
		endpoint: endpoint,
		siteKey:  cfg.SiteKey,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger.With(zap.String("component", "recaptcha")),
	}
}

var _ Verifier = (*RecaptchaVerifier)(nil)

// Verify implements Verifier.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}

	body, err := json.Marshal(assessment{
		Event: assessmentEvent{Token: token, SiteKey: v.siteKey},
	})
	if err != nil {
		return false, apperrors.NewInternalErrorWithCause("marshal captcha assessment", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, apperrors.NewInternalErrorWithCause("create captcha request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, apperrors.NewUpstreamError("captcha verification failed", err, true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, apperrors.NewUpstreamError("read captcha response", err, true)
	}

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("Captcha API error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return false, apperrors.NewUpstreamError("captcha service rejected the request", nil, resp.StatusCode >= 500)
	}

	var result assessmentResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false, apperrors.NewUpstreamError("malformed captcha response", err, false)
	}

	return result.TokenProperties.Valid, nil
}

// NoopVerifier accepts every token (captcha.disabled for local
// development).
type NoopVerifier struct{}

func (NoopVerifier) Verify(ctx context.Context, token string) (bool, error) {
	return true, nil
}
