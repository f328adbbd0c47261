// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genai provides the HTTP client for the text generation service.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the generation client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches ClientErrors by Type so sentinels work with errors.Is.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeRateLimited
	ErrTypeServerError
	ErrTypeAborted
	ErrTypeConnection
	ErrTypeRequestRejected
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrRateLimited = &ClientError{Type: ErrTypeRateLimited, Message: "API rate limit hit. Try a different model or wait a moment."}
	ErrAborted     = &ClientError{Type: ErrTypeAborted, Message: "request aborted"}
)

// IsRateLimited reports whether err is an upstream 429.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// IsAborted reports whether err is a cancellation, whether the caller
// stopped the request or the attempt deadline expired. Both read as an
// abort upstream; neither reaches the user as an error.
func IsAborted(err error) bool { return errors.Is(err, ErrAborted) }

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the generation client.
type ClientConfig struct {
	// BaseURL is the generation endpoint.
	BaseURL string

	// Timeout bounds each individual attempt (default: 60s).
	Timeout time.Duration

	// MaxRetries is the total attempt count for transient failures (default: 3).
	MaxRetries int

	// RetryDelay is the base backoff unit; attempt N waits N times this (default: 1s).
	RetryDelay time.Duration

	// RequestsPerSec adds client-side pacing across all requests when
	// positive. Zero disables pacing.
	RequestsPerSec float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:    "http://127.0.0.1:8801/api/generate",
		Timeout:    60 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// BlockedResponseText is returned in place of generated text when the
// service accepts the request but yields no content, typically because
// the response was filtered.
const BlockedResponseText = "My apologies, but the response was blocked by content filtering. Please try rephrasing your message."

// Client calls the text generation service. It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	pacer      *rate.Limiter
	log        *zap.Logger
}

// NewClient creates a generation client with default configuration.
func NewClient(log *zap.Logger) *Client {
	return NewClientWithConfig(DefaultConfig(), log)
}

// NewClientWithConfig creates a generation client with custom configuration.
func NewClientWithConfig(config *ClientConfig, log *zap.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 1 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	var pacer *rate.Limiter
	if config.RequestsPerSec > 0 {
		pacer = rate.NewLimiter(rate.Limit(config.RequestsPerSec), 1)
	}

	return &Client{
		config: config,
		// Per-attempt deadlines come from the request context, not a
		// client-wide Timeout, so retries get a fresh budget.
		httpClient: &http.Client{},
		pacer:      pacer,
		log:        log,
	}
}

// Generate sends one prompt to the generation service and returns the
// produced text.
//
// Transient failures (5xx and connection drops) are retried with linear
// backoff. A 429 maps to ErrRateLimited without retrying. Other 4xx
// statuses surface immediately with the server's message, as does a 2xx
// body that fails to decode. Cancellation through ctx, including the
// per-attempt deadline, is never retried. A 2xx response with no text
// yields BlockedResponseText, not an error.
func (c *Client) Generate(ctx context.Context, p Params) (string, error) {
	body, err := json.Marshal(generateRequest{
		SystemPrompt: p.SystemPrompt,
		UserPrompt:   p.UserPrompt,
		ModelID:      p.ModelID,
	})
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt-1); err != nil {
				return "", err
			}
		}

		text, err := c.attempt(ctx, body)
		if err == nil {
			return text, nil
		}

		var ce *ClientError
		if errors.As(err, &ce) {
			switch ce.Type {
			case ErrTypeAborted, ErrTypeRateLimited, ErrTypeRequestRejected, ErrTypeInvalidResponse:
				return "", err
			}
		}

		lastErr = err
		c.log.Warn("generation attempt failed",
			zap.Int("attempt", attempt),
			zap.String("model", p.ModelID),
			zap.Error(err))
	}
	return "", lastErr
}

// attempt performs one request with its own timeout.
func (c *Client) attempt(ctx context.Context, body []byte) (string, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return "", &ClientError{Type: ErrTypeAborted, Message: "request aborted", Cause: err}
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The caller's cancellation and the attempt deadline both
		// surface as context errors; check the parent first. A blown
		// deadline is still an abort, it just names itself.
		if ctx.Err() != nil {
			return "", &ClientError{Type: ErrTypeAborted, Message: "request aborted", Cause: ctx.Err()}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &ClientError{Type: ErrTypeAborted, Message: "request timed out", Cause: context.DeadlineExceeded}
		}
		return "", &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}

	var decoded generateResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode >= 500 {
		msg := decoded.Error
		if msg == "" {
			msg = fmt.Sprintf("API Error: Status %d", resp.StatusCode)
		}
		return "", &ClientError{Type: ErrTypeServerError, Message: msg}
	}
	if resp.StatusCode >= 400 {
		msg := decoded.Error
		if msg == "" {
			msg = fmt.Sprintf("API Error: Status %d", resp.StatusCode)
		}
		return "", &ClientError{Type: ErrTypeRequestRejected, Message: msg}
	}

	if decodeErr != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: decodeErr}
	}
	if decoded.Text == "" {
		return BlockedResponseText, nil
	}
	return decoded.Text, nil
}

// backoff waits attempt units of RetryDelay, honoring cancellation.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	t := time.NewTimer(time.Duration(attempt) * c.config.RetryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return &ClientError{Type: ErrTypeAborted, Message: "request aborted", Cause: ctx.Err()}
	case <-t.C:
		return nil
	}
}
