// Package push implements the push notification gateway client.
// This package handles delivery of gamification notifications (streak
// breaks, badges, milestones) to the mobile app through the CampusCents
// push gateway.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/campuscents/campuscents-gamification/internal/domain/notification"
	"github.com/campuscents/campuscents-gamification/pkg/circuitbreaker"
	"github.com/campuscents/campuscents-gamification/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the push gateway client.
type ClientConfig struct {
	// BaseURL is the push gateway base URL
	BaseURL string

	// APIKey authenticates the engine against the gateway
	APIKey string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// Logger for structured logging
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL, apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 10 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client delivers notifications through the push gateway.
// Implements notification.Sender.
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	logger         *slog.Logger
	retrier        *retry.Retrier
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewClient creates a new push gateway client.
func NewClient(config ClientConfig) *Client {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "push_client")

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  logger,
		retrier: retry.PushRetrier(),
		circuitBreaker: circuitbreaker.PushAPIBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		}),
	}
}

// pushRequest is the gateway wire format.
type pushRequest struct {
	UserID   string `json:"user_id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Priority string `json:"priority"`
}

// Send delivers one notification. Implements notification.Sender.
// 4xx responses are permanent: retrying a rejected payload cannot help.
func (c *Client) Send(ctx context.Context, n *notification.Notification) error {
	payload := pushRequest{
		UserID:   n.UserID,
		Type:     string(n.Type),
		Title:    n.Title,
		Body:     n.Body,
		Priority: string(n.Priority),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	return c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.circuitBreaker.Execute(ctx, func(ctx context.Context) error {
			return c.post(ctx, data)
		})
	})
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/v1/push", bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("push gateway request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err = fmt.Errorf("%w: status %d: %s", notification.ErrDeliveryFailed, resp.StatusCode, respBody)

	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}

	return retry.Retryable(err)
}

// Healthy reports whether the breaker currently admits requests.
func (c *Client) Healthy() bool {
	return !c.circuitBreaker.IsOpen()
}

// ══════════════════════════════════════════════════════════════════════════════
// NOOP SENDER
// ══════════════════════════════════════════════════════════════════════════════

// NoopSender drops notifications. Used when the gateway is not configured,
// for example in local development.
type NoopSender struct {
	logger *slog.Logger
}

// NewNoopSender creates a sender that logs instead of delivering.
func NewNoopSender(logger *slog.Logger) *NoopSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopSender{logger: logger}
}

// Send logs the notification and succeeds.
func (s *NoopSender) Send(_ context.Context, n *notification.Notification) error {
	if n == nil {
		return errors.New("nil notification")
	}
	s.logger.Info("push delivery skipped (no gateway configured)",
		"user_id", n.UserID, "type", n.Type)
	return nil
}
