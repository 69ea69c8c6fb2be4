// Package feed implements the social feed API client.
// The main CampusCents app exposes a feed service; the gamification
// engine posts badge and milestone announcements to it.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/campuscents/campuscents-gamification/pkg/circuitbreaker"
	"github.com/campuscents/campuscents-gamification/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the feed API client.
type ClientConfig struct {
	// BaseURL is the feed service base URL
	BaseURL string

	// APIKey authenticates the engine against the feed service
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
		Timeout: 15 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client posts gamification announcements to the social feed.
// Implements eventhandler.FeedPublisher.
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	logger         *slog.Logger
	retrier        *retry.Retrier
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewClient creates a new feed API client.
func NewClient(config ClientConfig) *Client {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "feed_client")

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  logger,
		retrier: retry.FeedAPIRetrier(),
		circuitBreaker: circuitbreaker.FeedAPIBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		}),
	}
}

// feedPost is the feed service wire format.
type feedPost struct {
	UserID   string `json:"user_id"`
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	Metadata any    `json:"metadata,omitempty"`
}

// PublishBadge posts a "user earned a badge" announcement.
func (c *Client) PublishBadge(ctx context.Context, userID, badgeName string, points int) error {
	post := feedPost{
		UserID: userID,
		Kind:   "badge_earned",
		Text:   fmt.Sprintf("earned the %s badge", badgeName),
		Metadata: map[string]any{
			"badge_name": badgeName,
			"points":     points,
		},
	}

	return c.publish(ctx, post)
}

// PublishMilestone posts a "user hit a streak milestone" announcement.
func (c *Client) PublishMilestone(ctx context.Context, userID, title string, days int) error {
	post := feedPost{
		UserID: userID,
		Kind:   "milestone_reached",
		Text:   fmt.Sprintf("hit a %d-day streak: %s", days, title),
		Metadata: map[string]any{
			"title": title,
			"days":  days,
		},
	}

	return c.publish(ctx, post)
}

func (c *Client) publish(ctx context.Context, post feedPost) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal feed post: %w", err)
	}

	return c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.circuitBreaker.Execute(ctx, func(ctx context.Context) error {
			return c.post(ctx, data)
		})
	})
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/v1/feed/posts", bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("feed request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err = fmt.Errorf("feed post rejected: status %d: %s", resp.StatusCode, respBody)

	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}

	return retry.Retryable(err)
}
