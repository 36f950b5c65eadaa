// Package mail is a thin client for the AgentMail inbox API. The agent can
// read its inbox and reply to messages; sending to arbitrary addresses is
// intentionally not supported.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wintermute-agent/wintermute/logging"
)

const defaultBaseURL = "https://api.agentmail.to/v0"

// Config configures a Client. An empty APIKey or InboxID leaves the client
// unconfigured; callers should check Configured before use.
type Config struct {
	APIKey  string
	InboxID string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// Options holds optional Client collaborators.
type Options struct {
	Logger     logging.Logger
	HTTPClient *http.Client
}

// Client talks to one AgentMail inbox.
type Client struct {
	config     Config
	logger     logging.Logger
	httpClient *http.Client
}

// New creates a Client.
func New(config Config, optFns ...func(o *Options)) *Client {
	opts := Options{
		Logger:     logging.NoOpLogger{},
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{config: config, logger: opts.Logger, httpClient: opts.HTTPClient}
}

// Configured reports whether both the API key and inbox id are set.
func (c *Client) Configured() bool {
	return c.config.APIKey != "" && c.config.InboxID != ""
}

// Message is one inbox message as returned by the API.
type Message struct {
	MessageID  string `json:"message_id"`
	From       string `json:"from"`
	Subject    string `json:"subject"`
	Text       string `json:"text"`
	ReceivedAt string `json:"received_at"`
}

// ListMessages fetches the most recent messages from the inbox.
func (c *Client) ListMessages(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	endpoint := fmt.Sprintf("%s/inboxes/%s/messages?limit=%s",
		c.config.BaseURL, url.PathEscape(c.config.InboxID), strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("agentmail list: status %d: %s", resp.StatusCode, string(raw))
	}

	var payload struct {
		Messages []Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Messages, nil
}

// Reply sends a plain-text reply to the given message.
func (c *Client) Reply(ctx context.Context, messageID, body string) error {
	endpoint := fmt.Sprintf("%s/inboxes/%s/messages/%s/reply",
		c.config.BaseURL, url.PathEscape(c.config.InboxID), url.PathEscape(messageID))

	payload, err := json.Marshal(map[string]string{"text": body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("agentmail reply: status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

// UnreadCount returns how many recent messages are not in the seen set.
// Errors degrade to zero so prompt building never fails on mail trouble.
func (c *Client) UnreadCount(ctx context.Context, seen map[string]struct{}) int {
	if !c.Configured() {
		return 0
	}
	msgs, err := c.ListMessages(ctx, 50)
	if err != nil {
		c.logger.Warn("unread count failed", "error", err)
		return 0
	}
	count := 0
	for _, m := range msgs {
		if _, ok := seen[m.MessageID]; !ok {
			count++
		}
	}
	return count
}
