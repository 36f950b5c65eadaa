// Package social posts session artifacts to Twitter/X and Bluesky. Posting is
// strictly best effort: missing credentials, local mode, and API failures all
// degrade to "not shared" without surfacing an error to the caller.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/wintermute-agent/wintermute/logging"
)

const (
	twitterPostURL = "https://api.twitter.com/2/tweets"
	twitterMeURL   = "https://api.twitter.com/2/users/me"

	blueskyBaseURL = "https://bsky.social"

	twitterMaxChars = 280
	blueskyMaxChars = 300
)

// TwitterCredentials holds the four OAuth 1.0a user-context secrets required
// by the v2 tweet endpoint.
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

func (c TwitterCredentials) complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// BlueskyCredentials holds an account handle and app password for the AT
// Protocol XRPC session flow.
type BlueskyCredentials struct {
	Handle      string
	AppPassword string
}

func (c BlueskyCredentials) complete() bool {
	return c.Handle != "" && c.AppPassword != ""
}

// Config configures a Sharer.
type Config struct {
	Twitter   TwitterCredentials
	Bluesky   BlueskyCredentials
	LocalMode bool
}

// Options holds optional Sharer collaborators.
type Options struct {
	Logger logging.Logger
	// HTTPClient is used for Bluesky XRPC calls; the Twitter client is
	// derived from the OAuth1 config and always signs its own requests.
	HTTPClient *http.Client
}

// Sharer posts text to the configured social platforms.
type Sharer struct {
	config     Config
	logger     logging.Logger
	httpClient *http.Client
}

// New creates a Sharer.
func New(config Config, optFns ...func(o *Options)) *Sharer {
	opts := Options{
		Logger:     logging.NoOpLogger{},
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Sharer{config: config, logger: opts.Logger, httpClient: opts.HTTPClient}
}

// ShareResult carries the per-platform post URLs; an empty string means the
// platform was skipped or the post failed.
type ShareResult struct {
	TwitterURL string
	BlueskyURL string
}

// SharePost announces a published blog post on both platforms. Failures are
// logged and reported as empty URLs, never as errors.
func (s *Sharer) SharePost(ctx context.Context, title, summary, url string) ShareResult {
	text := fmt.Sprintf("%s\n\n%s\n\n%s", title, summary, url)

	twitterText := text
	if len(twitterText) > twitterMaxChars {
		twitterText = fmt.Sprintf("%s\n\n%s", title, url)
	}

	return ShareResult{
		TwitterURL: s.postToTwitter(ctx, twitterText),
		BlueskyURL: s.postToBluesky(ctx, text),
	}
}

func (s *Sharer) postToTwitter(ctx context.Context, text string) string {
	if s.config.LocalMode {
		s.logger.Info("local mode, would tweet", "text", clip(text, 80))
		return ""
	}
	if !s.config.Twitter.complete() {
		s.logger.Info("twitter credentials not configured, skipping")
		return ""
	}

	oauthConfig := oauth1.NewConfig(s.config.Twitter.APIKey, s.config.Twitter.APISecret)
	token := oauth1.NewToken(s.config.Twitter.AccessToken, s.config.Twitter.AccessSecret)
	client := oauthConfig.Client(ctx, token)
	client.Timeout = 30 * time.Second

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		s.logger.Warn("twitter post failed", "error", err)
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterPostURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("twitter post failed", "error", err)
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		s.logger.Warn("twitter post failed", "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		s.logger.Warn("twitter post failed", "status", resp.StatusCode, "body", string(raw))
		return ""
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		s.logger.Warn("twitter response decode failed", "error", err)
		return ""
	}

	username := s.twitterUsername(ctx, client)
	url := fmt.Sprintf("https://twitter.com/%s/status/%s", username, created.Data.ID)
	s.logger.Info("tweeted", "url", url)
	return url
}

// twitterUsername looks up the authenticated account's handle for building the
// status URL. "i" is Twitter's self-referential path segment and works as a
// fallback.
func (s *Sharer) twitterUsername(ctx context.Context, client *http.Client) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, twitterMeURL, nil)
	if err != nil {
		return "i"
	}
	resp, err := client.Do(req)
	if err != nil {
		return "i"
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "i"
	}
	var me struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil || me.Data.Username == "" {
		return "i"
	}
	return me.Data.Username
}

func (s *Sharer) postToBluesky(ctx context.Context, text string) string {
	if s.config.LocalMode {
		s.logger.Info("local mode, would post to bluesky", "text", clip(text, 80))
		return ""
	}
	if !s.config.Bluesky.complete() {
		s.logger.Info("bluesky credentials not configured, skipping")
		return ""
	}

	if len(text) > blueskyMaxChars {
		text = text[:blueskyMaxChars-3] + "..."
	}

	session, err := s.blueskyLogin(ctx)
	if err != nil {
		s.logger.Warn("bluesky login failed", "error", err)
		return ""
	}

	record := map[string]any{
		"repo":       session.DID,
		"collection": "app.bsky.feed.post",
		"record": map[string]any{
			"$type":     "app.bsky.feed.post",
			"text":      text,
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		},
	}

	var created struct {
		URI string `json:"uri"`
	}
	if err := s.xrpc(ctx, "com.atproto.repo.createRecord", session.AccessJWT, record, &created); err != nil {
		s.logger.Warn("bluesky post failed", "error", err)
		return ""
	}

	// AT URI format: at://did:plc:.../app.bsky.feed.post/rkey
	parts := strings.Split(created.URI, "/")
	rkey := parts[len(parts)-1]
	handle := strings.TrimPrefix(s.config.Bluesky.Handle, "@")
	url := fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, rkey)
	s.logger.Info("posted to bluesky", "url", url)
	return url
}

type blueskySession struct {
	DID       string `json:"did"`
	AccessJWT string `json:"accessJwt"`
}

func (s *Sharer) blueskyLogin(ctx context.Context) (*blueskySession, error) {
	payload := map[string]string{
		"identifier": strings.TrimPrefix(s.config.Bluesky.Handle, "@"),
		"password":   s.config.Bluesky.AppPassword,
	}
	var session blueskySession
	if err := s.xrpc(ctx, "com.atproto.server.createSession", "", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Sharer) xrpc(ctx context.Context, method, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/xrpc/%s", blueskyBaseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("xrpc %s: status %d: %s", method, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
