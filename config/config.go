// Package config loads runtime configuration from the environment. Every
// knob has a flat key with a conventional environment variable name; an
// optional config file can override defaults for local development.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	// AnthropicAPIKey authenticates the completion model. Required.
	AnthropicAPIKey string
	// Model is the completion model id.
	Model string
	// MaxTurns bounds the session loop.
	MaxTurns int
	// DBPath is the SQLite database file.
	DBPath string
	// LocalMode disables all outbound publishing (blog, social, tweets).
	LocalMode bool
	// LoopInterval, when non-zero, re-runs sessions on a fixed cadence
	// instead of exiting after one.
	LoopInterval time.Duration

	// GitHubToken, GitHubBlogRepo, and GitHubPagesURL configure the blog
	// publisher. Required unless LocalMode is set.
	GitHubToken    string
	GitHubBlogRepo string
	GitHubPagesURL string

	// OpenAIAPIKey enables semantic memory recall; empty falls back to
	// substring matching.
	OpenAIAPIKey   string
	EmbeddingModel string

	TavilyAPIKey string

	TwitterAPIKey       string
	TwitterAPISecret    string
	TwitterAccessToken  string
	TwitterAccessSecret string

	BlueskyHandle      string
	BlueskyAppPassword string

	AgentMailAPIKey  string
	AgentMailInboxID string
}

// envBindings maps config keys to their environment variable names.
var envBindings = map[string]string{
	"anthropic_api_key":     "ANTHROPIC_API_KEY",
	"model":                 "ANTHROPIC_MODEL",
	"max_turns":             "MAX_TURNS",
	"db_path":               "DB_PATH",
	"local_mode":            "LOCAL_MODE",
	"loop_interval":         "LOOP_INTERVAL",
	"github_token":          "GITHUB_TOKEN",
	"github_blog_repo":      "GITHUB_BLOG_REPO",
	"github_pages_url":      "GITHUB_PAGES_URL",
	"openai_api_key":        "OPENAI_API_KEY",
	"embedding_model":       "EMBEDDING_MODEL",
	"tavily_api_key":        "TAVILY_API_KEY",
	"twitter_api_key":       "TWITTER_API_KEY",
	"twitter_api_secret":    "TWITTER_API_SECRET",
	"twitter_access_token":  "TWITTER_ACCESS_TOKEN",
	"twitter_access_secret": "TWITTER_ACCESS_SECRET",
	"bluesky_handle":        "BLUESKY_HANDLE",
	"bluesky_app_password":  "BLUESKY_APP_PASSWORD",
	"agentmail_api_key":     "AGENTMAIL_API_KEY",
	"agentmail_inbox_id":    "AGENTMAIL_INBOX_ID",
}

// Load reads configuration from the environment and, when present, a
// wintermute.yaml in the working directory.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("model", "claude-sonnet-4-0")
	v.SetDefault("max_turns", 20)
	v.SetDefault("db_path", "wintermute.db")
	v.SetDefault("embedding_model", "text-embedding-3-small")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetConfigName("wintermute")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		AnthropicAPIKey:     v.GetString("anthropic_api_key"),
		Model:               v.GetString("model"),
		MaxTurns:            v.GetInt("max_turns"),
		DBPath:              v.GetString("db_path"),
		LocalMode:           v.GetBool("local_mode"),
		LoopInterval:        v.GetDuration("loop_interval"),
		GitHubToken:         v.GetString("github_token"),
		GitHubBlogRepo:      v.GetString("github_blog_repo"),
		GitHubPagesURL:      v.GetString("github_pages_url"),
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		EmbeddingModel:      v.GetString("embedding_model"),
		TavilyAPIKey:        v.GetString("tavily_api_key"),
		TwitterAPIKey:       v.GetString("twitter_api_key"),
		TwitterAPISecret:    v.GetString("twitter_api_secret"),
		TwitterAccessToken:  v.GetString("twitter_access_token"),
		TwitterAccessSecret: v.GetString("twitter_access_secret"),
		BlueskyHandle:       v.GetString("bluesky_handle"),
		BlueskyAppPassword:  v.GetString("bluesky_app_password"),
		AgentMailAPIKey:     v.GetString("agentmail_api_key"),
		AgentMailInboxID:    v.GetString("agentmail_inbox_id"),
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("MAX_TURNS must be positive, got %d", c.MaxTurns)
	}
	if !c.LocalMode {
		for env, value := range map[string]string{
			"GITHUB_TOKEN":     c.GitHubToken,
			"GITHUB_BLOG_REPO": c.GitHubBlogRepo,
			"GITHUB_PAGES_URL": c.GitHubPagesURL,
		} {
			if value == "" {
				return fmt.Errorf("%s is required (or set LOCAL_MODE=true)", env)
			}
		}
	}
	return nil
}
