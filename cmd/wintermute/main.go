// Command wintermute runs the autonomous agent: one bounded session per
// invocation, or a continuous loop when a loop interval is configured.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/wintermute-agent/wintermute/ai"
	"github.com/wintermute-agent/wintermute/blog"
	"github.com/wintermute-agent/wintermute/config"
	"github.com/wintermute-agent/wintermute/logging"
	"github.com/wintermute-agent/wintermute/mail"
	anthropicmodel "github.com/wintermute-agent/wintermute/model/anthropic"
	"github.com/wintermute-agent/wintermute/persona"
	"github.com/wintermute-agent/wintermute/runner"
	"github.com/wintermute-agent/wintermute/social"
	"github.com/wintermute-agent/wintermute/store"
	"github.com/wintermute-agent/wintermute/store/db/sqlite"
	"github.com/wintermute-agent/wintermute/tool"
	"github.com/wintermute-agent/wintermute/tools"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logFormat string

	cmd := &cobra.Command{
		Use:           "wintermute",
		Short:         "An autonomous agent with a daily session, persistent memory, and a public blog",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(func(o *logging.Options) {
				o.Format = logFormat
			})
			return run(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log output format (text or json)")
	cmd.AddCommand(newRebuildEmbeddingsCmd())
	return cmd
}

// newRebuildEmbeddingsCmd repairs the semantic index after failed or skipped
// index writes.
func newRebuildEmbeddingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-embeddings",
		Short: "Re-index memories that are missing from the semantic index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.OpenAIAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is required to rebuild embeddings")
			}
			logger := logging.New()

			st, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			rebuilt, err := st.RebuildEmbeddings(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("embedding rebuild complete", "rebuilt", rebuilt)
			return nil
		},
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	sharer := social.New(social.Config{
		Twitter: social.TwitterCredentials{
			APIKey:       cfg.TwitterAPIKey,
			APISecret:    cfg.TwitterAPISecret,
			AccessToken:  cfg.TwitterAccessToken,
			AccessSecret: cfg.TwitterAccessSecret,
		},
		Bluesky: social.BlueskyCredentials{
			Handle:      cfg.BlueskyHandle,
			AppPassword: cfg.BlueskyAppPassword,
		},
		LocalMode: cfg.LocalMode,
	}, func(o *social.Options) {
		o.Logger = logger
	})

	publisher := blog.New(blog.Config{
		Token:     cfg.GitHubToken,
		Repo:      cfg.GitHubBlogRepo,
		PagesURL:  cfg.GitHubPagesURL,
		LocalMode: cfg.LocalMode,
	}, st, func(o *blog.Options) {
		o.Logger = logger
		o.Sharer = sharer
	})

	mailClient := mail.New(mail.Config{
		APIKey:  cfg.AgentMailAPIKey,
		InboxID: cfg.AgentMailInboxID,
	}, func(o *mail.Options) {
		o.Logger = logger
	})

	registry, err := tool.NewRegistry(tools.All(tools.Deps{
		Store:        st,
		Blog:         publisher,
		Mail:         mailClient,
		TavilyAPIKey: cfg.TavilyAPIKey,
		Logger:       logger,
	})...)
	if err != nil {
		return fmt.Errorf("build tool registry: %w", err)
	}
	dispatcher := tool.NewDispatcher(registry, logger)

	completionModel := anthropicmodel.New(func(o *anthropicmodel.Options) {
		o.Model = anthropic.Model(cfg.Model)
		o.APIKey = cfg.AnthropicAPIKey
	})

	sessionRunner := runner.New(completionModel, dispatcher, st, func(o *runner.Options) {
		o.Logger = logger
	})

	if cfg.LoopInterval > 0 {
		logger.Info("running in loop mode", "interval", cfg.LoopInterval.String())
		for {
			if err := runOnce(ctx, cfg, logger, st, mailClient, sessionRunner); err != nil {
				logger.Error("session failed", "error", err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.LoopInterval):
			}
		}
	}

	return runOnce(ctx, cfg, logger, st, mailClient, sessionRunner)
}

func runOnce(
	ctx context.Context,
	cfg *config.Config,
	logger logging.Logger,
	st *store.Store,
	mailClient *mail.Client,
	sessionRunner *runner.Runner,
) error {
	promptCtx, err := buildPromptContext(ctx, st, mailClient, logger)
	if err != nil {
		return err
	}

	session, err := st.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	logger.Info("session created", "session_id", session.ID, "uid", session.UID,
		"first_session", promptCtx.FirstSession)

	result, err := sessionRunner.Run(ctx, persona.BuildSystemPrompt(*promptCtx), session.ID, cfg.MaxTurns)
	if err != nil {
		return err
	}

	logger.Info("session complete", "session_id", session.ID, "reason", string(result.Reason),
		"turns", result.Turns, "actions", len(result.Actions), "summary", result.Summary)
	return nil
}

// buildPromptContext gathers everything the system prompt needs. Due
// reminders are marked triggered here so they surface exactly once.
func buildPromptContext(ctx context.Context, st *store.Store, mailClient *mail.Client, logger logging.Logger) (*persona.Context, error) {
	first, err := st.IsFirstSession(ctx)
	if err != nil {
		return nil, err
	}
	if first {
		return &persona.Context{FirstSession: true}, nil
	}

	memories, err := st.ListMemories(ctx, 50)
	if err != nil {
		return nil, err
	}
	recent, err := st.ListRecentSessions(ctx, 5)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Format("2006-01-02")
	due, err := st.ListDueReminders(ctx, today)
	if err != nil {
		return nil, err
	}
	if len(due) > 0 {
		ids := make([]int64, 0, len(due))
		for _, r := range due {
			ids = append(ids, r.ID)
		}
		if err := st.MarkRemindersTriggered(ctx, ids); err != nil {
			return nil, err
		}
	}

	unread := 0
	if mailClient.Configured() {
		seen, err := st.SeenMessageIDs(ctx)
		if err != nil {
			return nil, err
		}
		unread = mailClient.UnreadCount(ctx, seen)
	}

	logger.Info("prompt context loaded", "memories", len(memories),
		"recent_sessions", len(recent), "due_reminders", len(due), "unread_emails", unread)

	return &persona.Context{
		Memories:       memories,
		RecentSessions: recent,
		DueReminders:   due,
		UnreadEmails:   unread,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (*store.Store, error) {
	driver, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var embedder store.Embedder
	if cfg.OpenAIAPIKey != "" {
		embedder = ai.NewProvider(&ai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			EmbeddingModel: cfg.EmbeddingModel,
		})
	}

	st := store.New(driver, func(o *store.Options) {
		o.Embedder = embedder
		o.Logger = logger
	})
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return st, nil
}
