// Package runner drives one agent session: a bounded turn loop that requests
// model completions, routes tool-use requests through the dispatcher, and
// persists the outcome. Everything is synchronous; the only suspension points
// are the completion call and each tool handler.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/wintermute-agent/wintermute/core"
	"github.com/wintermute-agent/wintermute/logging"
	"github.com/wintermute-agent/wintermute/model"
	"github.com/wintermute-agent/wintermute/store"
	"github.com/wintermute-agent/wintermute/tool"
)

// Options holds optional Runner collaborators.
type Options struct {
	Logger logging.Logger
	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

// Runner orchestrates the session loop. Constructed once with explicit
// dependencies; no package-level state.
type Runner struct {
	model      model.Model
	dispatcher *tool.Dispatcher
	store      *store.Store
	logger     logging.Logger
	clock      func() time.Time
}

// New constructs a Runner.
func New(m model.Model, dispatcher *tool.Dispatcher, st *store.Store, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Clock:  time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{
		model:      m,
		dispatcher: dispatcher,
		store:      st,
		logger:     opts.Logger,
		clock:      opts.Clock,
	}
}

// Result is the outcome of one session run. Summary is never empty: it is the
// agent-supplied summary or one of the fixed placeholders.
type Result struct {
	Summary string
	Reason  core.EndReason
	Turns   int
	Actions []core.Action
}

// Run executes the session loop for at most maxTurns turns.
//
// The returned error is non-nil only for failures outside the loop's own
// protocol (model transport errors, forced persistence failing); handler
// failures and unknown tools are absorbed into tool result text and never
// abort the loop.
func (r *Runner) Run(ctx context.Context, systemPrompt string, sessionID int64, maxTurns int) (*Result, error) {
	today := r.clock().UTC().Format("2006-01-02")
	history := []model.Message{{
		Role:   "user",
		Blocks: []model.Block{model.TextBlock(fmt.Sprintf("Today is %s. Begin your session.", today))},
	}}

	toolDefs := r.dispatcher.Registry().ModelDefinitions()
	actions := []core.Action{}
	summary := core.NoSummary

	r.logger.Info("session started", "session_id", sessionID, "model", r.model.Info().Name, "max_turns", maxTurns)

	for turn := 0; turn < maxTurns; turn++ {
		r.logger.Info("turn", "session_id", sessionID, "turn", turn+1, "max_turns", maxTurns)

		resp, err := r.model.Complete(ctx, model.Request{
			System:   systemPrompt,
			Messages: history,
			Tools:    toolDefs,
		})
		if err != nil {
			return &Result{Summary: summary, Reason: core.EndReasonProtocolError, Turns: turn, Actions: actions},
				fmt.Errorf("model completion failed: %w", err)
		}

		history = append(history, model.Message{Role: "assistant", Blocks: resp.Blocks})
		for _, b := range resp.Blocks {
			if b.Type == "text" && b.Text != "" {
				r.logger.Info("agent", "text", truncate(b.Text, 200))
			}
		}

		switch resp.StopReason {
		case model.StopEndTurn:
			// The agent stopped without requesting tools; nothing to send back.
			r.logger.Info("session ended by agent without tool call", "session_id", sessionID)
			return &Result{Summary: summary, Reason: core.EndReasonAgentRequested, Turns: turn + 1, Actions: actions}, nil

		case model.StopToolUse:
			results, batchSummary, exit := r.dispatchBatch(ctx, resp, sessionID, &actions)
			if batchSummary != "" {
				summary = batchSummary
			}
			// All results for the batch are appended before the exit flag is
			// checked: every tool-use request receives exactly one result.
			history = append(history, model.Message{Role: "user", Blocks: results})
			if exit {
				r.logger.Info("session ended by agent", "session_id", sessionID, "turns", turn+1)
				return &Result{Summary: summary, Reason: core.EndReasonAgentRequested, Turns: turn + 1, Actions: actions}, nil
			}

		default:
			r.logger.Error("unexpected stop condition", "session_id", sessionID, "stop_reason", resp.StopReason)
			return &Result{Summary: summary, Reason: core.EndReasonProtocolError, Turns: turn + 1, Actions: actions}, nil
		}
	}

	// Turn budget exhausted. An entirely idle session is not force-closed.
	r.logger.Warn("turn limit reached", "session_id", sessionID, "actions", len(actions))
	result := &Result{Summary: summary, Reason: core.EndReasonTurnLimit, Turns: maxTurns, Actions: actions}
	if len(actions) > 0 {
		result.Summary = core.TurnLimitSummary
		if err := r.store.EndSession(ctx, sessionID, core.TurnLimitSummary, actions); err != nil {
			return result, fmt.Errorf("force-persist session %d: %w", sessionID, err)
		}
	}
	return result, nil
}

// dispatchBatch runs every tool-use block of a response in order, returning
// the correlated result blocks, the summary captured from the terminating
// capability (if requested in this batch), and the exit flag.
func (r *Runner) dispatchBatch(
	ctx context.Context,
	resp *model.Response,
	sessionID int64,
	actions *[]core.Action,
) ([]model.Block, string, bool) {
	var results []model.Block
	var summary string
	exit := false

	for _, use := range resp.ToolUses() {
		r.logger.Info("tool call", "tool", use.Name, "session_id", sessionID)

		text, shouldExit := r.dispatcher.Dispatch(ctx, use.Name, use.Inputs, sessionID, actions)

		// The summary argument is captured whenever the terminating tool is
		// requested, even if its handler failed.
		if r.dispatcher.Registry().IsTerminal(use.Name) {
			if s, ok := use.Inputs["summary"].(string); ok && s != "" {
				summary = s
			}
		}

		r.logger.Info("tool result", "tool", use.Name, "result", truncate(text, 200))
		results = append(results, model.ToolResultBlock(use.ID, text))

		if shouldExit {
			exit = true
		}
	}

	return results, summary, exit
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
