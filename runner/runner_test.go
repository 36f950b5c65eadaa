package runner_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wintermute-agent/wintermute/core"
	"github.com/wintermute-agent/wintermute/logging"
	"github.com/wintermute-agent/wintermute/model"
	"github.com/wintermute-agent/wintermute/runner"
	"github.com/wintermute-agent/wintermute/store"
	"github.com/wintermute-agent/wintermute/store/db/sqlite"
	"github.com/wintermute-agent/wintermute/tool"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	driver, err := sqlite.NewDB(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)
	st := store.New(driver)
	assert.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestDispatcher(t *testing.T, st *store.Store) *tool.Dispatcher {
	t.Helper()

	noop := &tool.Definition{
		Name:        "noop",
		Description: "does nothing",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			return "ok", nil
		},
	}
	endSession := &tool.Definition{
		Name:        "end_session",
		Description: "ends the session",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary": map[string]any{"type": "string"},
			},
			"required": []string{"summary"},
		},
		Terminal: true,
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			summary := call.String("summary")
			if err := st.EndSession(ctx, call.SessionID, summary, *call.Actions); err != nil {
				return "", tool.WrapError("end_session", err)
			}
			return summary, nil
		},
	}

	registry, err := tool.NewRegistry(noop, endSession)
	assert.NoError(t, err)
	return tool.NewDispatcher(registry, logging.NoOpLogger{})
}

func toolUseResponse(uses ...*model.ToolUse) *model.Response {
	resp := &model.Response{StopReason: model.StopToolUse}
	for _, use := range uses {
		resp.Blocks = append(resp.Blocks, model.Block{Type: "tool_use", ToolUse: use})
	}
	return resp
}

func TestRunEndTurnWithoutTools(t *testing.T) {
	st := newTestStore(t)
	session, err := st.CreateSession(context.Background())
	assert.NoError(t, err)

	mock := model.NewMock(&model.Response{
		Blocks:     []model.Block{model.TextBlock("nothing to do today")},
		StopReason: model.StopEndTurn,
	})
	r := runner.New(mock, newTestDispatcher(t, st), st)

	result, err := r.Run(context.Background(), "prompt", session.ID, 5)
	assert.NoError(t, err)
	assert.Equal(t, core.EndReasonAgentRequested, result.Reason)
	assert.Equal(t, core.NoSummary, result.Summary)
	assert.Equal(t, 1, result.Turns)
	assert.Empty(t, result.Actions)

	// An idle end_turn leaves the session row open.
	open, err := st.GetSession(context.Background(), session.ID)
	assert.NoError(t, err)
	assert.Nil(t, open.EndedAt)
}

func TestRunAgentEndsSession(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	session, err := st.CreateSession(ctx)
	assert.NoError(t, err)

	mock := model.NewMock(
		toolUseResponse(&model.ToolUse{ID: "t1", Name: "noop", Inputs: map[string]any{}}),
		toolUseResponse(&model.ToolUse{ID: "t2", Name: "end_session",
			Inputs: map[string]any{"summary": "Wrote about tides."}}),
	)
	r := runner.New(mock, newTestDispatcher(t, st), st)

	result, err := r.Run(ctx, "prompt", session.ID, 10)
	assert.NoError(t, err)
	assert.Equal(t, core.EndReasonAgentRequested, result.Reason)
	assert.Equal(t, "Wrote about tides.", result.Summary)
	assert.Equal(t, 2, result.Turns)
	assert.Len(t, result.Actions, 2)

	ended, err := st.GetSession(ctx, session.ID)
	assert.NoError(t, err)
	assert.NotNil(t, ended.EndedAt)
	assert.Equal(t, "Wrote about tides.", *ended.Summary)
}

func TestRunBatchDispatchedFullyBeforeExit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	session, err := st.CreateSession(ctx)
	assert.NoError(t, err)

	// end_session arrives first in the batch; the trailing calls must still
	// run and produce results.
	mock := model.NewMock(
		toolUseResponse(
			&model.ToolUse{ID: "t1", Name: "end_session",
				Inputs: map[string]any{"summary": "Early exit."}},
			&model.ToolUse{ID: "t2", Name: "noop", Inputs: map[string]any{}},
			&model.ToolUse{ID: "t3", Name: "noop", Inputs: map[string]any{}},
		),
	)
	r := runner.New(mock, newTestDispatcher(t, st), st)

	result, err := r.Run(ctx, "prompt", session.ID, 10)
	assert.NoError(t, err)
	assert.Equal(t, core.EndReasonAgentRequested, result.Reason)
	assert.Equal(t, "Early exit.", result.Summary)
	assert.Len(t, result.Actions, 3)
}

func TestRunTurnLimitForcePersists(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	session, err := st.CreateSession(ctx)
	assert.NoError(t, err)

	mock := model.NewMock(
		toolUseResponse(&model.ToolUse{ID: "t1", Name: "noop", Inputs: map[string]any{}}),
		toolUseResponse(&model.ToolUse{ID: "t2", Name: "noop", Inputs: map[string]any{}}),
		toolUseResponse(&model.ToolUse{ID: "t3", Name: "noop", Inputs: map[string]any{}}),
	)
	r := runner.New(mock, newTestDispatcher(t, st), st)

	result, err := r.Run(ctx, "prompt", session.ID, 3)
	assert.NoError(t, err)
	assert.Equal(t, core.EndReasonTurnLimit, result.Reason)
	assert.Equal(t, core.TurnLimitSummary, result.Summary)
	assert.Equal(t, 3, result.Turns)
	assert.Len(t, result.Actions, 3)

	ended, err := st.GetSession(ctx, session.ID)
	assert.NoError(t, err)
	assert.NotNil(t, ended.EndedAt)
	assert.Equal(t, core.TurnLimitSummary, *ended.Summary)

	actions, err := ended.Actions()
	assert.NoError(t, err)
	assert.Len(t, actions, 3)
}

func TestRunTurnLimitIdleSessionStaysOpen(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	session, err := st.CreateSession(ctx)
	assert.NoError(t, err)

	// Turns that request no tools leave the action log empty.
	mock := model.NewMock(
		&model.Response{Blocks: []model.Block{model.TextBlock("thinking")}, StopReason: model.StopToolUse},
		&model.Response{Blocks: []model.Block{model.TextBlock("still thinking")}, StopReason: model.StopToolUse},
	)
	r := runner.New(mock, newTestDispatcher(t, st), st)

	result, err := r.Run(ctx, "prompt", session.ID, 2)
	assert.NoError(t, err)
	assert.Equal(t, core.EndReasonTurnLimit, result.Reason)
	assert.Equal(t, core.NoSummary, result.Summary)
	assert.Empty(t, result.Actions)

	open, err := st.GetSession(ctx, session.ID)
	assert.NoError(t, err)
	assert.Nil(t, open.EndedAt)
}

func TestRunUnexpectedStopReason(t *testing.T) {
	st := newTestStore(t)
	session, err := st.CreateSession(context.Background())
	assert.NoError(t, err)

	mock := model.NewMock(&model.Response{
		Blocks:     []model.Block{model.TextBlock("ran long")},
		StopReason: "max_tokens",
	})
	r := runner.New(mock, newTestDispatcher(t, st), st)

	result, err := r.Run(context.Background(), "prompt", session.ID, 5)
	assert.NoError(t, err)
	assert.Equal(t, core.EndReasonProtocolError, result.Reason)
	assert.Equal(t, core.NoSummary, result.Summary)
}

func TestRunTransportError(t *testing.T) {
	st := newTestStore(t)
	session, err := st.CreateSession(context.Background())
	assert.NoError(t, err)

	mock := model.NewMock(nil) // scripted transport failure
	r := runner.New(mock, newTestDispatcher(t, st), st)

	result, err := r.Run(context.Background(), "prompt", session.ID, 5)
	assert.Error(t, err)
	assert.Equal(t, core.EndReasonProtocolError, result.Reason)
}

func TestRunSendsDateInOpeningMessage(t *testing.T) {
	st := newTestStore(t)
	session, err := st.CreateSession(context.Background())
	assert.NoError(t, err)

	mock := model.NewMock()
	r := runner.New(mock, newTestDispatcher(t, st), st)

	_, err = r.Run(context.Background(), "system prompt", session.ID, 1)
	assert.NoError(t, err)
	assert.Len(t, mock.Requests, 1)
	assert.Equal(t, "system prompt", mock.Requests[0].System)

	first := mock.Requests[0].Messages[0]
	assert.Equal(t, "user", first.Role)
	assert.Contains(t, first.Blocks[0].Text, "Today is ")
	assert.Contains(t, first.Blocks[0].Text, "Begin your session.")
	assert.NotEmpty(t, mock.Requests[0].Tools)
}
