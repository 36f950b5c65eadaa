package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wintermute-agent/wintermute/core"
)

// Session is one bounded agent run. A session is open while EndedAt is nil;
// at most one session is open at a time (by convention, not by locking).
// Sessions are never deleted.
type Session struct {
	ID        int64
	UID       string
	StartedAt time.Time
	EndedAt   *time.Time
	Summary   *string
	// ActionsJSON is the serialized action log, written atomically at
	// session end.
	ActionsJSON string
}

// Actions deserializes the action log. An unended session yields an empty slice.
func (s *Session) Actions() ([]core.Action, error) {
	if s.ActionsJSON == "" {
		return nil, nil
	}
	var actions []core.Action
	if err := json.Unmarshal([]byte(s.ActionsJSON), &actions); err != nil {
		return nil, fmt.Errorf("decode actions for session %d: %w", s.ID, err)
	}
	return actions, nil
}

// UpdateSession carries the session-end mutation. Only the orchestrator (via
// the terminating tool or the turn-limit path) performs it.
type UpdateSession struct {
	ID          int64
	EndedAt     *time.Time
	Summary     *string
	ActionsJSON *string
}

// FindSession filters session listings. Results are ordered id descending.
type FindSession struct {
	ID          *int64
	SummaryOnly bool // only sessions that have ended with a summary
	Limit       *int
}

// CreateSession opens a new session row with an empty action log.
func (s *Store) CreateSession(ctx context.Context) (*Session, error) {
	create := &Session{
		UID:         uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		ActionsJSON: "[]",
	}
	return s.driver.CreateSession(ctx, create)
}

// EndSession closes a session, persisting the summary and the full action log
// in one write.
func (s *Store) EndSession(ctx context.Context, id int64, summary string, actions []core.Action) error {
	if actions == nil {
		actions = []core.Action{}
	}
	raw, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("encode actions for session %d: %w", id, err)
	}
	actionsJSON := string(raw)
	endedAt := time.Now().UTC()
	return s.driver.UpdateSession(ctx, &UpdateSession{
		ID:          id,
		EndedAt:     &endedAt,
		Summary:     &summary,
		ActionsJSON: &actionsJSON,
	})
}

// GetSession returns one session by id, or nil when absent.
func (s *Store) GetSession(ctx context.Context, id int64) (*Session, error) {
	list, err := s.driver.ListSessions(ctx, &FindSession{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListRecentSessions returns the last n ended sessions in chronological order,
// oldest first, for prompt context.
func (s *Store) ListRecentSessions(ctx context.Context, n int) ([]*Session, error) {
	list, err := s.driver.ListSessions(ctx, &FindSession{SummaryOnly: true, Limit: &n})
	if err != nil {
		return nil, err
	}
	// Driver returns newest first; flip for chronological reading.
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

// IsFirstSession reports whether no session has ever been started.
func (s *Store) IsFirstSession(ctx context.Context) (bool, error) {
	count, err := s.driver.CountSessions(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
