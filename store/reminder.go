package store

import (
	"context"
	"time"
)

// Reminder is a note the agent left for a future date. A reminder is due when
// DueDate <= today and TriggeredAt is nil; once surfaced to a session it is
// marked triggered and never resurfaces.
type Reminder struct {
	ID int64
	// DueDate is a calendar date in YYYY-MM-DD form; comparisons are
	// lexicographic, which is correct for this format.
	DueDate     string
	Note        string
	CreatedAt   time.Time
	TriggeredAt *time.Time
}

// FindReminder filters reminder listings. Results are ordered due date
// ascending.
type FindReminder struct {
	// DueOnOrBefore selects reminders with due_date <= the given date.
	DueOnOrBefore *string
	// UntriggeredOnly selects reminders not yet surfaced.
	UntriggeredOnly bool
}

// CreateReminder stores a reminder for a future date.
func (s *Store) CreateReminder(ctx context.Context, dueDate, note string) (*Reminder, error) {
	return s.driver.CreateReminder(ctx, &Reminder{
		DueDate:   dueDate,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	})
}

// ListDueReminders returns all untriggered reminders due on or before the
// given date, due date ascending.
func (s *Store) ListDueReminders(ctx context.Context, today string) ([]*Reminder, error) {
	return s.driver.ListReminders(ctx, &FindReminder{
		DueOnOrBefore:   &today,
		UntriggeredOnly: true,
	})
}

// MarkRemindersTriggered marks the given reminders as surfaced. Idempotent:
// re-marking an already-triggered reminder keeps its original trigger time.
func (s *Store) MarkRemindersTriggered(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.driver.MarkRemindersTriggered(ctx, ids, time.Now().UTC())
}
