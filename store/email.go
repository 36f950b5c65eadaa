package store

import (
	"context"
	"time"
)

// Email mirrors one message of the external inbox. MessageID is the
// idempotency key: ingesting the same message twice is a no-op.
type Email struct {
	ID         int64
	MessageID  string
	From       string
	Subject    string
	Body       string
	ReceivedAt string
	RepliedAt  *time.Time
	ReplyBody  string
}

// FindEmail filters email listings. Results are ordered newest first.
type FindEmail struct {
	MessageID *string
	Limit     *int
}

// UpsertEmail ingests a message, inserting only when the message id is new.
func (s *Store) UpsertEmail(ctx context.Context, email *Email) error {
	return s.driver.UpsertEmail(ctx, email)
}

// SeenMessageIDs returns the set of message ids already ingested, used to
// compute the unread count against the live inbox.
func (s *Store) SeenMessageIDs(ctx context.Context) (map[string]struct{}, error) {
	emails, err := s.driver.ListEmails(ctx, &FindEmail{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		seen[e.MessageID] = struct{}{}
	}
	return seen, nil
}

// MarkEmailReplied records the reply body and timestamp for a message.
func (s *Store) MarkEmailReplied(ctx context.Context, messageID, replyBody string) error {
	return s.driver.MarkEmailReplied(ctx, messageID, replyBody, time.Now().UTC())
}
