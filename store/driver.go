package store

import (
	"context"
	"database/sql"
	"time"
)

// Driver is the interface a database backend must implement. All methods
// operate on short-lived scoped statements; no transaction spans a session.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	Migrate(ctx context.Context) error

	// Session model related methods.
	CreateSession(ctx context.Context, create *Session) (*Session, error)
	UpdateSession(ctx context.Context, update *UpdateSession) error
	ListSessions(ctx context.Context, find *FindSession) ([]*Session, error)
	CountSessions(ctx context.Context) (int, error)

	// Memory model related methods.
	CreateMemory(ctx context.Context, create *Memory) (*Memory, error)
	ListMemories(ctx context.Context, find *FindMemory) ([]*Memory, error)
	DeleteMemory(ctx context.Context, id int64) (bool, error)

	// MemoryEmbedding model related methods (the semantic index).
	UpsertMemoryEmbedding(ctx context.Context, upsert *MemoryEmbedding) error
	ListMemoryEmbeddings(ctx context.Context) ([]*MemoryEmbedding, error)
	DeleteMemoryEmbedding(ctx context.Context, memoryID int64) error
	CountMemoryEmbeddings(ctx context.Context) (int, error)
	FindMemoriesWithoutEmbedding(ctx context.Context) ([]*Memory, error)

	// Post model related methods.
	UpsertPost(ctx context.Context, upsert *Post) (*Post, error)
	ListPosts(ctx context.Context, find *FindPost) ([]*Post, error)

	// Email model related methods.
	UpsertEmail(ctx context.Context, upsert *Email) error
	ListEmails(ctx context.Context, find *FindEmail) ([]*Email, error)
	MarkEmailReplied(ctx context.Context, messageID, replyBody string, repliedAt time.Time) error

	// Reminder model related methods.
	CreateReminder(ctx context.Context, create *Reminder) (*Reminder, error)
	ListReminders(ctx context.Context, find *FindReminder) ([]*Reminder, error)
	MarkRemindersTriggered(ctx context.Context, ids []int64, triggeredAt time.Time) error
}
