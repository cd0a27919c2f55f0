// Package conversations persists chat conversations. It exposes a
// store interface and a SQLite implementation backed by the shared
// database helpers in pkg/db.
package conversations

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ipdelete/agent-base/pkg/db"
	"github.com/ipdelete/agent-base/pkg/types/conversations"
)

// ErrNotFound is returned when no stored conversation has the
// requested id.
var ErrNotFound = errors.New("conversation not found")

// ConversationStore defines the interface for conversation persistence
type ConversationStore interface {
	Save(ctx context.Context, record conversations.ConversationRecord) error
	Load(ctx context.Context, id string) (conversations.ConversationRecord, error)
	List(ctx context.Context, options conversations.QueryOptions) (conversations.QueryResult, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// New opens the SQLite store at the default database path.
func New(ctx context.Context) (ConversationStore, error) {
	dbPath, err := db.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	store, err := NewSQLiteStore(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}
