package migrations

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/ipdelete/agent-base/pkg/db"
)

// Migration20260518094500AddConversationIndexes adds indexes for the common
// listing and filtering queries.
func Migration20260518094500AddConversationIndexes() db.Migration {
	return db.Migration{
		Version:     20260518094500,
		Description: "Add conversation listing indexes",
		Up: func(tx *sql.Tx) error {
			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at DESC)",
				"CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON conversation_summaries(created_at DESC)",
				"CREATE INDEX IF NOT EXISTS idx_summaries_updated_at ON conversation_summaries(updated_at DESC)",
				"CREATE INDEX IF NOT EXISTS idx_summaries_provider ON conversation_summaries(provider)",
			}
			for _, index := range indexes {
				if _, err := tx.Exec(index); err != nil {
					return errors.Wrapf(err, "failed to create index: %s", index)
				}
			}
			return nil
		},
		Down: func(tx *sql.Tx) error {
			drops := []string{
				"DROP INDEX IF EXISTS idx_summaries_provider",
				"DROP INDEX IF EXISTS idx_summaries_updated_at",
				"DROP INDEX IF EXISTS idx_summaries_created_at",
				"DROP INDEX IF EXISTS idx_conversations_updated_at",
			}
			for _, drop := range drops {
				if _, err := tx.Exec(drop); err != nil {
					return errors.Wrap(err, "failed to drop index")
				}
			}
			return nil
		},
	}
}
