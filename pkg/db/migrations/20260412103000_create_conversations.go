package migrations

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/ipdelete/agent-base/pkg/db"
)

// Migration20260412103000CreateConversations creates the conversations and
// conversation_summaries tables.
func Migration20260412103000CreateConversations() db.Migration {
	return db.Migration{
		Version:     20260412103000,
		Description: "Create conversations and conversation_summaries tables",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS conversations (
					id TEXT PRIMARY KEY,
					provider TEXT NOT NULL,
					model TEXT NOT NULL,
					raw_messages TEXT NOT NULL,
					usage TEXT NOT NULL,
					injections TEXT,
					summary TEXT,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create conversations table")
			}

			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS conversation_summaries (
					id TEXT PRIMARY KEY,
					message_count INTEGER NOT NULL,
					first_message TEXT NOT NULL,
					summary TEXT,
					provider TEXT NOT NULL,
					model TEXT NOT NULL,
					usage TEXT NOT NULL,
					injected_tokens INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create conversation_summaries table")
			}

			return nil
		},
		Down: func(tx *sql.Tx) error {
			if _, err := tx.Exec("DROP TABLE IF EXISTS conversation_summaries"); err != nil {
				return errors.Wrap(err, "failed to drop conversation_summaries table")
			}
			if _, err := tx.Exec("DROP TABLE IF EXISTS conversations"); err != nil {
				return errors.Wrap(err, "failed to drop conversations table")
			}
			return nil
		},
	}
}
