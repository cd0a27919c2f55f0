// Package migrations contains all database migrations for agentbase.
// Migrations use Rails-style timestamp versioning (YYYYMMDDHHmmss).
package migrations

import (
	"github.com/ipdelete/agent-base/pkg/db"
)

// All returns all registered migrations in the correct order.
// New migrations should be added to this list.
func All() []db.Migration {
	return []db.Migration{
		Migration20260412103000CreateConversations(),
		Migration20260518094500AddConversationIndexes(),
	}
}
