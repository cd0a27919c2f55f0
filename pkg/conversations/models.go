package conversations

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/ipdelete/agent-base/pkg/types/conversations"
	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// JSONField stores a value as a JSON-encoded TEXT column.
type JSONField[T any] struct {
	Data T
}

// Scan implements the sql.Scanner interface for reading from database
func (j *JSONField[T]) Scan(value any) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.Errorf("cannot scan %T into JSONField", value)
		}
		bytes = []byte(str)
	}

	return json.Unmarshal(bytes, &j.Data)
}

// Value implements the driver.Valuer interface for writing to database
func (j JSONField[T]) Value() (driver.Value, error) {
	return json.Marshal(j.Data)
}

// dbConversationRecord represents the conversations table structure
type dbConversationRecord struct {
	ID          string                                     `db:"id"`
	Provider    string                                     `db:"provider"`
	Model       string                                     `db:"model"`
	RawMessages json.RawMessage                            `db:"raw_messages"`
	Usage       JSONField[llmtypes.Usage]                  `db:"usage"`
	Injections  JSONField[[]conversations.InjectionRecord] `db:"injections"`
	Summary     *string                                    `db:"summary"` // NULL in database
	CreatedAt   time.Time                                  `db:"created_at"`
	UpdatedAt   time.Time                                  `db:"updated_at"`
}

// dbConversationSummary represents the conversation_summaries table structure
type dbConversationSummary struct {
	ID             string                    `db:"id"`
	MessageCount   int                       `db:"message_count"`
	FirstMessage   string                    `db:"first_message"`
	Summary        *string                   `db:"summary"` // NULL in database
	Provider       string                    `db:"provider"`
	Model          string                    `db:"model"`
	Usage          JSONField[llmtypes.Usage] `db:"usage"`
	InjectedTokens int                       `db:"injected_tokens"`
	CreatedAt      time.Time                 `db:"created_at"`
	UpdatedAt      time.Time                 `db:"updated_at"`
}

// toConversationRecord converts a database row to the domain model
func (dbr *dbConversationRecord) toConversationRecord() conversations.ConversationRecord {
	record := conversations.ConversationRecord{
		ID:          dbr.ID,
		Provider:    dbr.Provider,
		Model:       dbr.Model,
		RawMessages: dbr.RawMessages,
		Usage:       dbr.Usage.Data,
		Injections:  dbr.Injections.Data,
		CreatedAt:   dbr.CreatedAt,
		UpdatedAt:   dbr.UpdatedAt,
	}

	if dbr.Summary != nil {
		record.Summary = *dbr.Summary
	}

	return record
}

// toConversationSummary converts a database row to the domain model
func (dbs *dbConversationSummary) toConversationSummary() conversations.ConversationSummary {
	summary := conversations.ConversationSummary{
		ID:             dbs.ID,
		MessageCount:   dbs.MessageCount,
		FirstMessage:   dbs.FirstMessage,
		Provider:       dbs.Provider,
		Model:          dbs.Model,
		Usage:          dbs.Usage.Data,
		InjectedTokens: dbs.InjectedTokens,
		CreatedAt:      dbs.CreatedAt,
		UpdatedAt:      dbs.UpdatedAt,
	}

	if dbs.Summary != nil {
		summary.Summary = *dbs.Summary
	}

	return summary
}

// fromConversationRecord converts the domain model to a database row
func fromConversationRecord(record conversations.ConversationRecord) *dbConversationRecord {
	dbRecord := &dbConversationRecord{
		ID:          record.ID,
		Provider:    record.Provider,
		Model:       record.Model,
		RawMessages: record.RawMessages,
		Usage:       JSONField[llmtypes.Usage]{Data: record.Usage},
		Injections:  JSONField[[]conversations.InjectionRecord]{Data: record.Injections},
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}

	if record.Summary != "" {
		dbRecord.Summary = &record.Summary
	}

	return dbRecord
}

// fromConversationSummary converts the domain model to a database row
func fromConversationSummary(summary conversations.ConversationSummary) *dbConversationSummary {
	dbSummary := &dbConversationSummary{
		ID:             summary.ID,
		MessageCount:   summary.MessageCount,
		FirstMessage:   summary.FirstMessage,
		Provider:       summary.Provider,
		Model:          summary.Model,
		Usage:          JSONField[llmtypes.Usage]{Data: summary.Usage},
		InjectedTokens: summary.InjectedTokens,
		CreatedAt:      summary.CreatedAt,
		UpdatedAt:      summary.UpdatedAt,
	}

	if summary.Summary != "" {
		dbSummary.Summary = &summary.Summary
	}

	return dbSummary
}
