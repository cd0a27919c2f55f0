package conversations

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ipdelete/agent-base/pkg/db"
	"github.com/ipdelete/agent-base/pkg/db/migrations"
	"github.com/ipdelete/agent-base/pkg/types/conversations"
)

// SQLiteStore implements ConversationStore using a SQLite database.
type SQLiteStore struct {
	dbPath string
	db     *sqlx.DB
}

var _ ConversationStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath and brings
// its schema up to date.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	sqlDB, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	runner := db.NewMigrationRunner(sqlDB)
	if err := runner.Run(ctx, migrations.All()); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return &SQLiteStore{
		dbPath: dbPath,
		db:     sqlDB,
	}, nil
}

// Save upserts the conversation record and its denormalized summary in
// one transaction. created_at is preserved on update.
func (s *SQLiteStore) Save(ctx context.Context, record conversations.ConversationRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	record.UpdatedAt = time.Now()

	dbRecord := fromConversationRecord(record)
	dbSummary := fromConversationSummary(record.ToSummary())

	conversationQuery := `
		INSERT INTO conversations (
			id, provider, model, raw_messages, usage, injections,
			summary, created_at, updated_at
		) VALUES (
			:id, :provider, :model, :raw_messages, :usage, :injections,
			:summary, :created_at, :updated_at
		)
		ON CONFLICT(id) DO UPDATE SET
			provider = excluded.provider,
			model = excluded.model,
			raw_messages = excluded.raw_messages,
			usage = excluded.usage,
			injections = excluded.injections,
			summary = excluded.summary,
			updated_at = excluded.updated_at
	`
	if _, err := tx.NamedExecContext(ctx, conversationQuery, dbRecord); err != nil {
		return errors.Wrap(err, "failed to save conversation record")
	}

	summaryQuery := `
		INSERT INTO conversation_summaries (
			id, message_count, first_message, summary, provider, model,
			usage, injected_tokens, created_at, updated_at
		) VALUES (
			:id, :message_count, :first_message, :summary, :provider, :model,
			:usage, :injected_tokens, :created_at, :updated_at
		)
		ON CONFLICT(id) DO UPDATE SET
			message_count = excluded.message_count,
			first_message = excluded.first_message,
			summary = excluded.summary,
			provider = excluded.provider,
			model = excluded.model,
			usage = excluded.usage,
			injected_tokens = excluded.injected_tokens,
			updated_at = excluded.updated_at
	`
	if _, err := tx.NamedExecContext(ctx, summaryQuery, dbSummary); err != nil {
		return errors.Wrap(err, "failed to save conversation summary")
	}

	return tx.Commit()
}

// Load retrieves a conversation record by ID
func (s *SQLiteStore) Load(ctx context.Context, id string) (conversations.ConversationRecord, error) {
	var dbRecord dbConversationRecord

	query := `SELECT id, provider, model, raw_messages, usage, injections,
		summary, created_at, updated_at
		FROM conversations WHERE id = ?`
	if err := s.db.GetContext(ctx, &dbRecord, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return conversations.ConversationRecord{}, errors.Wrapf(ErrNotFound, "id %s", id)
		}
		return conversations.ConversationRecord{}, errors.Wrap(err, "failed to load conversation record")
	}

	return dbRecord.toConversationRecord(), nil
}

// Delete removes a conversation and its summary
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "failed to delete conversation record")
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM conversation_summaries WHERE id = ?", id); err != nil {
		return errors.Wrap(err, "failed to delete conversation summary")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check deleted rows")
	}
	if affected == 0 {
		return errors.Wrapf(ErrNotFound, "id %s", id)
	}

	return tx.Commit()
}

// List queries conversation summaries with filtering, sorting, and pagination
func (s *SQLiteStore) List(ctx context.Context, options conversations.QueryOptions) (conversations.QueryResult, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if options.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *options.StartDate
	}

	if options.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *options.EndDate
	}

	if options.SearchTerm != "" {
		searchPattern := "%" + strings.ToLower(options.SearchTerm) + "%"
		conditions = append(conditions, "(LOWER(first_message) LIKE :search_term OR LOWER(summary) LIKE :search_term)")
		args["search_term"] = searchPattern
	}

	if options.Provider != "" {
		conditions = append(conditions, "provider = :provider")
		args["provider"] = options.Provider
	}

	sortBy := "updated_at"
	switch options.SortBy {
	case "createdAt":
		sortBy = "created_at"
	case "updatedAt":
		sortBy = "updated_at"
	case "messageCount":
		sortBy = "message_count"
	}

	sortOrder := "DESC"
	if options.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	baseQuery := `SELECT id, message_count, first_message, summary, provider, model,
		usage, injected_tokens, created_at, updated_at FROM conversation_summaries`
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY " + sortBy + " " + sortOrder

	if options.Limit > 0 {
		baseQuery += " LIMIT :limit"
		args["limit"] = options.Limit

		if options.Offset > 0 {
			baseQuery += " OFFSET :offset"
			args["offset"] = options.Offset
		}
	}

	var dbSummaries []dbConversationSummary
	finalQuery, argsSlice, err := sqlx.Named(baseQuery, args)
	if err != nil {
		return conversations.QueryResult{}, errors.Wrap(err, "failed to build named query")
	}

	finalQuery = s.db.Rebind(finalQuery)
	if err := s.db.SelectContext(ctx, &dbSummaries, finalQuery, argsSlice...); err != nil {
		return conversations.QueryResult{}, errors.Wrap(err, "failed to execute query")
	}

	summaries := make([]conversations.ConversationSummary, len(dbSummaries))
	for i, dbSummary := range dbSummaries {
		summaries[i] = dbSummary.toConversationSummary()
	}

	countQuery := "SELECT COUNT(*) FROM conversation_summaries"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	countArgs := make(map[string]interface{})
	for k, v := range args {
		if k != "limit" && k != "offset" {
			countArgs[k] = v
		}
	}

	var total int
	finalCountQuery, countArgsSlice, err := sqlx.Named(countQuery, countArgs)
	if err != nil {
		return conversations.QueryResult{}, errors.Wrap(err, "failed to build named count query")
	}

	finalCountQuery = s.db.Rebind(finalCountQuery)
	if err := s.db.GetContext(ctx, &total, finalCountQuery, countArgsSlice...); err != nil {
		return conversations.QueryResult{}, errors.Wrap(err, "failed to get total count")
	}

	return conversations.QueryResult{
		ConversationSummaries: summaries,
		Total:                 total,
		QueryOptions:          options,
	}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
