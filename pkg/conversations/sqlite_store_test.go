package conversations

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipdelete/agent-base/pkg/types/conversations"
	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(id, provider, firstMessage string) conversations.ConversationRecord {
	record := conversations.NewConversationRecord(id)
	record.Provider = provider
	record.Model = "test-model"
	record.RawMessages = json.RawMessage(
		`[{"role":"user","content":` + string(mustJSON(firstMessage)) + `},{"role":"assistant","content":"ok"}]`)
	record.Usage = llmtypes.Usage{InputTokens: 100, OutputTokens: 50}
	record.Injections = []conversations.InjectionRecord{
		{Tier: "full_docs", Skills: []string{"forecast"}, EstimatedTokens: 60},
	}
	record.Summary = firstMessage
	return record
}

func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}

func TestSQLiteStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	record := testRecord("conv-1", "anthropic", "Hello world")
	require.NoError(t, store.Save(ctx, record))

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, loaded.ID)
	assert.Equal(t, "anthropic", loaded.Provider)
	assert.Equal(t, "test-model", loaded.Model)
	assert.Equal(t, record.Usage, loaded.Usage)
	assert.Equal(t, record.Injections, loaded.Injections)
	assert.Equal(t, record.Summary, loaded.Summary)
	assert.JSONEq(t, string(record.RawMessages), string(loaded.RawMessages))
}

func TestSQLiteStoreLoadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreUpsertPreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	record := testRecord("conv-1", "anthropic", "Hello world")
	require.NoError(t, store.Save(ctx, record))

	first, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)

	record.Summary = "updated summary"
	record.Usage.Add(llmtypes.Usage{InputTokens: 10, OutputTokens: 5})
	require.NoError(t, store.Save(ctx, record))

	second, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt.UTC(), second.CreatedAt.UTC())
	assert.Equal(t, "updated summary", second.Summary)
	assert.Equal(t, 110, second.Usage.InputTokens)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}

func TestSQLiteStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Save(ctx, testRecord("conv-1", "anthropic", "Hello")))
	require.NoError(t, store.Delete(ctx, "conv-1"))

	_, err := store.Load(ctx, "conv-1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Delete(ctx, "conv-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now()
	first := testRecord("conv-1", "anthropic", "Hello world")
	first.CreatedAt = now.Add(-2 * time.Hour)
	second := testRecord("conv-2", "openai", "Testing search")
	second.CreatedAt = now.Add(-1 * time.Hour)
	third := testRecord("conv-3", "anthropic", "Another message")
	third.CreatedAt = now

	for _, record := range []conversations.ConversationRecord{first, second, third} {
		require.NoError(t, store.Save(ctx, record))
	}

	t.Run("default sort is updated_at desc", func(t *testing.T) {
		result, err := store.List(ctx, conversations.QueryOptions{})
		require.NoError(t, err)
		require.Len(t, result.ConversationSummaries, 3)
		assert.Equal(t, "conv-3", result.ConversationSummaries[0].ID)
		assert.Equal(t, "conv-1", result.ConversationSummaries[2].ID)
		assert.Equal(t, 3, result.Total)
	})

	t.Run("sort by createdAt asc", func(t *testing.T) {
		result, err := store.List(ctx, conversations.QueryOptions{
			SortBy:    "createdAt",
			SortOrder: "asc",
		})
		require.NoError(t, err)
		require.Len(t, result.ConversationSummaries, 3)
		assert.Equal(t, "conv-1", result.ConversationSummaries[0].ID)
		assert.Equal(t, "conv-3", result.ConversationSummaries[2].ID)
	})

	t.Run("search term", func(t *testing.T) {
		result, err := store.List(ctx, conversations.QueryOptions{SearchTerm: "search"})
		require.NoError(t, err)
		require.Len(t, result.ConversationSummaries, 1)
		assert.Equal(t, "conv-2", result.ConversationSummaries[0].ID)
	})

	t.Run("provider filter", func(t *testing.T) {
		result, err := store.List(ctx, conversations.QueryOptions{Provider: "anthropic"})
		require.NoError(t, err)
		assert.Len(t, result.ConversationSummaries, 2)
		assert.Equal(t, 2, result.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := store.List(ctx, conversations.QueryOptions{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, result.ConversationSummaries, 2)
		assert.Equal(t, 3, result.Total, "total counts matches beyond the page")

		result, err = store.List(ctx, conversations.QueryOptions{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, result.ConversationSummaries, 1)
	})

	t.Run("date filter", func(t *testing.T) {
		start := now.Add(-90 * time.Minute)
		end := now.Add(-30 * time.Minute)
		result, err := store.List(ctx, conversations.QueryOptions{
			StartDate: &start,
			EndDate:   &end,
		})
		require.NoError(t, err)
		require.Len(t, result.ConversationSummaries, 1)
		assert.Equal(t, "conv-2", result.ConversationSummaries[0].ID)
	})
}

func TestSQLiteStoreListEmpty(t *testing.T) {
	store := newTestStore(t)

	result, err := store.List(context.Background(), conversations.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.ConversationSummaries)
	assert.Zero(t, result.Total)
}

func TestSQLiteStoreSummaryDerivedFields(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	record := testRecord("conv-1", "anthropic", "Hello world")
	record.Injections = []conversations.InjectionRecord{
		{Tier: "breadcrumb", EstimatedTokens: 5},
		{Tier: "full_docs", Skills: []string{"forecast"}, EstimatedTokens: 120},
	}
	require.NoError(t, store.Save(ctx, record))

	result, err := store.List(ctx, conversations.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, result.ConversationSummaries, 1)

	summary := result.ConversationSummaries[0]
	assert.Equal(t, "Hello world", summary.FirstMessage)
	assert.Equal(t, 2, summary.MessageCount)
	assert.Equal(t, 125, summary.InjectedTokens)
	assert.Equal(t, "test-model", summary.Model)
}
