package anthropic

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

func TestNewAnthropicThread(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	thread, err := NewAnthropicThread(llmtypes.Config{})
	require.NoError(t, err)
	assert.Equal(t, string(anthropic.ModelClaudeSonnet4_20250514), thread.config.Model)
	assert.Equal(t, 8192, thread.config.MaxTokens)
	assert.NotEmpty(t, thread.GetConversationID())

	thread, err = NewAnthropicThread(llmtypes.Config{Model: "claude-3-5-haiku-latest", MaxTokens: 2048})
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-haiku-latest", thread.config.Model)
	assert.Equal(t, 2048, thread.config.MaxTokens)
}

func TestNewAnthropicThreadMissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewAnthropicThread(llmtypes.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY environment variable is required")
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"overloaded", &anthropic.Error{StatusCode: 529}, true},
		{"rate limited", &anthropic.Error{StatusCode: 429}, true},
		{"bad request", &anthropic.Error{StatusCode: 400}, false},
		{"unauthorized", &anthropic.Error{StatusCode: 401}, false},
		{"server error", &anthropic.Error{StatusCode: 500}, true},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"transport error", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}

func TestAddUserMessageTracksHistory(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	thread, err := NewAnthropicThread(llmtypes.Config{})
	require.NoError(t, err)

	thread.addUserMessage("hello there")

	require.Len(t, thread.messages, 1)

	records := thread.GetMessages()
	require.Len(t, records, 1)
	assert.Equal(t, llmtypes.Message{Role: "user", Content: "hello there"}, records[0])
}

func TestUsageAccumulates(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	thread, err := NewAnthropicThread(llmtypes.Config{})
	require.NoError(t, err)

	thread.usage.Add(llmtypes.Usage{InputTokens: 100, OutputTokens: 40})
	thread.usage.Add(llmtypes.Usage{InputTokens: 50, OutputTokens: 10})

	usage := thread.GetUsage()
	assert.Equal(t, 150, usage.InputTokens)
	assert.Equal(t, 50, usage.OutputTokens)
	assert.Equal(t, 200, usage.TotalTokens())
}
