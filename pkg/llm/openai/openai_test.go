package openai

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

func TestNewOpenAIThread(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	thread, err := NewOpenAIThread(llmtypes.Config{})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", thread.config.Model)
	assert.Equal(t, 8192, thread.config.MaxTokens)
	assert.NotEmpty(t, thread.GetConversationID())

	thread, err = NewOpenAIThread(llmtypes.Config{Model: "gpt-4o", MaxTokens: 4096})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", thread.config.Model)
	assert.Equal(t, 4096, thread.config.MaxTokens)
}

func TestNewOpenAIThreadMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewOpenAIThread(llmtypes.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY environment variable is required")
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error", &openai.APIError{HTTPStatusCode: 500}, true},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401}, false},
		{"request error", &openai.RequestError{HTTPStatusCode: 503, Err: errors.New("boom")}, true},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}

func TestAddUserMessageTracksHistory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	thread, err := NewOpenAIThread(llmtypes.Config{})
	require.NoError(t, err)

	thread.addUserMessage("hello there")

	require.Len(t, thread.messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, thread.messages[0].Role)

	records := thread.GetMessages()
	require.Len(t, records, 1)
	assert.Equal(t, llmtypes.Message{Role: "user", Content: "hello there"}, records[0])
}

func TestSetConversationID(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	thread, err := NewOpenAIThread(llmtypes.Config{})
	require.NoError(t, err)

	thread.SetConversationID("resumed-id")
	assert.Equal(t, "resumed-id", thread.GetConversationID())
}
