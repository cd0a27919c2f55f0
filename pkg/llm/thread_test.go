package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

func TestNewThreadUnsupportedProvider(t *testing.T) {
	_, err := NewThread(llmtypes.Config{Provider: "mystery"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider: mystery")
}

func TestNewThreadAnthropicRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewThread(llmtypes.Config{Provider: "anthropic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestNewThreadOpenAIRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewThread(llmtypes.Config{Provider: "openai"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewThreadDispatchesAnthropic(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	thread, err := NewThread(llmtypes.Config{Provider: "anthropic"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", thread.Provider())
}

func TestNewThreadDispatchesOpenAI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	thread, err := NewThread(llmtypes.Config{Provider: "openai"})
	require.NoError(t, err)
	assert.Equal(t, "openai", thread.Provider())
}

func TestNewThreadInfersProviderFromModel(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("OPENAI_API_KEY", "test-key")

	tests := []struct {
		model    string
		provider string
	}{
		{"claude-sonnet-4-20250514", "anthropic"},
		{"gpt-4.1", "openai"},
		{"o3-mini", "openai"},
		{"", "anthropic"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			thread, err := NewThread(llmtypes.Config{Model: tt.model})
			require.NoError(t, err)
			assert.Equal(t, tt.provider, thread.Provider())
		})
	}
}
