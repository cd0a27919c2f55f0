// Package llm routes conversations to the configured model provider.
package llm

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/ipdelete/agent-base/pkg/llm/anthropic"
	"github.com/ipdelete/agent-base/pkg/llm/openai"
	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// NewThread creates a thread for the configured provider. When no
// provider is set the model name decides, defaulting to Anthropic.
func NewThread(config llmtypes.Config) (llmtypes.Thread, error) {
	provider := config.Provider
	if provider == "" {
		provider = inferProvider(config.Model)
	}

	switch provider {
	case "anthropic":
		return anthropic.NewAnthropicThread(config)
	case "openai":
		return openai.NewOpenAIThread(config)
	default:
		return nil, errors.Errorf("unsupported provider: %s", provider)
	}
}

func inferProvider(model string) string {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt"),
		strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"),
		strings.HasPrefix(model, "o4"):
		return "openai"
	default:
		return "anthropic"
	}
}
