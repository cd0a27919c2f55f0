package sysprompt

import (
	"context"

	"github.com/ipdelete/agent-base/pkg/logger"
)

// SystemPrompt generates the system prompt for the given model
func SystemPrompt(model string) string {
	prompt, err := defaultRenderer.RenderSystemPrompt(NewPromptContext(model))
	if err != nil {
		log := logger.G(context.Background())
		log.WithError(err).Fatal("error rendering system prompt")
	}

	return prompt
}
