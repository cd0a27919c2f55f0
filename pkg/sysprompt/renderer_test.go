package sysprompt

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSystemPrompt(t *testing.T) {
	renderer := NewRenderer(TemplateFS)

	prompt, err := renderer.RenderSystemPrompt(NewPromptContext("claude-sonnet-4-20250514"))
	require.NoError(t, err)

	assert.Contains(t, prompt, "agentbase")
	assert.Contains(t, prompt, "claude-sonnet-4-20250514")
	assert.Contains(t, prompt, time.Now().Format("2006-01-02"))
}

func TestRenderPromptUnknownTemplate(t *testing.T) {
	renderer := NewRenderer(TemplateFS)

	_, err := renderer.RenderPrompt("templates/missing.tmpl", NewPromptContext("gpt-4.1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRendererCustomFS(t *testing.T) {
	fs := fstest.MapFS{
		"templates/system.tmpl": &fstest.MapFile{
			Data: []byte("model is {{.Model}}"),
		},
	}

	renderer := NewRenderer(fs)
	prompt, err := renderer.RenderSystemPrompt(NewPromptContext("gpt-4.1"))
	require.NoError(t, err)
	assert.Equal(t, "model is gpt-4.1", prompt)
}

func TestRendererBrokenTemplate(t *testing.T) {
	fs := fstest.MapFS{
		"templates/system.tmpl": &fstest.MapFile{
			Data: []byte("{{.Unclosed"),
		},
	}

	renderer := NewRenderer(fs)
	_, err := renderer.RenderSystemPrompt(NewPromptContext("gpt-4.1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize templates")
}

func TestSystemPromptIncludesWorkingDirectory(t *testing.T) {
	ctx := NewPromptContext("gpt-4.1")
	require.NotEmpty(t, ctx.WorkingDirectory)

	prompt := SystemPrompt("gpt-4.1")
	assert.Contains(t, prompt, ctx.WorkingDirectory)
}
