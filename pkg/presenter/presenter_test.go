package presenter

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	p := New()
	assert.NotNil(t, p)
	assert.Equal(t, os.Stdout, p.output)
	assert.Equal(t, os.Stderr, p.errorOutput)
	assert.False(t, p.quiet)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name          string
		noColor       string
		agentbaseColr string
		expected      ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"AGENTBASE_COLOR always", "", "always", ColorAlways},
		{"AGENTBASE_COLOR force", "", "force", ColorAlways},
		{"AGENTBASE_COLOR never", "", "never", ColorNever},
		{"AGENTBASE_COLOR off", "", "off", ColorNever},
		{"AGENTBASE_COLOR auto", "", "auto", ColorAuto},
		{"default", "", "", ColorAuto},
		{"unknown value", "", "sepia", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("AGENTBASE_COLOR", tt.agentbaseColr)
			if tt.noColor == "" {
				os.Unsetenv("NO_COLOR")
			}
			if tt.agentbaseColr == "" {
				os.Unsetenv("AGENTBASE_COLOR")
			}

			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestError(t *testing.T) {
	var errorOutput bytes.Buffer
	p := NewWithOptions(nil, &errorOutput, ColorNever)

	p.Error(errors.New("skill directory unreadable"), "loading skills")
	out := errorOutput.String()
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "loading skills")
	assert.Contains(t, out, "skill directory unreadable")

	errorOutput.Reset()
	p.Error(errors.New("boom"), "")
	assert.Contains(t, errorOutput.String(), "[ERROR] boom")

	errorOutput.Reset()
	p.Error(nil, "ignored")
	assert.Empty(t, errorOutput.String())
}

func TestErrorIgnoresQuietMode(t *testing.T) {
	var errorOutput bytes.Buffer
	p := NewWithOptions(nil, &errorOutput, ColorNever)
	p.SetQuiet(true)

	p.Error(errors.New("still visible"), "")
	assert.Contains(t, errorOutput.String(), "still visible")
}

func TestMessageLines(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Success("skill enabled")
	p.Warning("skill not found in any directory")
	p.Info("3 skills loaded")

	out := output.String()
	assert.Contains(t, out, "✓ skill enabled")
	assert.Contains(t, out, "⚠ skill not found in any directory")
	assert.Contains(t, out, "3 skills loaded")
}

func TestQuietModeSuppressesMessages(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	p.Separator()

	assert.Empty(t, output.String())
}

func TestSection(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Section("Available Skills")

	out := output.String()
	assert.Contains(t, out, "Available Skills\n")
	assert.Contains(t, out, "----------------\n")
}

func TestStats(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Stats(&UsageStats{
		InputTokens:    1200,
		OutputTokens:   340,
		InjectionTier:  "full_docs",
		InjectedSkills: []string{"hello-extended", "web-access"},
		InjectedTokens: 57,
		ConversationID: "529e24af",
	})

	out := output.String()
	assert.Contains(t, out, "Input tokens: 1200")
	assert.Contains(t, out, "Output tokens: 340")
	assert.Contains(t, out, "Total: 1540")
	assert.Contains(t, out, "Tier: full_docs")
	assert.Contains(t, out, "hello-extended, web-access")
	assert.Contains(t, out, "~57 tokens")
	assert.Contains(t, out, "ID: 529e24af")
}

func TestStatsOmitsEmptySections(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Stats(&UsageStats{InputTokens: 10, OutputTokens: 5})

	out := output.String()
	assert.Contains(t, out, "[Usage]")
	assert.NotContains(t, out, "[Skills]")
	assert.NotContains(t, out, "[Conversation]")
}

func TestStatsNilAndQuiet(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Stats(nil)
	assert.Empty(t, output.String())

	p.SetQuiet(true)
	p.Stats(&UsageStats{InputTokens: 1})
	assert.Empty(t, output.String())
}

func TestSeparator(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, nil, ColorNever)

	p.Separator()
	assert.Contains(t, output.String(), "------")
}
