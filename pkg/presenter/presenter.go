// Package presenter provides consistent CLI output for user-facing
// messages: success, error, warning and informational lines with color
// support and a quiet mode. Log output goes through pkg/logger; this
// package is for text the user is meant to read.
package presenter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// UsageStats summarizes a completed exchange: model token usage plus
// the skill context that was injected alongside the user message.
type UsageStats struct {
	InputTokens    int64
	OutputTokens   int64
	InjectionTier  string
	InjectedSkills []string
	InjectedTokens int
	ConversationID string
}

// Presenter defines the interface for consistent CLI output.
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Prompt(question string, options ...string) string
	Stats(usage *UsageStats)
	Separator()
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// ColorMode controls whether output is colorized.
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal capabilities.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output.
	ColorAlways
	// ColorNever disables colored output.
	ColorNever
)

// TerminalPresenter implements Presenter for terminal output.
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	quiet       bool
}

// New creates a TerminalPresenter writing to stdout/stderr with color
// mode detected from the environment.
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with explicit outputs and
// color mode, used by tests.
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}

	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
	}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv("AGENTBASE_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error writes an error line to stderr. Errors ignore quiet mode.
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	c := color.New(color.FgRed, color.Bold)
	if context != "" {
		c.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		c.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success writes a green check line.
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning writes a yellow warning line.
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info writes a plain informational line.
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section writes a bold underlined section header.
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}
	c := color.New(color.Bold)
	c.Fprintf(p.output, "%s\n", title)
	c.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Prompt asks the user a question and returns the trimmed response.
// Prompts ignore quiet mode since they require interaction.
func (p *TerminalPresenter) Prompt(question string, options ...string) string {
	c := color.New(color.FgCyan)

	if len(options) > 0 {
		c.Fprintf(p.output, "%s [%s]: ", question, strings.Join(options, "/"))
	} else {
		c.Fprintf(p.output, "%s: ", question)
	}

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}

	return strings.TrimSpace(response)
}

// Stats writes the usage summary for a completed exchange.
func (p *TerminalPresenter) Stats(usage *UsageStats) {
	if p.quiet || usage == nil {
		return
	}

	c := color.New(color.FgCyan, color.Bold)

	total := usage.InputTokens + usage.OutputTokens
	c.Fprintf(p.output, "[Usage] Input tokens: %d | Output tokens: %d | Total: %d\n",
		usage.InputTokens, usage.OutputTokens, total)

	if usage.InjectionTier != "" {
		skills := "none"
		if len(usage.InjectedSkills) > 0 {
			skills = strings.Join(usage.InjectedSkills, ", ")
		}
		c.Fprintf(p.output, "[Skills] Tier: %s | Injected: %s | ~%d tokens\n",
			usage.InjectionTier, skills, usage.InjectedTokens)
	}

	if usage.ConversationID != "" {
		c.Fprintf(p.output, "[Conversation] ID: %s\n", usage.ConversationID)
	}
}

// Separator writes a faint horizontal rule.
func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}
	color.New(color.Faint).Fprintf(p.output, "%s\n", strings.Repeat("-", 60))
}

// SetQuiet enables or disables quiet mode.
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet reports whether quiet mode is enabled.
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

// ConvertUsageStats converts llmtypes.Usage to presenter.UsageStats.
// Injection fields are filled in by the caller when skill context was
// attached.
func ConvertUsageStats(stats *llmtypes.Usage) *UsageStats {
	if stats == nil {
		return nil
	}

	return &UsageStats{
		InputTokens:  int64(stats.InputTokens),
		OutputTokens: int64(stats.OutputTokens),
	}
}

var defaultPresenter = New()

// Error writes an error line using the default presenter.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success writes a success line using the default presenter.
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning writes a warning line using the default presenter.
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info writes an informational line using the default presenter.
func Info(message string) {
	defaultPresenter.Info(message)
}

// Section writes a section header using the default presenter.
func Section(title string) {
	defaultPresenter.Section(title)
}

// Prompt asks a question using the default presenter.
func Prompt(question string, options ...string) string {
	return defaultPresenter.Prompt(question, options...)
}

// Stats writes a usage summary using the default presenter.
func Stats(usage *UsageStats) {
	defaultPresenter.Stats(usage)
}

// Separator writes a horizontal rule using the default presenter.
func Separator() {
	defaultPresenter.Separator()
}

// SetQuiet toggles quiet mode on the default presenter.
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}

// IsQuiet reports quiet mode on the default presenter.
func IsQuiet() bool {
	return defaultPresenter.IsQuiet()
}
