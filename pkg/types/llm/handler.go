package llm

import (
	"fmt"
	"strings"
)

// MessageHandler defines how response events are processed.
type MessageHandler interface {
	HandleText(text string)
	HandleThinking(text string)
	HandleDone()
}

// ConsoleMessageHandler prints responses to stdout.
type ConsoleMessageHandler struct {
	Silent bool
}

func (h *ConsoleMessageHandler) HandleText(text string) {
	if !h.Silent {
		fmt.Println(text)
		fmt.Println()
	}
}

func (h *ConsoleMessageHandler) HandleThinking(text string) {
	if !h.Silent {
		fmt.Printf("💭 %s\n\n", text)
	}
}

func (h *ConsoleMessageHandler) HandleDone() {}

// StringCollectorHandler collects response text into a buffer,
// optionally echoing to stdout.
type StringCollectorHandler struct {
	Silent bool
	text   strings.Builder
}

func (h *StringCollectorHandler) HandleText(text string) {
	h.text.WriteString(text)
	h.text.WriteString("\n")

	if !h.Silent {
		fmt.Println(text)
		fmt.Println()
	}
}

func (h *StringCollectorHandler) HandleThinking(text string) {
	if !h.Silent {
		fmt.Printf("💭 %s\n\n", text)
	}
}

func (h *StringCollectorHandler) HandleDone() {}

// CollectedText returns everything the handler has received.
func (h *StringCollectorHandler) CollectedText() string {
	return h.text.String()
}
