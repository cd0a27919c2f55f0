package llm

import (
	"context"
)

// Message is a single exchange turn in provider-neutral form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageOpt carries per-message options.
type MessageOpt struct {
	// InjectedContext is supplementary skill documentation the request
	// pipeline attaches alongside the system prompt. Empty means no
	// injection for this message.
	InjectedContext string
}

// Thread is a conversation with an LLM provider.
type Thread interface {
	// SendMessage sends a user message and returns the assistant's
	// final text. Events stream through the handler as they arrive.
	SendMessage(ctx context.Context, message string, handler MessageHandler, opt MessageOpt) (string, error)
	// GetUsage returns accumulated token usage for the thread.
	GetUsage() Usage
	// GetMessages returns the exchange history in provider-neutral form.
	GetMessages() []Message
	// GetConversationID returns the conversation ID for persistence.
	GetConversationID() string
	// SetConversationID resumes the thread under an existing ID.
	SetConversationID(id string)
	// GetConfig returns the resolved configuration, with provider
	// defaults applied.
	GetConfig() Config
	// Provider names the backing provider ("anthropic", "openai").
	Provider() string
}
