// Package conversations defines the persisted conversation record,
// its summary form, and the query types shared by the store and the
// CLI.
package conversations

import (
	"encoding/json"
	"time"

	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// QueryOptions provides filtering and sorting options for conversation queries
type QueryOptions struct {
	StartDate  *time.Time // Filter by start date
	EndDate    *time.Time // Filter by end date
	SearchTerm string     // Text to search for in first message or summary
	Provider   string     // Filter by LLM provider (e.g., "anthropic", "openai")
	Limit      int        // Maximum number of results
	Offset     int        // Offset for pagination
	SortBy     string     // "createdAt", "updatedAt" or "messageCount"
	SortOrder  string     // "asc" or "desc"
}

// InjectionRecord captures what skill context was attached to one user
// turn: the disclosure tier, the skills whose documentation was
// included, and the estimated token cost of the injected text.
type InjectionRecord struct {
	Tier            string   `json:"tier"`
	Skills          []string `json:"skills,omitempty"`
	EstimatedTokens int      `json:"estimatedTokens"`
}

// ConversationRecord represents a persisted conversation with its messages and metadata
type ConversationRecord struct {
	ID          string            `json:"id"`
	Provider    string            `json:"provider"` // e.g., "anthropic"
	Model       string            `json:"model"`
	RawMessages json.RawMessage   `json:"rawMessages"` // Serialized []llmtypes.Message
	Usage       llmtypes.Usage    `json:"usage"`
	Injections  []InjectionRecord `json:"injections,omitempty"` // One entry per user turn
	Summary     string            `json:"summary,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ConversationSummary provides a brief overview of a conversation
type ConversationSummary struct {
	ID             string         `json:"id"`
	MessageCount   int            `json:"messageCount"`
	FirstMessage   string         `json:"firstMessage"`
	Summary        string         `json:"summary,omitempty"`
	Provider       string         `json:"provider"`
	Model          string         `json:"model"`
	Usage          llmtypes.Usage `json:"usage"`
	InjectedTokens int            `json:"injectedTokens"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// QueryResult represents the result of a query operation
type QueryResult struct {
	ConversationSummaries []ConversationSummary `json:"conversationSummaries"`
	Total                 int                   `json:"total"` // Total matches without pagination
	QueryOptions
}

// NewConversationRecord creates a new conversation record. If no ID is
// provided, a fresh one is generated.
func NewConversationRecord(id string) ConversationRecord {
	now := time.Now()

	if id == "" {
		id = GenerateID()
	}

	return ConversationRecord{
		ID:          id,
		RawMessages: json.RawMessage("[]"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Messages decodes the raw message payload. A record with no messages
// decodes to an empty slice.
func (cr *ConversationRecord) Messages() ([]llmtypes.Message, error) {
	if len(cr.RawMessages) == 0 {
		return nil, nil
	}
	var messages []llmtypes.Message
	if err := json.Unmarshal(cr.RawMessages, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// InjectedTokens sums the estimated token cost of every injection made
// over the conversation's lifetime.
func (cr *ConversationRecord) InjectedTokens() int {
	total := 0
	for _, injection := range cr.Injections {
		total += injection.EstimatedTokens
	}
	return total
}

// ToSummary converts a ConversationRecord to a ConversationSummary
func (cr *ConversationRecord) ToSummary() ConversationSummary {
	firstMessage := ""
	messageCount := 0
	if messages, err := cr.Messages(); err == nil {
		messageCount = len(messages)
		for _, message := range messages {
			if message.Role == "user" {
				firstMessage = message.Content
				if len(firstMessage) > 100 {
					firstMessage = firstMessage[:97] + "..."
				}
				break
			}
		}
	}

	return ConversationSummary{
		ID:             cr.ID,
		MessageCount:   messageCount,
		FirstMessage:   firstMessage,
		Summary:        cr.Summary,
		Provider:       cr.Provider,
		Model:          cr.Model,
		Usage:          cr.Usage,
		InjectedTokens: cr.InjectedTokens(),
		CreatedAt:      cr.CreatedAt,
		UpdatedAt:      cr.UpdatedAt,
	}
}
