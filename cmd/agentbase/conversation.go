package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ipdelete/agent-base/pkg/conversations"
	"github.com/ipdelete/agent-base/pkg/presenter"
	convtypes "github.com/ipdelete/agent-base/pkg/types/conversations"
	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// ConversationListConfig holds configuration for the conversation list command
type ConversationListConfig struct {
	StartDate  string
	EndDate    string
	Search     string
	Provider   string
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
	JSONOutput bool
}

// NewConversationListConfig creates a new ConversationListConfig with default values
func NewConversationListConfig() *ConversationListConfig {
	return &ConversationListConfig{
		Limit:     50,
		SortBy:    "updatedAt",
		SortOrder: "desc",
	}
}

// ConversationShowConfig holds configuration for the conversation show command
type ConversationShowConfig struct {
	Format string
}

// NewConversationShowConfig creates a new ConversationShowConfig with default values
func NewConversationShowConfig() *ConversationShowConfig {
	return &ConversationShowConfig{
		Format: "text",
	}
}

// ConversationDeleteConfig holds configuration for the conversation delete command
type ConversationDeleteConfig struct {
	NoConfirm bool
}

// NewConversationDeleteConfig creates a new ConversationDeleteConfig with default values
func NewConversationDeleteConfig() *ConversationDeleteConfig {
	return &ConversationDeleteConfig{}
}

var conversationCmd = &cobra.Command{
	Use:   "conversation",
	Short: "Manage saved conversations",
	Long:  `List, inspect and delete saved conversations.`,
}

var conversationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getConversationListConfigFromFlags(cmd)
		listConversationsCmd(ctx, config)
	},
}

var conversationShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a saved conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getConversationShowConfigFromFlags(cmd)
		showConversationCmd(ctx, args[0], config)
	},
}

var conversationDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getConversationDeleteConfigFromFlags(cmd)
		deleteConversationCmd(ctx, args[0], config)
	},
}

func init() {
	listDefaults := NewConversationListConfig()
	conversationListCmd.Flags().String("start", listDefaults.StartDate, "Filter conversations created after this date (YYYY-MM-DD)")
	conversationListCmd.Flags().String("end", listDefaults.EndDate, "Filter conversations created before this date (YYYY-MM-DD)")
	conversationListCmd.Flags().String("search", listDefaults.Search, "Search in first message or summary")
	conversationListCmd.Flags().String("provider", listDefaults.Provider, "Filter by provider (anthropic, openai)")
	conversationListCmd.Flags().Int("limit", listDefaults.Limit, "Maximum number of conversations to list")
	conversationListCmd.Flags().Int("offset", listDefaults.Offset, "Offset for pagination")
	conversationListCmd.Flags().String("sort-by", listDefaults.SortBy, "Sort by field (updatedAt, createdAt, messageCount)")
	conversationListCmd.Flags().String("sort-order", listDefaults.SortOrder, "Sort order (asc, desc)")
	conversationListCmd.Flags().Bool("json", listDefaults.JSONOutput, "Output in JSON format")

	showDefaults := NewConversationShowConfig()
	conversationShowCmd.Flags().String("format", showDefaults.Format, "Output format (text, json, raw)")

	deleteDefaults := NewConversationDeleteConfig()
	conversationDeleteCmd.Flags().Bool("no-confirm", deleteDefaults.NoConfirm, "Skip the confirmation prompt")

	conversationCmd.AddCommand(conversationListCmd)
	conversationCmd.AddCommand(conversationShowCmd)
	conversationCmd.AddCommand(conversationDeleteCmd)
	rootCmd.AddCommand(conversationCmd)
}

// getConversationListConfigFromFlags extracts list configuration from command flags
func getConversationListConfigFromFlags(cmd *cobra.Command) *ConversationListConfig {
	config := NewConversationListConfig()

	if startDate, err := cmd.Flags().GetString("start"); err == nil {
		config.StartDate = startDate
	}
	if endDate, err := cmd.Flags().GetString("end"); err == nil {
		config.EndDate = endDate
	}
	if search, err := cmd.Flags().GetString("search"); err == nil {
		config.Search = search
	}
	if provider, err := cmd.Flags().GetString("provider"); err == nil {
		config.Provider = provider
	}
	if limit, err := cmd.Flags().GetInt("limit"); err == nil {
		config.Limit = limit
	}
	if offset, err := cmd.Flags().GetInt("offset"); err == nil {
		config.Offset = offset
	}
	if sortBy, err := cmd.Flags().GetString("sort-by"); err == nil {
		config.SortBy = sortBy
	}
	if sortOrder, err := cmd.Flags().GetString("sort-order"); err == nil {
		config.SortOrder = sortOrder
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

// getConversationShowConfigFromFlags extracts show configuration from command flags
func getConversationShowConfigFromFlags(cmd *cobra.Command) *ConversationShowConfig {
	config := NewConversationShowConfig()

	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}

	return config
}

// getConversationDeleteConfigFromFlags extracts delete configuration from command flags
func getConversationDeleteConfigFromFlags(cmd *cobra.Command) *ConversationDeleteConfig {
	config := NewConversationDeleteConfig()

	if noConfirm, err := cmd.Flags().GetBool("no-confirm"); err == nil {
		config.NoConfirm = noConfirm
	}

	return config
}

// OutputFormat defines the format of the output
type OutputFormat int

const (
	TableFormat OutputFormat = iota
	JSONFormat
)

// ConversationListOutput represents the output for conversation list
type ConversationListOutput struct {
	Conversations []ConversationSummaryOutput
	Format        OutputFormat
}

// ConversationSummaryOutput represents a single conversation summary for output
type ConversationSummaryOutput struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	MessageCount   int       `json:"message_count"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	InjectedTokens int       `json:"injected_tokens"`
	Preview        string    `json:"preview"`
}

// NewConversationListOutput creates a new ConversationListOutput
func NewConversationListOutput(summaries []convtypes.ConversationSummary, format OutputFormat) *ConversationListOutput {
	output := &ConversationListOutput{
		Conversations: make([]ConversationSummaryOutput, 0, len(summaries)),
		Format:        format,
	}

	for _, summary := range summaries {
		// Prefer the stored summary over the first message
		preview := summary.FirstMessage
		if summary.Summary != "" {
			preview = summary.Summary
		}

		output.Conversations = append(output.Conversations, ConversationSummaryOutput{
			ID:             summary.ID,
			CreatedAt:      summary.CreatedAt,
			UpdatedAt:      summary.UpdatedAt,
			MessageCount:   summary.MessageCount,
			Provider:       summary.Provider,
			Model:          summary.Model,
			InjectedTokens: summary.InjectedTokens,
			Preview:        preview,
		})
	}

	return output
}

// Render formats and renders the conversation list to the specified writer
func (o *ConversationListOutput) Render(w io.Writer) error {
	if o.Format == JSONFormat {
		return o.renderJSON(w)
	}
	return o.renderTable(w)
}

// renderJSON renders the output in JSON format
func (o *ConversationListOutput) renderJSON(w io.Writer) error {
	type jsonOutput struct {
		Conversations []ConversationSummaryOutput `json:"conversations"`
	}

	jsonData, err := json.MarshalIndent(jsonOutput{Conversations: o.Conversations}, "", "  ")
	if err != nil {
		return fmt.Errorf("error generating JSON output: %v", err)
	}

	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// renderTable renders the output in table format
func (o *ConversationListOutput) renderTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tUpdated\tMessages\tProvider\tInjected\tSummary")
	fmt.Fprintln(tw, "----\t-------\t--------\t--------\t--------\t-------")

	for _, summary := range o.Conversations {
		// Truncate long previews
		preview := summary.Preview
		if len(preview) > 60 {
			preview = strings.TrimSpace(preview[:57]) + "..."
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\n",
			summary.ID,
			summary.UpdatedAt.Format(time.RFC3339),
			summary.MessageCount,
			summary.Provider,
			summary.InjectedTokens,
			preview,
		)
	}

	return tw.Flush()
}

// listConversationsCmd displays a list of saved conversations with query options
func listConversationsCmd(ctx context.Context, config *ConversationListConfig) {
	store, err := conversations.New(ctx)
	if err != nil {
		presenter.Error(err, "Failed to initialize conversation store")
		os.Exit(1)
	}
	defer store.Close()

	options := convtypes.QueryOptions{
		SearchTerm: config.Search,
		Provider:   config.Provider,
		Limit:      config.Limit,
		Offset:     config.Offset,
		SortBy:     config.SortBy,
		SortOrder:  config.SortOrder,
	}

	if config.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", config.StartDate)
		if err != nil {
			presenter.Error(err, "Invalid start date format. Please use YYYY-MM-DD")
			os.Exit(1)
		}
		options.StartDate = &startDate
	}

	if config.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", config.EndDate)
		if err != nil {
			presenter.Error(err, "Invalid end date format. Please use YYYY-MM-DD")
			os.Exit(1)
		}
		// Set to end of day
		endDate = endDate.Add(24*time.Hour - time.Second)
		options.EndDate = &endDate
	}

	result, err := store.List(ctx, options)
	if err != nil {
		presenter.Error(err, "Failed to list conversations")
		os.Exit(1)
	}

	summaries := result.ConversationSummaries
	if len(summaries) == 0 {
		presenter.Info("No conversations found matching your criteria.")
		return
	}

	format := TableFormat
	if config.JSONOutput {
		format = JSONFormat
	}

	output := NewConversationListOutput(summaries, format)
	if err := output.Render(os.Stdout); err != nil {
		presenter.Error(err, "Failed to render conversation list")
		os.Exit(1)
	}
}

// showConversationCmd displays a specific conversation
func showConversationCmd(ctx context.Context, id string, config *ConversationShowConfig) {
	store, err := conversations.New(ctx)
	if err != nil {
		presenter.Error(err, "Failed to initialize conversation store")
		os.Exit(1)
	}
	defer store.Close()

	record, err := store.Load(ctx, id)
	if err != nil {
		presenter.Error(err, "Failed to load conversation")
		os.Exit(1)
	}

	messages, err := record.Messages()
	if err != nil {
		presenter.Error(err, "Failed to parse conversation messages")
		os.Exit(1)
	}

	switch config.Format {
	case "raw":
		// Output the raw messages as stored
		fmt.Println(string(record.RawMessages))
	case "json":
		outputJSON, err := json.MarshalIndent(messages, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to generate JSON output")
			os.Exit(1)
		}
		fmt.Println(string(outputJSON))
	case "text":
		displayConversation(messages)
		displayInjections(record.Injections)
	default:
		presenter.Error(fmt.Errorf("unsupported format: %s", config.Format), "Unknown format. Supported formats are raw, json, and text")
		os.Exit(1)
	}
}

// displayConversation renders the messages in a readable text format
func displayConversation(messages []llmtypes.Message) {
	for i, msg := range messages {
		// Add a separator between messages
		if i > 0 {
			presenter.Separator()
		}

		roleLabel := ""
		switch msg.Role {
		case "user":
			roleLabel = "You"
		case "assistant":
			roleLabel = "Assistant"
		default:
			// Capitalize first letter of role
			if len(msg.Role) > 0 {
				roleLabel = strings.ToUpper(msg.Role[:1]) + msg.Role[1:]
			} else {
				roleLabel = msg.Role
			}
		}

		presenter.Section(roleLabel)
		fmt.Printf("%s\n", msg.Content)
	}
}

// displayInjections summarizes what skill context each turn received
func displayInjections(injections []convtypes.InjectionRecord) {
	if len(injections) == 0 {
		return
	}

	presenter.Separator()
	presenter.Section("Skill Injections")
	for i, injection := range injections {
		skills := "none"
		if len(injection.Skills) > 0 {
			skills = strings.Join(injection.Skills, ", ")
		}
		presenter.Info(fmt.Sprintf("Turn %d: tier=%s skills=%s ~%d tokens", i+1, injection.Tier, skills, injection.EstimatedTokens))
	}
}

// deleteConversationCmd deletes a specific conversation
func deleteConversationCmd(ctx context.Context, id string, config *ConversationDeleteConfig) {
	store, err := conversations.New(ctx)
	if err != nil {
		presenter.Error(err, "Failed to initialize conversation store")
		os.Exit(1)
	}
	defer store.Close()

	// If no-confirm flag is not set, prompt for confirmation
	if !config.NoConfirm {
		response := presenter.Prompt(fmt.Sprintf("Are you sure you want to delete conversation %s?", id), "y", "N")

		if response != "y" && response != "Y" {
			presenter.Info("Deletion cancelled.")
			return
		}
	}

	if err := store.Delete(ctx, id); err != nil {
		presenter.Error(err, "Failed to delete conversation")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Conversation %s deleted successfully", id))
}
