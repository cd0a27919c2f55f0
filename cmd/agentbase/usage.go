package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ipdelete/agent-base/pkg/conversations"
	"github.com/ipdelete/agent-base/pkg/presenter"
	convtypes "github.com/ipdelete/agent-base/pkg/types/conversations"
	"github.com/ipdelete/agent-base/pkg/usage"
)

// UsageConfig holds configuration for the usage command
type UsageConfig struct {
	Since  string
	Until  string
	Format string
}

// NewUsageConfig creates a new UsageConfig with default values
func NewUsageConfig() *UsageConfig {
	return &UsageConfig{
		Since:  "10d", // Default to past 10 days
		Until:  "",
		Format: "table",
	}
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage statistics",
	Long: `Show token usage statistics including input tokens, output tokens, and
the token overhead of injected skill context.

By default shows usage for the past 10 days, broken down by day.

Examples:
  agentbase usage                               # Past 10 days
  agentbase usage --since 2026-08-01            # Since specific date
  agentbase usage --since 1d                    # Since 1 day ago
  agentbase usage --since 1w                    # Since 1 week ago
  agentbase usage --since 1w --until 2026-08-01 # Date range
`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getUsageConfigFromFlags(cmd)
		runUsageCmd(ctx, config)
	},
}

func init() {
	defaults := NewUsageConfig()
	usageCmd.Flags().String("since", defaults.Since, "Show usage since this time (e.g., 2026-08-01, 1d, 1w)")
	usageCmd.Flags().String("until", defaults.Until, "Show usage until this time (e.g., 2026-08-01)")
	usageCmd.Flags().String("format", defaults.Format, "Output format: table or json")

	rootCmd.AddCommand(usageCmd)
}

// getUsageConfigFromFlags extracts usage configuration from command flags
func getUsageConfigFromFlags(cmd *cobra.Command) *UsageConfig {
	config := NewUsageConfig()

	if since, err := cmd.Flags().GetString("since"); err == nil {
		config.Since = since
	}
	if until, err := cmd.Flags().GetString("until"); err == nil {
		config.Until = until
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}

	return config
}

// parseTimeSpec parses time specifications like "1d", "1w", "2026-08-01"
func parseTimeSpec(spec string) (time.Time, error) {
	return parseTimeSpecWithClock(spec, time.Now)
}

// parseTimeSpecWithClock parses time specifications with a custom clock function for testing
func parseTimeSpecWithClock(spec string, now func() time.Time) (time.Time, error) {
	if spec == "" {
		return time.Time{}, nil
	}

	// Try parsing as absolute date first (YYYY-MM-DD)
	if t, err := time.Parse("2006-01-02", spec); err == nil {
		return t, nil
	}

	// Try parsing as relative time (1d, 1w, etc.)
	re := regexp.MustCompile(`^(\d+)([dhw])$`)
	matches := re.FindStringSubmatch(spec)
	if len(matches) != 3 {
		return time.Time{}, fmt.Errorf("invalid time specification: %s (expected format: YYYY-MM-DD, 1d, 1w, etc.)", spec)
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number in time specification: %s", matches[1])
	}

	unit := matches[2]
	currentTime := now()

	switch unit {
	case "d":
		return currentTime.AddDate(0, 0, -amount), nil
	case "h":
		return currentTime.Add(-time.Duration(amount) * time.Hour), nil
	case "w":
		return currentTime.AddDate(0, 0, -amount*7), nil
	default:
		return time.Time{}, fmt.Errorf("invalid time unit: %s (supported: d, h, w)", unit)
	}
}

// runUsageCmd executes the usage command
func runUsageCmd(ctx context.Context, config *UsageConfig) {
	var startTime, endTime time.Time
	var err error

	if config.Since != "" {
		startTime, err = parseTimeSpec(config.Since)
		if err != nil {
			presenter.Error(err, "Invalid since time specification")
			os.Exit(1)
		}
		// Set to beginning of day
		startTime = startTime.Truncate(24 * time.Hour)
	}

	if config.Until != "" {
		endTime, err = parseTimeSpec(config.Until)
		if err != nil {
			presenter.Error(err, "Invalid until time specification")
			os.Exit(1)
		}
		// Set to end of day
		endTime = endTime.Truncate(24 * time.Hour).Add(24*time.Hour - time.Second)
	}

	store, err := conversations.New(ctx)
	if err != nil {
		presenter.Error(err, "Failed to initialize conversation store")
		os.Exit(1)
	}
	defer store.Close()

	// Summaries carry denormalized usage, so no per-record loads are
	// needed here.
	options := convtypes.QueryOptions{
		SortBy:    "updatedAt",
		SortOrder: "desc",
	}
	if !startTime.IsZero() {
		options.StartDate = &startTime
	}
	if !endTime.IsZero() {
		options.EndDate = &endTime
	}

	result, err := store.List(ctx, options)
	if err != nil {
		presenter.Error(err, "Failed to query conversations")
		os.Exit(1)
	}

	if len(result.ConversationSummaries) == 0 {
		presenter.Info("No conversations found in the specified time range.")
		return
	}

	stats := usage.CalculateUsageStats(result.ConversationSummaries, startTime, endTime)

	if config.Format == "json" {
		displayUsageJSON(os.Stdout, stats)
	} else {
		displayUsageTable(os.Stdout, stats)
	}
}

// displayUsageTable displays usage statistics in table format
func displayUsageTable(w io.Writer, stats *usage.UsageStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Date\tConversations\tInput Tokens\tOutput Tokens\tInjected Tokens\tTotal")
	fmt.Fprintln(tw, "----\t-------------\t------------\t-------------\t---------------\t-----")

	for _, daily := range stats.Daily {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			daily.Date.Format("2006-01-02"),
			daily.Conversations,
			usage.FormatNumber(daily.Usage.InputTokens),
			usage.FormatNumber(daily.Usage.OutputTokens),
			usage.FormatNumber(daily.InjectedTokens),
			usage.FormatNumber(daily.Usage.TotalTokens()),
		)
	}

	fmt.Fprintln(tw, "----\t-------------\t------------\t-------------\t---------------\t-----")
	fmt.Fprintf(tw, "TOTAL\t%d\t%s\t%s\t%s\t%s\n",
		stats.TotalConversations,
		usage.FormatNumber(stats.Total.InputTokens),
		usage.FormatNumber(stats.Total.OutputTokens),
		usage.FormatNumber(stats.TotalInjectedTokens),
		usage.FormatNumber(stats.Total.TotalTokens()),
	)

	tw.Flush()
}

// UsageJSONOutput represents the JSON structure for usage statistics
type UsageJSONOutput struct {
	Daily []DailyUsageJSON `json:"daily"`
	Total TotalUsageJSON   `json:"total"`
}

// DailyUsageJSON represents daily usage in JSON format
type DailyUsageJSON struct {
	Date           string `json:"date"`
	Conversations  int    `json:"conversations"`
	InputTokens    int    `json:"input_tokens"`
	OutputTokens   int    `json:"output_tokens"`
	InjectedTokens int    `json:"injected_tokens"`
	TotalTokens    int    `json:"total_tokens"`
}

// TotalUsageJSON represents total usage in JSON format
type TotalUsageJSON struct {
	Conversations  int `json:"conversations"`
	InputTokens    int `json:"input_tokens"`
	OutputTokens   int `json:"output_tokens"`
	InjectedTokens int `json:"injected_tokens"`
	TotalTokens    int `json:"total_tokens"`
}

// displayUsageJSON displays usage statistics in JSON format
func displayUsageJSON(w io.Writer, stats *usage.UsageStats) {
	output := UsageJSONOutput{
		Daily: make([]DailyUsageJSON, len(stats.Daily)),
		Total: TotalUsageJSON{
			Conversations:  stats.TotalConversations,
			InputTokens:    stats.Total.InputTokens,
			OutputTokens:   stats.Total.OutputTokens,
			InjectedTokens: stats.TotalInjectedTokens,
			TotalTokens:    stats.Total.TotalTokens(),
		},
	}

	for i, daily := range stats.Daily {
		output.Daily[i] = DailyUsageJSON{
			Date:           daily.Date.Format("2006-01-02"),
			Conversations:  daily.Conversations,
			InputTokens:    daily.Usage.InputTokens,
			OutputTokens:   daily.Usage.OutputTokens,
			InjectedTokens: daily.InjectedTokens,
			TotalTokens:    daily.Usage.TotalTokens(),
		}
	}

	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		presenter.Error(err, "Failed to generate JSON output")
		os.Exit(1)
	}

	fmt.Fprintln(w, string(jsonData))
}
