// Package usage provides functionality for tracking and calculating usage
// statistics for LLM conversations including token counts, injected
// context overhead, and time-based analytics.
package usage

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ipdelete/agent-base/pkg/logger"
	convtypes "github.com/ipdelete/agent-base/pkg/types/conversations"
	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
)

// DailyUsage represents usage statistics for a single day
type DailyUsage struct {
	Date           time.Time
	Usage          llmtypes.Usage
	InjectedTokens int
	Conversations  int
}

// UsageStats represents aggregated usage statistics with daily breakdown and totals
type UsageStats struct {
	Daily               []DailyUsage
	Total               llmtypes.Usage
	TotalInjectedTokens int
	TotalConversations  int
}

// CalculateUsageStats aggregates conversation summaries into per-day usage
// within the specified time range, sorted newest first. A zero start or
// end time leaves that side of the range open.
func CalculateUsageStats(summaries []convtypes.ConversationSummary, startTime, endTime time.Time) *UsageStats {
	dailyMap := make(map[string]*DailyUsage)
	stats := &UsageStats{}

	for _, summary := range summaries {
		// UpdatedAt decides which day the conversation's usage lands on
		date := summary.UpdatedAt.Truncate(24 * time.Hour)

		if !startTime.IsZero() && date.Before(startTime) {
			continue
		}
		if !endTime.IsZero() && date.After(endTime) {
			continue
		}

		dateKey := date.Format("2006-01-02")
		if _, exists := dailyMap[dateKey]; !exists {
			dailyMap[dateKey] = &DailyUsage{Date: date}
		}

		daily := dailyMap[dateKey]
		daily.Usage.Add(summary.Usage)
		daily.InjectedTokens += summary.InjectedTokens
		daily.Conversations++

		stats.Total.Add(summary.Usage)
		stats.TotalInjectedTokens += summary.InjectedTokens
		stats.TotalConversations++
	}

	for _, daily := range dailyMap {
		stats.Daily = append(stats.Daily, *daily)
	}

	sort.Slice(stats.Daily, func(i, j int) bool {
		return stats.Daily[i].Date.After(stats.Daily[j].Date)
	})

	return stats
}

// FormatNumber formats large numbers with commas for readability
func FormatNumber(n int) string {
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// LogLLMUsage logs usage statistics for a completed exchange
func LogLLMUsage(ctx context.Context, usage llmtypes.Usage, model string, startTime time.Time, injectedTokens int) {
	fields := map[string]any{
		"model":           model,
		"input_tokens":    usage.InputTokens,
		"output_tokens":   usage.OutputTokens,
		"total_tokens":    usage.TotalTokens(),
		"injected_tokens": injectedTokens,
		"duration_ms":     time.Since(startTime).Milliseconds(),
	}

	logger.G(ctx).WithFields(fields).Info("LLM usage completed")
}
