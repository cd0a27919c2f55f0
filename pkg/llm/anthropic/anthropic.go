// Package anthropic implements the Thread interface on top of
// Anthropic's Claude API.
package anthropic

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ipdelete/agent-base/pkg/logger"
	"github.com/ipdelete/agent-base/pkg/skills/injection"
	"github.com/ipdelete/agent-base/pkg/sysprompt"
	"github.com/ipdelete/agent-base/pkg/telemetry"
	convtypes "github.com/ipdelete/agent-base/pkg/types/conversations"
	llmtypes "github.com/ipdelete/agent-base/pkg/types/llm"
	"github.com/ipdelete/agent-base/pkg/usage"
)

const apiKeyEnvVar = "ANTHROPIC_API_KEY"

// AnthropicThread implements the Thread interface using Anthropic's
// Claude API.
type AnthropicThread struct {
	client         anthropic.Client
	config         llmtypes.Config
	messages       []anthropic.MessageParam
	records        []llmtypes.Message
	usage          *llmtypes.Usage
	conversationID string
	mu             sync.Mutex
}

// NewAnthropicThread creates a new thread backed by Anthropic's Claude API.
func NewAnthropicThread(config llmtypes.Config) (*AnthropicThread, error) {
	// Apply defaults if not provided
	if config.Model == "" {
		config.Model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 8192
	}

	if os.Getenv(apiKeyEnvVar) == "" {
		return nil, errors.Errorf("%s environment variable is required", apiKeyEnvVar)
	}

	return &AnthropicThread{
		client:         anthropic.NewClient(option.WithAPIKey(os.Getenv(apiKeyEnvVar))),
		config:         config,
		conversationID: convtypes.GenerateID(),
		usage:          &llmtypes.Usage{},
	}, nil
}

// Provider returns the provider name for this thread.
func (t *AnthropicThread) Provider() string {
	return "anthropic"
}

func (t *AnthropicThread) addUserMessage(message string) {
	t.messages = append(t.messages, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))
	t.records = append(t.records, llmtypes.Message{Role: "user", Content: message})
}

// SendMessage sends a message to the LLM and processes the response
func (t *AnthropicThread) SendMessage(
	ctx context.Context,
	message string,
	handler llmtypes.MessageHandler,
	opt llmtypes.MessageOpt,
) (finalOutput string, err error) {
	tracer := telemetry.Tracer("agentbase.llm")
	ctx, span := tracer.Start(ctx, "llm.send_message", trace.WithAttributes(
		attribute.String("provider", t.Provider()),
		attribute.String("model", t.config.Model),
		attribute.Bool("injected_context", opt.InjectedContext != ""),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	t.addUserMessage(message)

	system := []anthropic.TextBlockParam{
		{Text: sysprompt.SystemPrompt(t.config.Model)},
	}
	if opt.InjectedContext != "" {
		system = append(system, anthropic.TextBlockParam{Text: opt.InjectedContext})
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(t.config.Model),
		MaxTokens: int64(t.config.MaxTokens),
		System:    system,
		Messages:  t.messages,
	}

	telemetry.AddEvent(ctx, "api_call_start",
		attribute.String("model", t.config.Model),
		attribute.Int("max_tokens", t.config.MaxTokens),
	)

	apiStartTime := time.Now()
	response, err := t.createMessageWithRetry(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "failed to send message to Anthropic")
	}

	telemetry.AddEvent(ctx, "api_call_complete",
		attribute.Int("input_tokens", int(response.Usage.InputTokens)),
		attribute.Int("output_tokens", int(response.Usage.OutputTokens)),
	)

	t.messages = append(t.messages, response.ToParam())
	t.updateUsage(response)
	usage.LogLLMUsage(ctx, t.GetUsage(), t.config.Model, apiStartTime, injection.EstimateTokens(opt.InjectedContext))

	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			handler.HandleText(variant.Text)
			finalOutput = variant.Text
		case anthropic.ThinkingBlock:
			handler.HandleThinking(variant.Thinking)
		}
	}
	t.records = append(t.records, llmtypes.Message{Role: "assistant", Content: finalOutput})

	handler.HandleDone()
	return finalOutput, nil
}

func (t *AnthropicThread) createMessageWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var response *anthropic.Message
	var originalErrors []error // Store all errors for better context

	retryConfig := t.config.Retry

	initialDelay := time.Duration(retryConfig.InitialDelay) * time.Millisecond
	maxDelay := time.Duration(retryConfig.MaxDelay) * time.Millisecond

	var delayType retry.DelayTypeFunc
	switch retryConfig.BackoffType {
	case "fixed":
		delayType = retry.FixedDelay
	case "exponential":
		fallthrough
	default:
		delayType = retry.BackOffDelay
	}

	err := retry.Do(
		func() error {
			resp, apiErr := t.client.Messages.New(ctx, params)
			if apiErr != nil {
				originalErrors = append(originalErrors, apiErr)
				return apiErr
			}
			response = resp
			return nil
		},
		retry.RetryIf(isRetryableError),
		retry.Attempts(uint(retryConfig.Attempts)),
		retry.Delay(initialDelay),
		retry.DelayType(delayType),
		retry.MaxDelay(maxDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).WithField("max_attempts", retryConfig.Attempts).Warn("retrying Anthropic API call")
		}),
	)

	if err != nil && len(originalErrors) > 0 {
		return nil, errors.Wrapf(err, "all %d retry attempts failed, original errors: %v", len(originalErrors), originalErrors)
	}

	return response, err
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		statusCode := apiErr.StatusCode
		return statusCode == 429 || statusCode >= 500
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Transport errors surface as plain url errors
	return true
}

func (t *AnthropicThread) updateUsage(response *anthropic.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.InputTokens += int(response.Usage.InputTokens)
	t.usage.OutputTokens += int(response.Usage.OutputTokens)
}

// GetUsage returns the current token usage for the thread
func (t *AnthropicThread) GetUsage() llmtypes.Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.usage
}

// GetConfig returns the thread's resolved configuration
func (t *AnthropicThread) GetConfig() llmtypes.Config {
	return t.config
}

// GetMessages returns the exchange history in provider-neutral form.
func (t *AnthropicThread) GetMessages() []llmtypes.Message {
	return t.records
}

// GetConversationID returns the current conversation ID
func (t *AnthropicThread) GetConversationID() string {
	return t.conversationID
}

// SetConversationID sets the conversation ID
func (t *AnthropicThread) SetConversationID(id string) {
	t.conversationID = id
}
