// Package openai implements the Thread interface for OpenAI and
// OpenAI-compatible APIs.
package openai

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
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

const apiKeyEnvVar = "OPENAI_API_KEY"

// Thread implements the llm Thread interface using OpenAI's chat
// completion API.
type Thread struct {
	client         *openai.Client
	config         llmtypes.Config
	messages       []openai.ChatCompletionMessage
	records        []llmtypes.Message
	usage          *llmtypes.Usage
	conversationID string
	mu             sync.Mutex
}

// NewOpenAIThread creates a new thread backed by OpenAI's API. The
// OPENAI_API_BASE environment variable switches the endpoint to any
// OpenAI-compatible server.
func NewOpenAIThread(config llmtypes.Config) (*Thread, error) {
	// Apply defaults if not provided
	if config.Model == "" {
		config.Model = "gpt-4.1"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 8192
	}

	if os.Getenv(apiKeyEnvVar) == "" {
		return nil, errors.Errorf("%s environment variable is required", apiKeyEnvVar)
	}

	clientConfig := openai.DefaultConfig(os.Getenv(apiKeyEnvVar))
	if baseURL := os.Getenv("OPENAI_API_BASE"); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &Thread{
		client:         openai.NewClientWithConfig(clientConfig),
		config:         config,
		conversationID: convtypes.GenerateID(),
		usage:          &llmtypes.Usage{},
	}, nil
}

// Provider returns the provider name for this thread.
func (t *Thread) Provider() string {
	return "openai"
}

func (t *Thread) addUserMessage(message string) {
	t.messages = append(t.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
	t.records = append(t.records, llmtypes.Message{Role: "user", Content: message})
}

// SendMessage sends a message to the LLM and processes the response
func (t *Thread) SendMessage(
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

	// System messages are rebuilt per send so injected context tracks
	// the current user message.
	requestMessages := make([]openai.ChatCompletionMessage, 0, len(t.messages)+2)
	requestMessages = append(requestMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: sysprompt.SystemPrompt(t.config.Model),
	})
	if opt.InjectedContext != "" {
		requestMessages = append(requestMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: opt.InjectedContext,
		})
	}
	requestMessages = append(requestMessages, t.messages...)

	requestParams := openai.ChatCompletionRequest{
		Model:     t.config.Model,
		Messages:  requestMessages,
		MaxTokens: t.config.MaxTokens,
	}

	telemetry.AddEvent(ctx, "api_call_start",
		attribute.String("model", t.config.Model),
		attribute.Int("max_tokens", t.config.MaxTokens),
	)

	apiStartTime := time.Now()
	response, err := t.createChatCompletionWithRetry(ctx, requestParams)
	if err != nil {
		return "", errors.Wrap(err, "error sending message to OpenAI")
	}

	telemetry.AddEvent(ctx, "api_call_complete",
		attribute.Int("prompt_tokens", response.Usage.PromptTokens),
		attribute.Int("completion_tokens", response.Usage.CompletionTokens),
	)

	t.updateUsage(response.Usage)
	usage.LogLLMUsage(ctx, t.GetUsage(), t.config.Model, apiStartTime, injection.EstimateTokens(opt.InjectedContext))

	if len(response.Choices) == 0 {
		return "", errors.New("no response choices returned from OpenAI")
	}

	assistantMessage := response.Choices[0].Message
	t.messages = append(t.messages, assistantMessage)

	if assistantMessage.ReasoningContent != "" {
		handler.HandleThinking(assistantMessage.ReasoningContent)
	}
	if assistantMessage.Content != "" {
		handler.HandleText(assistantMessage.Content)
		finalOutput = assistantMessage.Content
	}
	t.records = append(t.records, llmtypes.Message{Role: "assistant", Content: finalOutput})

	handler.HandleDone()
	return finalOutput, nil
}

func (t *Thread) createChatCompletionWithRetry(ctx context.Context, requestParams openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var response openai.ChatCompletionResponse
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
			var apiErr error
			response, apiErr = t.client.CreateChatCompletion(ctx, requestParams)
			if apiErr != nil {
				originalErrors = append(originalErrors, apiErr)
			}
			return apiErr
		},
		retry.RetryIf(isRetryableError),
		retry.Attempts(uint(retryConfig.Attempts)),
		retry.Delay(initialDelay),
		retry.DelayType(delayType),
		retry.MaxDelay(maxDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).WithField("max_attempts", retryConfig.Attempts).Warn("retrying OpenAI API call")
		}),
	)

	if err != nil && len(originalErrors) > 0 {
		return response, errors.Wrapf(err, "all %d retry attempts failed, original errors: %v", len(originalErrors), originalErrors)
	}

	return response, err
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		statusCode := apiErr.HTTPStatusCode
		return statusCode == 429 || statusCode >= 500
	}

	var httpErr *openai.RequestError
	if errors.As(err, &httpErr) {
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return false
}

func (t *Thread) updateUsage(usage openai.Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.InputTokens += usage.PromptTokens
	t.usage.OutputTokens += usage.CompletionTokens
}

// GetUsage returns the current token usage for the thread
func (t *Thread) GetUsage() llmtypes.Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.usage
}

// GetConfig returns the thread's resolved configuration
func (t *Thread) GetConfig() llmtypes.Config {
	return t.config
}

// GetMessages returns the exchange history in provider-neutral form.
func (t *Thread) GetMessages() []llmtypes.Message {
	return t.records
}

// GetConversationID returns the current conversation ID
func (t *Thread) GetConversationID() string {
	return t.conversationID
}

// SetConversationID sets the conversation ID
func (t *Thread) SetConversationID(id string) {
	t.conversationID = id
}
