package execution

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Defaults used when the caller does not override sampling parameters.
const (
	DefaultOpenAIModel       = "gpt-4"
	DefaultOpenAITemperature = float32(0.1)
	DefaultOpenAIMaxTokens   = 1000
)

// chatCompleter is the subset of [*openai.Client] used by OpenAIEngine.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIEngine sends prompts to the OpenAI chat completions API.
type OpenAIEngine struct {
	client       chatCompleter
	defaultModel string
}

// OpenAIOptions configures NewOpenAIEngine. Empty fields fall back to the
// OPENAI_API_KEY, OPENAI_MODEL and OPENAI_BASE_URL environment variables.
type OpenAIOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewOpenAIEngine creates an engine backed by go-openai.
func NewOpenAIEngine(opts OpenAIOptions) (*OpenAIEngine, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	model := opts.Model
	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	slog.Debug("Initializing OpenAI client", "model", model)
	return newOpenAIEngine(openai.NewClientWithConfig(cfg), model), nil
}

func newOpenAIEngine(client chatCompleter, model string) *OpenAIEngine {
	return &OpenAIEngine{client: client, defaultModel: model}
}

func (e *OpenAIEngine) Initialize(ctx context.Context) error {
	return ctx.Err()
}

// Complete sends the prompt as a single user message.
func (e *OpenAIEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to OpenAIEngine.Complete")
	}

	model := e.defaultModel
	if req.ModelID != "" {
		model = req.ModelID
	}

	temperature := DefaultOpenAITemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	maxTokens := DefaultOpenAIMaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature:         temperature,
		MaxCompletionTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}
	slog.Debug("Received response from OpenAI", "model", model, "finish_reason", resp.Choices[0].FinishReason)

	return &CompletionResponse{
		Content:    resp.Choices[0].Message.Content,
		ModelID:    model,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (e *OpenAIEngine) Shutdown(ctx context.Context) error {
	return nil
}
