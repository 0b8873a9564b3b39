package execution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotEngine sends prompts through the GitHub Copilot SDK. Each Complete
// call opens a fresh session so evaluations never share conversation state.
type CopilotEngine struct {
	defaultModelID string

	client copilotClient

	startOnce sync.Once
	startErr  error
}

// CopilotEngineOptions lets tests substitute the SDK client.
type CopilotEngineOptions struct {
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotEngine creates a CopilotEngine.
//   - defaultModelID - used if the request has no model ID. Can be blank, which means the copilot
//     CLI will choose its own fallback model.
func NewCopilotEngine(defaultModelID string, options *CopilotEngineOptions) *CopilotEngine {
	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	var client copilotClient
	if options == nil || options.NewCopilotClient == nil {
		client = newCopilotClient(copilotOptions)
	} else {
		client = options.NewCopilotClient(copilotOptions)
	}

	return &CopilotEngine{
		defaultModelID: defaultModelID,
		client:         client,
	}
}

func (e *CopilotEngine) Initialize(ctx context.Context) error {
	return ctx.Err()
}

// Complete sends the prompt and concatenates the assistant messages.
func (e *CopilotEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to CopilotEngine.Complete")
	}

	e.startOnce.Do(func() {
		// copilot's autostart misbehaves when several goroutines race to start it
		e.startErr = e.client.Start(ctx)
	})
	if e.startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", e.startErr)
	}

	modelID := e.defaultModelID
	if req.ModelID != "" {
		modelID = req.ModelID
	}

	start := time.Now()

	session, err := e.client.CreateSession(ctx, &copilot.SessionConfig{
		Model:               modelID,
		OnPermissionRequest: denyAllTools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	var (
		mu    sync.Mutex
		parts []string
	)
	unsubscribe := session.On(func(event copilot.SessionEvent) {
		logSessionEvent(event)
		if event.Type != copilot.AssistantMessage || event.Data.Content == nil {
			return
		}
		mu.Lock()
		parts = append(parts, *event.Data.Content)
		mu.Unlock()
	})
	defer unsubscribe()

	if _, err := session.SendAndWait(ctx, copilot.MessageOptions{Prompt: req.Prompt}); err != nil {
		return nil, fmt.Errorf("copilot session %s: %w", session.SessionID(), err)
	}

	mu.Lock()
	content := strings.Join(parts, "\n")
	mu.Unlock()

	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyResponse
	}

	return &CompletionResponse{
		Content:    content,
		ModelID:    modelID,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// Shutdown stops the SDK client.
func (e *CopilotEngine) Shutdown(ctx context.Context) error {
	if err := e.client.Stop(); err != nil {
		// Log but continue cleanup
		slog.Info("failed to stop client", "error", err)
	}
	return nil
}

// logSessionEvent writes SDK events at debug level.
func logSessionEvent(event copilot.SessionEvent) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{"type", event.Type}
	attrs = addIf(attrs, "content", event.Data.Content)
	attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)
	attrs = addIf(attrs, "toolName", event.Data.ToolName)
	attrs = addIf(attrs, "message", event.Data.Message)

	slog.Debug("copilot event", attrs...)
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name, *v)
	}
	return attrs
}

// denyAllTools refuses every tool request; underwriting decisions are made
// from the prompt text alone.
func denyAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	return copilot.PermissionRequestResult{Kind: "denied-by-rules"}, nil
}
