package execution

import (
	"context"
	"errors"
)

//go:generate go tool mockgen -source=engine.go -destination=engine_mocks_test.go -package=execution -mock_names=Engine=MockedEngine

// ErrEmptyResponse is returned when a backend completes without any text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Engine is the interface for sending one prompt to a language model
// backend and collecting its reply.
type Engine interface {
	// Initialize sets up the engine
	Initialize(ctx context.Context) error

	// Complete sends the prompt and waits for the full response
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Shutdown cleans up resources
	Shutdown(ctx context.Context) error
}

// CompletionRequest is a single prompt plus sampling parameters. Zero values
// mean "use the engine default".
type CompletionRequest struct {
	Prompt      string
	ModelID     string
	Temperature *float32
	MaxTokens   int
}

// CompletionResponse is the text a backend returned for one request.
type CompletionResponse struct {
	Content    string
	ModelID    string
	DurationMs int64
	Cached     bool
}

// Float32 returns a pointer to v, for CompletionRequest.Temperature.
func Float32(v float32) *float32 {
	return &v
}
