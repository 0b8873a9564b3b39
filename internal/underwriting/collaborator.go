package underwriting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/execution"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/template"
)

//go:generate go tool mockgen -source=collaborator.go -destination=collaborator_mocks_test.go -package=underwriting
//go:generate go tool mockgen -destination=engine_mocks_test.go -package=underwriting -mock_names=Engine=MockedEngine github.com/jconnelly/underwriting-ai-agent-demos/internal/execution Engine

// Collaborator turns rule text and applicant text into a decision answer.
// Retries, rate limiting and authentication are its concern.
type Collaborator interface {
	Invoke(ctx context.Context, rulesText, applicantText string) (string, error)
}

// ModelParameters are the per-variant model settings decoded from a
// variant's parameters map.
type ModelParameters struct {
	Model       string   `mapstructure:"model"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
}

// PromptedCollaborator renders a prompt template and sends it to an engine.
type PromptedCollaborator struct {
	prompt *template.Prompt
	engine execution.Engine
	params ModelParameters
}

// NewPromptedCollaborator binds a parsed template to an engine.
func NewPromptedCollaborator(prompt *template.Prompt, engine execution.Engine, params ModelParameters) *PromptedCollaborator {
	return &PromptedCollaborator{prompt: prompt, engine: engine, params: params}
}

// TemplateName returns the name of the bound prompt template.
func (c *PromptedCollaborator) TemplateName() string {
	return c.prompt.Name()
}

func (c *PromptedCollaborator) Invoke(ctx context.Context, rulesText, applicantText string) (string, error) {
	text, err := c.prompt.Render(&template.Context{Rules: rulesText, ApplicantData: applicantText})
	if err != nil {
		return "", err
	}

	req := &execution.CompletionRequest{
		Prompt:    text,
		ModelID:   c.params.Model,
		MaxTokens: c.params.MaxTokens,
	}
	if c.params.Temperature != nil {
		req.Temperature = execution.Float32(float32(*c.params.Temperature))
	}

	resp, err := c.engine.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("completing prompt %q: %w", c.prompt.Name(), err)
	}

	slog.Debug("collaborator response", "template", c.prompt.Name(), "model", resp.ModelID, "cached", resp.Cached, "content", resp.Content)
	return resp.Content, nil
}
