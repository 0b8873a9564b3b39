package underwriting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/dataset"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/execution"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/rules"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func fixedClock() time.Time { return refDate }

func testRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	return &rules.RuleSet{
		HardStops: &rules.Category{Rules: []rules.Rule{{RuleID: "HS001", Name: "Invalid License", Description: "License suspended"}}},
	}
}

func TestDecide_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	collab := NewMockCollaborator(ctrl)
	applicant := sample(t, "APP001")

	collab.EXPECT().
		Invoke(gomock.Any(), "HARD STOPS (Automatic Denial):\n- HS001: Invalid License - License suspended\n", FormatApplicant(applicant, refDate)).
		Return("Decision: ACCEPT\nPrimary Reason: Clean record\nTriggered Rules: AC001\nRisk Factors: None", nil)

	engine := NewEngine("standard", testRules(t), collab, WithClock(fixedClock))
	result := engine.Decide(context.Background(), applicant)

	assert.Equal(t, "APP001", result.ApplicantID)
	assert.Equal(t, "standard", result.VariantID)
	assert.Equal(t, models.DecisionAccept, result.Decision)
	assert.Equal(t, "Clean record", result.Reason)
	assert.Equal(t, []string{"AC001"}, result.TriggeredRules)
	assert.Empty(t, result.RiskFactors)
	assert.Equal(t, refDate, result.Timestamp)
	assert.Empty(t, result.Error)
	assert.Empty(t, result.RawResponse)
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, 0.0)
}

func TestDecide_CollaboratorFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	collab := NewMockCollaborator(ctrl)
	collab.EXPECT().Invoke(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("connection refused"))

	engine := NewEngine("liberal", testRules(t), collab, WithClock(fixedClock))
	result := engine.Decide(context.Background(), sample(t, "APP002"))

	assert.Equal(t, models.DecisionAdjudicate, result.Decision)
	assert.Equal(t, "System error: connection refused", result.Reason)
	assert.Equal(t, []string{models.SystemErrorFactor}, result.RiskFactors)
	assert.Empty(t, result.TriggeredRules)
	assert.Equal(t, "connection refused", result.Error)
	assert.True(t, result.Failed())
	assert.Equal(t, "APP002", result.ApplicantID)
	assert.Equal(t, "liberal", result.VariantID)
}

func TestDecide_NeverPanics(t *testing.T) {
	t.Run("nil applicant", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		engine := NewEngine("standard", testRules(t), NewMockCollaborator(ctrl))

		result := engine.Decide(context.Background(), nil)
		assert.Equal(t, models.DecisionAdjudicate, result.Decision)
		assert.Equal(t, "nil applicant", result.Error)
	})

	t.Run("collaborator panic", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		collab := NewMockCollaborator(ctrl)
		collab.EXPECT().Invoke(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string, string) (string, error) { panic("boom") })

		result := NewEngine("standard", testRules(t), collab).Decide(context.Background(), sample(t, "APP001"))
		assert.Equal(t, models.DecisionAdjudicate, result.Decision)
		assert.Equal(t, "collaborator panic: boom", result.Error)
		assert.Equal(t, "APP001", result.ApplicantID)
	})
}

func TestDecide_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	collab := NewMockCollaborator(ctrl)
	collab.EXPECT().Invoke(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

	engine := NewEngine("standard", testRules(t), collab, WithTimeout(10*time.Millisecond))
	result := engine.Decide(context.Background(), sample(t, "APP001"))

	assert.Equal(t, models.DecisionAdjudicate, result.Decision)
	assert.Contains(t, result.Error, context.DeadlineExceeded.Error())
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, 10.0)
}

func TestDecide_UnparseableKeepsRawResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	collab := NewMockCollaborator(ctrl)
	collab.EXPECT().Invoke(gomock.Any(), gomock.Any(), gomock.Any()).Return("I'd rather not say.", nil)

	result := NewEngine("standard", testRules(t), collab).Decide(context.Background(), sample(t, "APP001"))

	assert.Equal(t, models.DecisionAdjudicate, result.Decision)
	assert.Equal(t, DefaultReason, result.Reason)
	assert.Equal(t, "I'd rather not say.", result.RawResponse)
	assert.False(t, result.Failed())
}

func TestPromptedCollaborator_Invoke(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := NewMockedEngine(ctrl)

	prompt, err := template.Parse("inline", "RULES\n{{.Rules}}\nDATA\n{{.ApplicantData}}")
	require.NoError(t, err)

	temperature := 0.3
	engine.EXPECT().Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *execution.CompletionRequest) (*execution.CompletionResponse, error) {
			assert.Equal(t, "RULES\nr\nDATA\na", req.Prompt)
			assert.Equal(t, "gpt-4o", req.ModelID)
			assert.Equal(t, 500, req.MaxTokens)
			require.NotNil(t, req.Temperature)
			assert.InDelta(t, 0.3, *req.Temperature, 1e-6)
			return &execution.CompletionResponse{Content: "Decision: DENY"}, nil
		})

	c := NewPromptedCollaborator(prompt, engine, ModelParameters{Model: "gpt-4o", Temperature: &temperature, MaxTokens: 500})
	got, err := c.Invoke(context.Background(), "r", "a")
	require.NoError(t, err)
	assert.Equal(t, "Decision: DENY", got)
	assert.Equal(t, "inline", c.TemplateName())
}

func TestPromptedCollaborator_EngineError(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := NewMockedEngine(ctrl)
	engine.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(nil, execution.ErrEmptyResponse)

	prompt, err := template.Load("concise")
	require.NoError(t, err)

	_, err = NewPromptedCollaborator(prompt, engine, ModelParameters{}).Invoke(context.Background(), "r", "a")
	require.ErrorIs(t, err, execution.ErrEmptyResponse)
	assert.Contains(t, err.Error(), `completing prompt "concise"`)
}

func decideSamples(t *testing.T, rulesFile, templateName string) map[string]models.Decision {
	t.Helper()

	rs, err := rules.Load("../../config/rules/" + rulesFile)
	require.NoError(t, err)
	prompt, err := template.Load(templateName)
	require.NoError(t, err)

	collab := NewPromptedCollaborator(prompt, execution.NewMockEngine("mock"), ModelParameters{})
	engine := NewEngine(strings.TrimSuffix(rulesFile, ".json"), rs, collab, WithClock(fixedClock))

	out := map[string]models.Decision{}
	for _, a := range dataset.SampleApplicants() {
		result := engine.Decide(context.Background(), a)
		require.Empty(t, result.Error)
		out[a.ApplicantID] = result.Decision
	}
	return out
}

func TestDecide_OfflineEngineOnSamples(t *testing.T) {
	standard := decideSamples(t, "underwriting_rules_standard.json", "balanced")
	assert.Equal(t, map[string]models.Decision{
		"APP001": models.DecisionAccept,
		"APP002": models.DecisionAccept,
		"APP003": models.DecisionDeny,
		"APP004": models.DecisionDeny,
		"APP005": models.DecisionAdjudicate,
		"APP006": models.DecisionAdjudicate,
	}, standard)

	liberal := decideSamples(t, "underwriting_rules_liberal.json", "balanced")
	assert.Equal(t, map[string]models.Decision{
		"APP001": models.DecisionAccept,
		"APP002": models.DecisionAccept,
		"APP003": models.DecisionAdjudicate,
		"APP004": models.DecisionAdjudicate,
		"APP005": models.DecisionAccept,
		"APP006": models.DecisionAccept,
	}, liberal)
}
