package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestCopilotEngine(t *testing.T, model string) (*CopilotEngine, *MockcopilotClient, *MockcopilotSession) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockcopilotClient(ctrl)
	sessionMock := NewMockcopilotSession(ctrl)

	engine := NewCopilotEngine(model, &CopilotEngineOptions{
		NewCopilotClient: func(clientOptions *copilot.ClientOptions) copilotClient { return clientMock },
	})
	return engine, clientMock, sessionMock
}

func assistantMessage(text string) copilot.SessionEvent {
	return copilot.SessionEvent{Type: copilot.AssistantMessage, Data: copilot.Data{Content: &text}}
}

func TestCopilotComplete_CollectsAssistantMessages(t *testing.T) {
	engine, clientMock, sessionMock := newTestCopilotEngine(t, "gpt-4o-mini")

	unregisterCount := 0
	var handler copilot.SessionEventHandler

	clientMock.EXPECT().Start(gomock.Any())
	clientMock.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg *copilot.SessionConfig) (copilotSession, error) {
			require.Equal(t, "this-model-wins", cfg.Model)
			require.NotNil(t, cfg.OnPermissionRequest)
			return sessionMock, nil
		})
	clientMock.EXPECT().Stop()

	sessionMock.EXPECT().On(gomock.Any()).DoAndReturn(func(h copilot.SessionEventHandler) func() {
		handler = h
		return func() { unregisterCount++ }
	})
	sessionMock.EXPECT().SendAndWait(gomock.Any(), copilot.MessageOptions{Prompt: "evaluate"}).
		DoAndReturn(func(context.Context, copilot.MessageOptions) (*copilot.SessionEvent, error) {
			handler(copilot.SessionEvent{Type: copilot.UserMessage})
			handler(assistantMessage("Decision: ACCEPT"))
			handler(assistantMessage("Primary Reason: Clean record"))
			return &copilot.SessionEvent{}, nil
		})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	require.NoError(t, engine.Initialize(ctx))

	resp, err := engine.Complete(ctx, &CompletionRequest{Prompt: "evaluate", ModelID: "this-model-wins"})
	require.NoError(t, err)
	require.Equal(t, "Decision: ACCEPT\nPrimary Reason: Clean record", resp.Content)
	require.Equal(t, "this-model-wins", resp.ModelID)
	require.Equal(t, 1, unregisterCount)

	require.NoError(t, engine.Shutdown(context.Background()))
}

func TestCopilotComplete_StartsOnce(t *testing.T) {
	engine, clientMock, sessionMock := newTestCopilotEngine(t, "default-model")

	clientMock.EXPECT().Start(gomock.Any()).Times(1)
	clientMock.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Times(2).Return(sessionMock, nil)

	var handler copilot.SessionEventHandler
	sessionMock.EXPECT().On(gomock.Any()).Times(2).DoAndReturn(func(h copilot.SessionEventHandler) func() {
		handler = h
		return func() {}
	})
	sessionMock.EXPECT().SendAndWait(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(context.Context, copilot.MessageOptions) (*copilot.SessionEvent, error) {
			handler(assistantMessage("Decision: DENY"))
			return &copilot.SessionEvent{}, nil
		})

	for range 2 {
		resp, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "p"})
		require.NoError(t, err)
		require.Equal(t, "default-model", resp.ModelID)
	}
}

func TestCopilotComplete_Errors(t *testing.T) {
	t.Run("nil request", func(t *testing.T) {
		engine, _, _ := newTestCopilotEngine(t, "m")
		_, err := engine.Complete(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("start failure", func(t *testing.T) {
		engine, clientMock, _ := newTestCopilotEngine(t, "m")
		clientMock.EXPECT().Start(gomock.Any()).Return(errors.New("no cli"))

		_, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "p"})
		require.ErrorContains(t, err, "copilot failed to start")
	})

	t.Run("send failure", func(t *testing.T) {
		engine, clientMock, sessionMock := newTestCopilotEngine(t, "m")
		clientMock.EXPECT().Start(gomock.Any())
		clientMock.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(sessionMock, nil)
		sessionMock.EXPECT().On(gomock.Any()).Return(func() {})
		sessionMock.EXPECT().SendAndWait(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
		sessionMock.EXPECT().SessionID().Return("session-1")

		_, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "p"})
		require.ErrorContains(t, err, "copilot session session-1: boom")
	})

	t.Run("empty response", func(t *testing.T) {
		engine, clientMock, sessionMock := newTestCopilotEngine(t, "m")
		clientMock.EXPECT().Start(gomock.Any())
		clientMock.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(sessionMock, nil)
		sessionMock.EXPECT().On(gomock.Any()).Return(func() {})
		sessionMock.EXPECT().SendAndWait(gomock.Any(), gomock.Any()).Return(&copilot.SessionEvent{}, nil)

		_, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "p"})
		require.ErrorIs(t, err, ErrEmptyResponse)
	})
}
