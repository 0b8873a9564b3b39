package execution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRateLimitedEngine_PassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := NewMockedEngine(ctrl)

	req := &CompletionRequest{Prompt: "p"}
	inner.EXPECT().Initialize(gomock.Any()).Return(nil)
	inner.EXPECT().Complete(gomock.Any(), req).Return(&CompletionResponse{Content: "Decision: ACCEPT"}, nil)
	inner.EXPECT().Shutdown(gomock.Any()).Return(nil)

	engine := NewRateLimitedEngine(inner, 0, 0)
	require.NoError(t, engine.Initialize(context.Background()))

	resp, err := engine.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "Decision: ACCEPT", resp.Content)

	require.NoError(t, engine.Shutdown(context.Background()))
}

func TestRateLimitedEngine_WaitHonorsContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := NewMockedEngine(ctrl)
	inner.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(&CompletionResponse{Content: "x"}, nil).Times(1)

	// one token per hour: the second call cannot be served before the deadline
	engine := NewRateLimitedEngine(inner, 1.0/3600, 1)

	_, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = engine.Complete(ctx, &CompletionRequest{Prompt: "second"})
	require.ErrorContains(t, err, "waiting for rate limiter")
}
