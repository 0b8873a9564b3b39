package execution

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedEngine wraps an Engine so that Complete calls never exceed a
// fixed request rate. Initialize and Shutdown pass straight through.
type RateLimitedEngine struct {
	inner   Engine
	limiter *rate.Limiter
}

// NewRateLimitedEngine limits inner to perSecond requests with the given
// burst. A non-positive perSecond disables limiting.
func NewRateLimitedEngine(inner Engine, perSecond float64, burst int) *RateLimitedEngine {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEngine{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (e *RateLimitedEngine) Initialize(ctx context.Context) error {
	return e.inner.Initialize(ctx)
}

func (e *RateLimitedEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return e.inner.Complete(ctx, req)
}

func (e *RateLimitedEngine) Shutdown(ctx context.Context) error {
	return e.inner.Shutdown(ctx)
}
