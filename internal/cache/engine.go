package cache

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/execution"
)

// DefaultMemoryEntries bounds the in-memory layer when no size is given.
const DefaultMemoryEntries = 512

// Engine wraps an execution.Engine with a two-level response cache: a
// bounded in-memory LRU in front of the on-disk Cache. Replaying a cached
// response makes repeated comparisons reproducible and free.
type Engine struct {
	inner  execution.Engine
	name   string
	memory *lru.Cache[string, *Entry]
	disk   *Cache
}

// NewEngine creates a caching wrapper. name distinguishes backends that
// share a cache directory. disk may be nil for a memory-only cache.
func NewEngine(inner execution.Engine, name string, memoryEntries int, disk *Cache) (*Engine, error) {
	if memoryEntries <= 0 {
		memoryEntries = DefaultMemoryEntries
	}
	memory, err := lru.New[string, *Entry](memoryEntries)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	if disk == nil {
		disk = New("")
	}
	return &Engine{inner: inner, name: name, memory: memory, disk: disk}, nil
}

func (e *Engine) Initialize(ctx context.Context) error {
	return e.inner.Initialize(ctx)
}

// Complete returns a cached response when one exists and otherwise calls
// the wrapped engine and stores its answer. Errors are never cached.
func (e *Engine) Complete(ctx context.Context, req *execution.CompletionRequest) (*execution.CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to cache.Engine.Complete")
	}

	key, err := CacheKey(e.name, req)
	if err != nil {
		return nil, fmt.Errorf("computing cache key: %w", err)
	}

	if entry, ok := e.memory.Get(key); ok {
		return hit(entry), nil
	}
	if entry, ok := e.disk.Get(key); ok {
		e.memory.Add(key, entry)
		return hit(entry), nil
	}

	resp, err := e.inner.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := &Entry{Key: key, ModelID: resp.ModelID, Content: resp.Content}
	e.memory.Add(key, entry)
	if err := e.disk.Put(entry); err != nil {
		slog.Warn("failed to persist cached response", "key", key, "error", err)
	}

	return resp, nil
}

func (e *Engine) Shutdown(ctx context.Context) error {
	return e.inner.Shutdown(ctx)
}

// Len reports the number of entries held in memory.
func (e *Engine) Len() int {
	return e.memory.Len()
}

func hit(entry *Entry) *execution.CompletionResponse {
	return &execution.CompletionResponse{
		Content: entry.Content,
		ModelID: entry.ModelID,
		Cached:  true,
	}
}
