package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/execution"
)

// Entry is one cached model response.
type Entry struct {
	Key     string `json:"key"`
	ModelID string `json:"model_id"`
	Content string `json:"content"`
}

// Cache stores model responses on disk, one JSON file per key.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// CacheKey derives a key from everything that can change a model's answer:
// the engine name, the model, the sampling parameters and the full prompt.
func CacheKey(engine string, req *execution.CompletionRequest) (string, error) {
	h := sha256.New()

	if err := writeString(h, engine); err != nil {
		return "", err
	}
	if err := writeString(h, req.ModelID); err != nil {
		return "", err
	}
	temperature := "default"
	if req.Temperature != nil {
		temperature = strconv.FormatFloat(float64(*req.Temperature), 'g', -1, 32)
	}
	if err := writeString(h, temperature); err != nil {
		return "", err
	}
	if err := writeInt(h, req.MaxTokens); err != nil {
		return "", err
	}
	if err := writeString(h, req.Prompt); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached entry if it exists
func (c *Cache) Get(key string) (*Entry, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &entry, true
}

// Put stores an entry in the cache
func (c *Cache) Put(entry *Entry) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	if err := os.WriteFile(c.cachePath(entry.Key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached responses
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Refuse to delete anything that does not look like a cache directory
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if filepath.Ext(entry.Name()) != ".json" {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func writeString(w io.Writer, s string) error {
	// Write string with null byte delimiter to prevent hash collisions
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func writeInt(w io.Writer, i int) error {
	_, err := fmt.Fprintf(w, "%d\x00", i)
	return err
}
