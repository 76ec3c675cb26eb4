package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// GenerationCache stores model responses keyed by model and prompt digest.
type GenerationCache struct {
	Dir string
	// StrictPerms enforces 0700 on the directory and 0600 on entries.
	StrictPerms bool
}

// KeyFrom builds a cache key from the model name and the full prompt.
func KeyFrom(model string, prompt string) string { return digest(model, prompt) }

func (c *GenerationCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns cached bytes if present and touches the entry's mtime so
// age-based purging keeps recently used responses.
func (c *GenerationCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return nil, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, nil
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

func (c *GenerationCache) Save(_ context.Context, key string, data []byte) error {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	_, fmode := dirPerms(c.StrictPerms)
	return os.WriteFile(c.pathFor(key), data, fmode)
}
