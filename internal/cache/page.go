package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PageEntry holds the validators needed to revalidate a cached page with a
// conditional GET.
type PageEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// PageCache stores crawled pages on disk as <key>.meta.json and <key>.body
// where key is sha256(url).
type PageCache struct {
	Dir         string
	StrictPerms bool
}

func (c *PageCache) key(url string) string { return digest(url) }

func (c *PageCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *PageCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// Lookup returns the stored entry and body for url. A missing entry is
// reported with ok=false and no error.
func (c *PageCache) Lookup(_ context.Context, url string) (*PageEntry, []byte, bool, error) {
	if c == nil {
		return nil, nil, false, nil
	}
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return nil, nil, false, err
	}
	key := c.key(url)
	mb, err := os.ReadFile(c.metaPath(key))
	if err != nil {
		return nil, nil, false, nil
	}
	var e PageEntry
	if err := json.Unmarshal(mb, &e); err != nil {
		return nil, nil, false, nil
	}
	body, err := os.ReadFile(c.bodyPath(key))
	if err != nil {
		return nil, nil, false, nil
	}
	return &e, body, true, nil
}

// Save writes body first and then swaps the metadata in atomically, so a
// reader never sees metadata without its body.
func (c *PageCache) Save(_ context.Context, url, contentType, etag, lastModified string, body []byte) error {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	_, fmode := dirPerms(c.StrictPerms)
	key := c.key(url)
	if err := os.WriteFile(c.bodyPath(key), body, fmode); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta, err := json.Marshal(PageEntry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tmp := c.metaPath(key) + ".tmp"
	if err := os.WriteFile(tmp, meta, fmode); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, c.metaPath(key))
}
