// Package cache keeps fetched HTTP responses on disk so exchange-rate
// lookups can revalidate with ETag/Last-Modified or skip the network while
// an entry is fresh.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HTTPEntry is the metadata stored beside each cached body.
type HTTPEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// Age reports how long ago the entry was saved.
func (e HTTPEntry) Age(now time.Time) time.Duration { return now.Sub(e.SavedAt) }

// HTTPCache stores responses as <key>.meta.json and <key>.body where key is
// sha256(url).
type HTTPCache struct {
	Dir string
	// StrictPerms stores entries with 0700 directories and 0600 files.
	StrictPerms bool
}

func (c *HTTPCache) perms() (dir, file os.FileMode) {
	if c.StrictPerms {
		return 0o700, 0o600
	}
	return 0o755, 0o644
}

func (c *HTTPCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	dirPerm, _ := c.perms()
	return os.MkdirAll(c.Dir, dirPerm)
}

func (c *HTTPCache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *HTTPCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *HTTPCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// LoadMeta returns entry metadata if present.
func (c *HTTPCache) LoadMeta(_ context.Context, url string) (*HTTPEntry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(c.key(url)))
	if err != nil {
		return nil, err
	}
	var e HTTPEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &e, nil
}

// LoadBody returns the cached body if present.
func (c *HTTPCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(c.key(url)))
}

// Fresh returns the cached body and content type when the entry is younger
// than maxAge. A non-positive maxAge never counts as fresh.
func (c *HTTPCache) Fresh(ctx context.Context, url string, maxAge time.Duration) ([]byte, string, bool) {
	if maxAge <= 0 {
		return nil, "", false
	}
	meta, err := c.LoadMeta(ctx, url)
	if err != nil || meta.Age(time.Now().UTC()) > maxAge {
		return nil, "", false
	}
	body, err := c.LoadBody(ctx, url)
	if err != nil {
		return nil, "", false
	}
	return body, meta.ContentType, true
}

// Save stores the body first and then atomically replaces the metadata.
func (c *HTTPCache) Save(_ context.Context, url string, contentType string, etag string, lastModified string, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	_, filePerm := c.perms()
	key := c.key(url)
	if err := os.WriteFile(c.bodyPath(key), body, filePerm); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta, err := json.Marshal(HTTPEntry{
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
	if err := os.WriteFile(tmp, meta, filePerm); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, c.metaPath(key))
}

// Touch resets an entry's age after a 304 revalidation.
func (c *HTTPCache) Touch(ctx context.Context, url string) error {
	meta, err := c.LoadMeta(ctx, url)
	if err != nil {
		return err
	}
	body, err := c.LoadBody(ctx, url)
	if err != nil {
		return err
	}
	return c.Save(ctx, url, meta.ContentType, meta.ETag, meta.LastModified, body)
}
