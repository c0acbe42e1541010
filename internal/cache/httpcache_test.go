package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTTPCache_SaveLoad(t *testing.T) {
	c := &HTTPCache{Dir: t.TempDir()}
	ctx := context.Background()
	url := "https://open.er-api.com/v6/latest/USD"
	if err := c.Save(ctx, url, "application/json", `"v1"`, "Mon, 01 Jan 2024 00:00:00 GMT", []byte(`{"rates":{"COP":4000}}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := c.LoadMeta(ctx, url)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.ETag != `"v1"` || meta.ContentType != "application/json" || meta.URL != url {
		t.Fatalf("unexpected meta %+v", meta)
	}
	body, err := c.LoadBody(ctx, url)
	if err != nil || string(body) != `{"rates":{"COP":4000}}` {
		t.Fatalf("body: %q %v", body, err)
	}
	if _, err := c.LoadBody(ctx, "https://other"); err == nil {
		t.Fatalf("expected miss for unknown url")
	}
}

func TestHTTPCache_Fresh(t *testing.T) {
	dir := t.TempDir()
	c := &HTTPCache{Dir: dir}
	ctx := context.Background()
	url := "https://rates.example/usd"
	if _, _, ok := c.Fresh(ctx, url, time.Hour); ok {
		t.Fatalf("empty cache must not be fresh")
	}
	if err := c.Save(ctx, url, "application/json", "", "", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if body, ct, ok := c.Fresh(ctx, url, time.Hour); !ok || string(body) != "{}" || ct != "application/json" {
		t.Fatalf("expected fresh hit, got %q %q %v", body, ct, ok)
	}
	if _, _, ok := c.Fresh(ctx, url, 0); ok {
		t.Fatalf("zero max age must never be fresh")
	}
	ageEntry(t, dir, url, 2*time.Hour)
	if _, _, ok := c.Fresh(ctx, url, time.Hour); ok {
		t.Fatalf("old entry must not be fresh")
	}
	if err := c.Touch(ctx, url); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if _, _, ok := c.Fresh(ctx, url, time.Hour); !ok {
		t.Fatalf("touched entry should be fresh again")
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	c := &HTTPCache{Dir: dir}
	ctx := context.Background()
	for _, u := range []string{"https://a/1", "https://a/2"} {
		if err := c.Save(ctx, u, "application/json", "", "", []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	ageEntry(t, dir, "https://a/1", 48*time.Hour)
	removed, err := PurgeByAge(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := c.LoadBody(ctx, "https://a/1"); err == nil {
		t.Fatalf("expected expired body to be deleted")
	}
	if _, err := c.LoadBody(ctx, "https://a/2"); err != nil {
		t.Fatalf("fresh entry should survive: %v", err)
	}
	if n, err := PurgeByAge(filepath.Join(dir, "missing"), time.Hour); err != nil || n != 0 {
		t.Fatalf("missing dir: %d %v", n, err)
	}
}

func TestClearDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := &HTTPCache{Dir: dir}
	if err := c.Save(context.Background(), "https://a", "application/json", "", "", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries (%v)", len(entries), err)
	}
	if err := ClearDir("  "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestHTTPCache_StrictPerms(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "strict")
	c := &HTTPCache{Dir: dir, StrictPerms: true}
	url := "https://secure.example"
	if err := c.Save(context.Background(), url, "application/json", "", "", []byte("x")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("dir perms too open: %v", info.Mode().Perm())
	}
	info, err = os.Stat(c.bodyPath(c.key(url)))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("file perms too open: %v", info.Mode().Perm())
	}
}

// ageEntry rewrites the saved timestamp of url's metadata.
func ageEntry(t *testing.T, dir, url string, age time.Duration) {
	t.Helper()
	c := &HTTPCache{Dir: dir}
	path := c.metaPath(c.key(url))
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var e HTTPEntry
	if err := json.Unmarshal(b, &e); err != nil {
		t.Fatal(err)
	}
	e.SavedAt = time.Now().UTC().Add(-age)
	b, _ = json.Marshal(e)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
}
