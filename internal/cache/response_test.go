package cache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResponseCacheSingleDownload(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	c := NewResponseCache(t.TempDir(), server.Client(), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		body, err := c.Get(ctx, server.URL+"/data", time.Hour)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if string(body) != "payload" {
			t.Fatalf("unexpected body: %q", body)
		}
	}

	if calls != 1 {
		t.Fatalf("expected exactly one network call, got %d", calls)
	}
}

func TestResponseCacheExpiredEntryRefetched(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte("fresh"))
	}))
	defer server.Close()

	c := NewResponseCache(t.TempDir(), server.Client(), nil)
	ctx := context.Background()
	url := server.URL + "/data"

	if _, err := c.Get(ctx, url, time.Hour); err != nil {
		t.Fatalf("first get: %v", err)
	}

	// Age the entry past any positive TTL.
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(c.entryPath(url), old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, err := c.Get(ctx, url, time.Hour); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch of expired entry, got %d calls", calls)
	}
}

func TestResponseCacheStaleFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("original"))
	}))

	c := NewResponseCache(t.TempDir(), server.Client(), nil)
	ctx := context.Background()
	url := server.URL + "/data"

	if _, err := c.Get(ctx, url, time.Hour); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(c.entryPath(url), old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	server.Close()

	body, err := c.Get(ctx, url, time.Hour)
	if err != nil {
		t.Fatalf("stale entry should not be an error: %v", err)
	}
	if string(body) != "original" {
		t.Fatalf("unexpected stale body: %q", body)
	}
}

func TestResponseCacheFetchFailedWithoutEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := server.URL + "/data"
	server.Close()

	c := NewResponseCache(t.TempDir(), nil, nil)
	if _, err := c.Get(context.Background(), url, time.Hour); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestResponseCacheShardLayout(t *testing.T) {
	dir := t.TempDir()
	c := NewResponseCache(dir, nil, nil)

	path := c.entryPath("http://example.org/x")
	shard := filepath.Base(filepath.Dir(path))
	if len(shard) != 2 {
		t.Fatalf("shard dir should be two hex chars, got %q", shard)
	}
	if filepath.Ext(path) != ".html" {
		t.Fatalf("entry should carry .html extension, got %q", path)
	}
}
