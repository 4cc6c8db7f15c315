package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ErrFetchFailed marks a download failure with no usable cache entry.
var ErrFetchFailed = errors.New("fetch failed")

// ResponseCache is a content-addressed disk cache for HTTP response bodies.
// Entries are keyed by the md5 of the URL and sharded by the first two hex
// characters to bound directory fanout. File mtime is the freshness clock.
type ResponseCache struct {
	dir    string
	client *http.Client
	logger *zap.Logger
}

// NewResponseCache builds a cache rooted at dir. A nil client falls back to
// a default with a 30s timeout.
func NewResponseCache(dir string, client *http.Client, logger *zap.Logger) *ResponseCache {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache{dir: dir, client: client, logger: logger}
}

func (c *ResponseCache) entryPath(url string) string {
	sum := md5.Sum([]byte(url))
	hash := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, hash[:2], hash+".html")
}

// Get returns the response body for url, serving from disk when the cached
// entry is younger than ttl. A stale entry is refetched, but never treated
// as an error: if the refetch fails the stale body is returned, because the
// underlying chain data is immutable once final. Only a fetch failure with
// no entry at all returns ErrFetchFailed.
func (c *ResponseCache) Get(ctx context.Context, url string, ttl time.Duration) ([]byte, error) {
	path := c.entryPath(url)

	if stat, err := os.Stat(path); err == nil && time.Since(stat.ModTime()) < ttl {
		return os.ReadFile(path)
	}

	body, err := c.fetch(ctx, url)
	if err != nil {
		if stale, readErr := os.ReadFile(path); readErr == nil {
			c.logger.Warn("serving stale cache entry", zap.String("url", url), zap.Error(err))
			return stale, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}

	if err := writeFileAtomic(path, body); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *ResponseCache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
