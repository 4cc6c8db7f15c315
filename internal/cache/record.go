package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gameScope/internal/model"
)

// RecordCache is a permanent disk cache for decoded transaction records,
// keyed by transaction hash. No TTL: transaction content is immutable once
// confirmed, so an entry is never refreshed or evicted.
type RecordCache struct {
	dir string
}

// NewRecordCache builds a record cache rooted at dir.
func NewRecordCache(dir string) *RecordCache {
	return &RecordCache{dir: dir}
}

func (c *RecordCache) entryPath(hash string) string {
	shard := hash
	// 0x-prefixed hashes shard on the first two hex characters of the body.
	if len(hash) >= 4 {
		shard = hash[2:4]
	}
	return filepath.Join(c.dir, "transactions", shard, hash+".json")
}

// GetOrCompute returns the cached record for hash, or runs compute and
// persists its result. A compute failure leaves the cache untouched; no
// partial entries are ever written.
func (c *RecordCache) GetOrCompute(hash string, compute func() (*model.DecodedTransaction, error)) (*model.DecodedTransaction, error) {
	path := c.entryPath(hash)

	if data, err := os.ReadFile(path); err == nil {
		var record model.DecodedTransaction
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("parse cached record %s: %w", hash, err)
		}
		return &record, nil
	}

	record, err := compute()
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", hash, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	return record, nil
}
