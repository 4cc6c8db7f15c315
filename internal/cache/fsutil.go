package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFileAtomic writes data via a temp file and rename so concurrent
// readers never observe a partial entry. Parent directories are created
// as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write cache tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename cache entry: %w", err)
	}

	return nil
}
