package bust

import (
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	path      string
	algorithm string
}

// Cache memoizes checksums of asset files keyed by path and hash algorithm.
// Entries are never evicted, files are assumed to stay unchanged for the
// duration of the run. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
	group   singleflight.Group

	// readFile is replaced in tests to count reads
	readFile func(string) ([]byte, error)
}

// NewCache creates empty checksum cache.
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[cacheKey]string),
		readFile: os.ReadFile,
	}
}

// Checksum returns hex digest of the file content computed with algorithm,
// reading the file only when no digest is cached yet. Failures are not
// remembered.
func (c *Cache) Checksum(path, algorithm string) (string, error) {
	key := cacheKey{path: path, algorithm: algorithm}

	c.mu.RLock()
	sum, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return sum, nil
	}

	v, err, _ := c.group.Do(algorithm+"|"+path, func() (any, error) {
		// another caller may have finished while we were waiting
		c.mu.RLock()
		sum, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return sum, nil
		}

		h, err := newHash(algorithm)
		if err != nil {
			return "", err
		}
		data, err := c.readFile(path)
		if err != nil {
			return "", fmt.Errorf("unable to read asset: %w", err)
		}
		h.Write(data)
		sum = hex.EncodeToString(h.Sum(nil))

		c.mu.Lock()
		c.entries[key] = sum
		c.mu.Unlock()
		return sum, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len returns number of cached digests.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset forgets all cached digests.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
