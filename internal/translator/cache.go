package translator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

// Cache 翻译缓存
// One file per entry. The file name is the digest of the language pair and
// the source text; the file content is the translation. Expiry is enforced
// when an entry is read, based on the file's modification time, so no
// background sweeper is needed. Concurrent writers of the same key simply
// overwrite each other with identical content.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a Cache rooted at dir. A non-positive ttl disables expiry.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrCacheFailed, "cannot create cache directory", dir, err)
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Key derives the cache key for a translation request.
func (c *Cache) Key(sourceLang, targetLang, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s", sourceLang, targetLang, text)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached translation and whether a live entry was found.
// Expired entries are removed on sight.
func (c *Cache) Get(sourceLang, targetLang, text string) (string, bool) {
	path := c.entryPath(c.Key(sourceLang, targetLang, text))

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		os.Remove(path)
		return "", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("cache entry unreadable", logger.String("path", path), logger.Err(err))
		return "", false
	}
	return string(data), true
}

// Put stores a translation. Write failures are logged and swallowed; the
// cache never blocks a translation run.
func (c *Cache) Put(sourceLang, targetLang, text, translation string) {
	path := c.entryPath(c.Key(sourceLang, targetLang, text))
	if err := os.WriteFile(path, []byte(translation), 0644); err != nil {
		logger.Warn("cache write failed", logger.String("path", path), logger.Err(err))
	}
}

// Clear removes every entry in the cache directory.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrCacheFailed, "cannot read cache directory", c.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return types.NewAppErrorWithDetails(types.ErrCacheFailed, "cannot remove cache entry", entry.Name(), err)
		}
	}
	return nil
}

// Size returns the number of entries currently on disk.
func (c *Cache) Size() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, types.NewAppErrorWithDetails(types.ErrCacheFailed, "cannot read cache directory", c.dir, err)
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			n++
		}
	}
	return n, nil
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".txt")
}
