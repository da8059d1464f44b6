// Package cache memoizes translator replies on disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/llmsh/llmsh/internal/ports"
)

type cacheEntry struct {
	Key       string    `json:"key"`
	Command   string    `json:"command"`
	CreatedAt time.Time `json:"created_at"`
}

// FileCache stores translated commands as JSON blobs addressed by hash key.
type FileCache struct {
	dir        string
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
}

// NewFileCache returns a cache rooted at dir, defaulting to
// ~/.llmsh/cache/translations.
func NewFileCache(dir string, ttl time.Duration) *FileCache {
	if dir == "" {
		dir = filepath.Join(userHome(), ".llmsh", "cache", "translations")
	}
	return &FileCache{dir: dir, maxEntries: 100, ttl: ttl}
}

// Key implements ports.TranslationCache: a stable hash of the normalized
// input and its context tags.
func (c *FileCache) Key(input string, tags []string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(input)) + "\x00" + strings.Join(tags, ",")))
	return hex.EncodeToString(sum[:])
}

// Get implements ports.TranslationCache. Expired entries are dropped on read.
func (c *FileCache) Get(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	path := c.pathFor(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		_ = os.Remove(path)
		return "", false
	}
	return entry.Command, true
}

// Put implements ports.TranslationCache.
func (c *FileCache) Put(key, command string) error {
	if key == "" || command == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(cacheEntry{Key: key, Command: command, CreatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.pathFor(key), data, 0o644); err != nil {
		return err
	}
	return c.evictIfNeeded()
}

// Clear removes all cached entries.
func (c *FileCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Dir exposes the cache directory path.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *FileCache) evictIfNeeded() error {
	if c.maxEntries <= 0 {
		return nil
	}
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(files) <= c.maxEntries {
		return nil
	}
	type fileInfo struct {
		name string
		mod  time.Time
	}
	var infos []fileInfo
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		infos = append(infos, fileInfo{name: f.Name(), mod: info.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].mod.Before(infos[j].mod) })
	for len(infos) > c.maxEntries {
		old := infos[0]
		_ = os.Remove(filepath.Join(c.dir, old.name))
		infos = infos[1:]
	}
	return nil
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.TranslationCache = (*FileCache)(nil)
