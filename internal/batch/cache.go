package batch

import (
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/hightemp/indicators/internal/resolve"
)

// CacheEntry represents a memoised resolution.
type CacheEntry struct {
	Name      string       `json:"name"`
	Tier      resolve.Tier `json:"tier"`
	Score     int          `json:"score,omitempty"`
	CachedAt  time.Time    `json:"cached_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Cache memoises resolutions keyed by threshold and input label.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	path    string
	ttl     time.Duration
	dirty   bool
}

// NewCache creates a memo backed by path. An empty path keeps it in memory.
// ttlDays <= 0 means entries never expire.
func NewCache(path string, ttlDays int) *Cache {
	return &Cache{
		entries: make(map[string]*CacheEntry),
		path:    path,
		ttl:     time.Duration(ttlDays) * 24 * time.Hour,
	}
}

func cacheKey(threshold int, input string) string {
	return strconv.Itoa(threshold) + "|" + input
}

// Load loads the memo from disk. A missing file is not an error.
func (c *Cache) Load() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries map[string]*CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	if entries == nil {
		entries = make(map[string]*CacheEntry)
	}

	c.entries = entries
	c.dirty = false
	return nil
}

// Save writes the memo to disk if it changed since the last Load or Save.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Get retrieves a memoised result for input at threshold.
func (c *Cache) Get(threshold int, input string) (resolve.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(threshold, input)]
	if !ok {
		return resolve.Result{}, false
	}

	if c.ttl > 0 && time.Now().After(entry.ExpiresAt) {
		return resolve.Result{}, false
	}

	return resolve.Result{
		Input: input,
		Name:  entry.Name,
		Tier:  entry.Tier,
		Score: entry.Score,
	}, true
}

// Set stores the result for input at threshold.
func (c *Cache) Set(threshold int, res resolve.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[cacheKey(threshold, res.Input)] = &CacheEntry{
		Name:      res.Name,
		Tier:      res.Tier,
		Score:     res.Score,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.dirty = true
}

// Clear removes all cache entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)
	c.dirty = true
}

// Cleanup removes expired entries.
func (c *Cache) Cleanup() int {
	if c.ttl <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.dirty = true
	}
	return removed
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
