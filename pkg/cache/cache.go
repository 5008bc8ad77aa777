// Package cache provides a thread-safe, content-addressed store of prior
// model responses with TTL expiry, LRU eviction, and an optional durable
// file tier.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mathforge-ai/mathforge/pkg/models"
)

// volatileOptions are request options excluded from fingerprints because
// they do not affect the response content.
var volatileOptions = map[string]bool{
	"max_retries": true,
	"retry_delay": true,
}

// Fingerprint returns the deterministic cache key for a request: a SHA-256
// hex digest over a canonicalized JSON form of the identifying parameters.
func Fingerprint(req models.InvokeRequest) string {
	canonical := map[string]any{
		"provider":    strings.ToLower(req.Provider),
		"model":       req.Model,
		"prompt":      strings.TrimSpace(req.Prompt),
		"temperature": req.Temperature,
	}
	keys := make([]string, 0, len(req.Options))
	for k := range req.Options {
		if !volatileOptions[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		canonical[k] = req.Options[k]
	}

	// encoding/json emits map keys in sorted order, so the digest is stable.
	data, _ := json.Marshal(canonical)
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

type entry struct {
	key        string
	insertedAt time.Time
	resp       models.InvokeResponse
}

// Cache is an LRU + TTL response cache. One mutex guards both the index map
// and the recency list so concurrent pipelines never observe them out of sync.
type Cache struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	ttl     time.Duration
	dir     string // durable tier, empty when disabled
	now     func() time.Time

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
}

// Option customizes a Cache.
type Option func(*Cache)

// WithDurableDir mirrors entries to one JSON file per fingerprint under dir.
func WithDurableDir(dir string) Option {
	return func(c *Cache) { c.dir = dir }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache bounded to maxSize entries with the given TTL.
func New(maxSize int, ttl time.Duration, opts ...Option) (*Cache, error) {
	c := &Cache{
		index:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return c, nil
}

// Get returns a cached response for the request, or false on a miss.
// Expired entries are treated as absent and dropped eagerly.
func (c *Cache) Get(req models.InvokeRequest) (models.InvokeResponse, bool) {
	key := Fingerprint(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		e := el.Value.(*entry)
		if c.now().Sub(e.insertedAt) > c.ttl {
			c.removeLocked(el)
			c.expirations.Add(1)
		} else {
			c.order.MoveToFront(el)
			c.hits.Add(1)
			return e.resp, true
		}
	}

	if resp, ok := c.loadFromDisk(key); ok {
		c.insertLocked(key, resp)
		c.hits.Add(1)
		return resp, true
	}

	c.misses.Add(1)
	return models.InvokeResponse{}, false
}

// Put stores a response under the request's fingerprint, evicting the
// least-recently-used entries when the cache exceeds its bound.
func (c *Cache) Put(req models.InvokeRequest, resp models.InvokeResponse) {
	key := Fingerprint(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*entry).resp = resp
		el.Value.(*entry).insertedAt = c.now()
		c.order.MoveToFront(el)
	} else {
		c.insertLocked(key, resp)
	}

	c.saveToDisk(key, resp)
}

// insertLocked adds a fresh entry and evicts from the LRU tail past maxSize.
func (c *Cache) insertLocked(key string, resp models.InvokeResponse) {
	el := c.order.PushFront(&entry{key: key, insertedAt: c.now(), resp: resp})
	c.index[key] = el
	for c.maxSize > 0 && len(c.index) > c.maxSize {
		tail := c.order.Back()
		if tail == nil {
			break
		}
		c.removeLocked(tail)
		c.evictions.Add(1)
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.index, e.key)
}

func (c *Cache) loadFromDisk(key string) (models.InvokeResponse, bool) {
	if c.dir == "" {
		return models.InvokeResponse{}, false
	}
	path := filepath.Join(c.dir, key+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return models.InvokeResponse{}, false
	}

	var stored models.CacheEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("cache: dropping unreadable entry %s: %v", key[:16], err)
		_ = os.Remove(path)
		return models.InvokeResponse{}, false
	}
	if c.now().Sub(stored.InsertedAt) > c.ttl {
		_ = os.Remove(path)
		return models.InvokeResponse{}, false
	}
	return stored.Response, true
}

func (c *Cache) saveToDisk(key string, resp models.InvokeResponse) {
	if c.dir == "" {
		return
	}
	data, err := json.Marshal(models.CacheEntry{InsertedAt: c.now(), Response: resp})
	if err != nil {
		log.Printf("cache: marshal entry %s: %v", key[:16], err)
		return
	}
	if err := os.WriteFile(filepath.Join(c.dir, key+".json"), data, 0o644); err != nil {
		log.Printf("cache: persist entry %s: %v", key[:16], err)
	}
}

// Len returns the current number of in-memory entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Stats returns cache performance metrics.
func (c *Cache) Stats() models.CacheStats {
	c.mu.Lock()
	entries := len(c.index)
	c.mu.Unlock()

	return models.CacheStats{
		Enabled:     true,
		Entries:     entries,
		MaxSize:     c.maxSize,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
	}
}

// Clear removes entries from memory and, when a durable tier is configured,
// from disk. If expiredOnly is true only stale entries are removed.
func (c *Cache) Clear(expiredOnly bool) error {
	c.mu.Lock()
	if expiredOnly {
		for el := c.order.Back(); el != nil; {
			prev := el.Prev()
			if e := el.Value.(*entry); c.now().Sub(e.insertedAt) > c.ttl {
				c.removeLocked(el)
			}
			el = prev
		}
	} else {
		c.index = make(map[string]*list.Element)
		c.order.Init()
	}
	c.mu.Unlock()

	if c.dir == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("scan cache dir: %w", err)
	}
	for _, f := range files {
		if expiredOnly && !c.fileExpired(f) {
			continue
		}
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove cache file: %w", err)
		}
	}
	return nil
}

// DirStats counts total and expired entries in the durable tier.
func (c *Cache) DirStats() (total, expired int, err error) {
	if c.dir == "" {
		return 0, 0, nil
	}
	files, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, 0, fmt.Errorf("scan cache dir: %w", err)
	}
	for _, f := range files {
		total++
		if c.fileExpired(f) {
			expired++
		}
	}
	return total, expired, nil
}

func (c *Cache) fileExpired(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	var stored models.CacheEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return true
	}
	return c.now().Sub(stored.InsertedAt) > c.ttl
}
