package store

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultCacheCapacity and DefaultCacheTTL bound the embedding cache.
// Course titles and repeated queries dominate the hit rate; a small cache
// is enough.
const (
	DefaultCacheCapacity = 1024
	DefaultCacheTTL      = time.Hour
)

type cacheEntry struct {
	key       string
	vector    []float32
	expiresAt time.Time
}

// CachingEmbedder wraps an Embedder with a thread-safe LRU cache keyed on
// the text's hash. Remote providers charge per call and course titles are
// re-embedded on every fuzzy resolution, so hits are frequent.
type CachingEmbedder struct {
	inner    Embedder
	capacity int
	ttl      time.Duration

	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List
}

// NewCachingEmbedder wraps inner. capacity <= 0 and ttl <= 0 fall back to
// the defaults.
func NewCachingEmbedder(inner Embedder, capacity int, ttl time.Duration) *CachingEmbedder {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingEmbedder{
		inner:    inner,
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

func (c *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := hashKey(text)
	if vec, ok := c.get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.set(key, vec)
	return vec, nil
}

// Len returns the number of cached vectors.
func (c *CachingEmbedder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear drops every cached vector.
func (c *CachingEmbedder) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.lru.Init()
}

func (c *CachingEmbedder) get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	ent := elem.Value.(*cacheEntry)
	if time.Now().After(ent.expiresAt) {
		c.lru.Remove(elem)
		delete(c.items, key)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return ent.vector, true
}

func (c *CachingEmbedder) set(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if elem, ok := c.items[key]; ok {
		c.lru.MoveToFront(elem)
		ent := elem.Value.(*cacheEntry)
		ent.vector = vector
		ent.expiresAt = expiresAt
		return
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, vector: vector, expiresAt: expiresAt})
	c.items[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

func hashKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
