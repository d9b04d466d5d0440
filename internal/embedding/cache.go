package embedding

import (
	"container/list"
	"crypto/sha256"
	"sync"
)

// cacheKey is the digest of an embedded text. Resume texts run to kilobytes,
// so the cache keeps digests rather than the texts themselves.
type cacheKey [sha256.Size]byte

func keyOf(text string) cacheKey {
	return sha256.Sum256([]byte(text))
}

type cached struct {
	key cacheKey
	vec []float32
}

// EmbeddingCache is a bounded LRU of embeddings keyed by text digest. Safe for concurrent use.
type EmbeddingCache struct {
	mu      sync.Mutex
	limit   int
	order   *list.List // front is most recently used
	entries map[cacheKey]*list.Element
}

// NewEmbeddingCache creates a cache holding at most capacity vectors (minimum 1).
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	return &EmbeddingCache{
		limit:   max(capacity, 1),
		order:   list.New(),
		entries: make(map[cacheKey]*list.Element, max(capacity, 1)),
	}
}

// Get returns the vector stored for text and marks it recently used.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	k := keyOf(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cached).vec, true
}

// Set stores vec for text. When the cache is full the least recently used vector is dropped.
func (c *EmbeddingCache) Set(text string, vec []float32) {
	k := keyOf(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[k]; ok {
		el.Value.(*cached).vec = vec
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.limit {
		c.evictOldest()
	}
	c.entries[k] = c.order.PushFront(&cached{key: k, vec: vec})
}

func (c *EmbeddingCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cached).key)
}

// Len returns the number of cached vectors.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
