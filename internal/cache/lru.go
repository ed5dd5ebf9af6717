// internal/cache/lru.go
package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/snappy"
)

// Document is a generated file held for later download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// cacheItem is a cached document with its payload snappy-compressed.
type cacheItem struct {
	key          string
	filename     string
	contentType  string
	compressed   []byte
	size         int64
	createdAt    time.Time
	lastAccessed time.Time
}

// LRU implements a Least Recently Used cache of generated documents.
// Entries older than the TTL are treated as misses.
type LRU struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	lruList  *list.List
	now      func() time.Time

	// Statistics
	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// NewLRU creates a new LRU cache with the given capacity. A zero ttl keeps
// entries until they are evicted.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		lruList:  list.New(),
		now:      time.Now,
	}
}

// Get retrieves a document from the cache
func (c *LRU) Get(ctx context.Context, key string) (*Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		c.misses++
		return nil, false, nil
	}

	item := elem.Value.(*cacheItem)
	if c.ttl > 0 && c.now().Sub(item.createdAt) > c.ttl {
		c.removeElement(elem)
		c.expired++
		c.misses++
		return nil, false, nil
	}

	// Move to front (most recently used)
	c.lruList.MoveToFront(elem)
	item.lastAccessed = c.now()

	data, err := snappy.Decode(nil, item.compressed)
	if err != nil {
		return nil, false, fmt.Errorf("cache get: decompress %s: %w", key, err)
	}

	c.hits++
	return &Document{
		Filename:    item.filename,
		ContentType: item.contentType,
		Data:        data,
		CreatedAt:   item.createdAt,
	}, true, nil
}

// Put adds a document to the cache
func (c *LRU) Put(ctx context.Context, key string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	compressed := snappy.Encode(nil, doc.Data)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	created := doc.CreatedAt
	if created.IsZero() {
		created = now
	}

	// Check if item already exists
	if elem, exists := c.items[key]; exists {
		c.lruList.MoveToFront(elem)
		item := elem.Value.(*cacheItem)
		item.filename = doc.Filename
		item.contentType = doc.ContentType
		item.compressed = compressed
		item.size = int64(len(doc.Data))
		item.createdAt = created
		item.lastAccessed = now
		return nil
	}

	item := &cacheItem{
		key:          key,
		filename:     doc.Filename,
		contentType:  doc.ContentType,
		compressed:   compressed,
		size:         int64(len(doc.Data)),
		createdAt:    created,
		lastAccessed: now,
	}

	elem := c.lruList.PushFront(item)
	c.items[key] = elem

	// Check capacity and evict if necessary
	if c.lruList.Len() > c.capacity {
		c.evictOldest()
	}

	return nil
}

// Delete removes a document from the cache
func (c *LRU) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}

	return nil
}

// evictOldest removes the least recently used item
func (c *LRU) evictOldest() {
	elem := c.lruList.Back()
	if elem == nil {
		return
	}
	c.removeElement(elem)
	c.evictions++
}

func (c *LRU) removeElement(elem *list.Element) {
	c.lruList.Remove(elem)
	delete(c.items, elem.Value.(*cacheItem).key)
}

// CacheStats holds cache statistics
type CacheStats struct {
	Items           int   `json:"items"`
	Hits            int64 `json:"hits"`
	Misses          int64 `json:"misses"`
	Evictions       int64 `json:"evictions"`
	Expired         int64 `json:"expired"`
	Capacity        int   `json:"capacity"`
	Bytes           int64 `json:"bytes"`
	CompressedBytes int64 `json:"compressed_bytes"`
}

// HitRate calculates the cache hit rate
func (s *CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns current cache statistics
func (c *LRU) Stats() *CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &CacheStats{
		Items:     c.lruList.Len(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
		Capacity:  c.capacity,
	}
	for e := c.lruList.Front(); e != nil; e = e.Next() {
		item := e.Value.(*cacheItem)
		stats.Bytes += item.size
		stats.CompressedBytes += int64(len(item.compressed))
	}
	return stats
}

// Clear removes all items from the cache
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lruList = list.New()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
	c.expired = 0
}
