// Package cache stores encoded operation results keyed by a fingerprint of
// (source identity, operation name, parameters).
//
// The cache is bounded by an estimated byte size and evicts entries in least
// recently used order. Sizes are estimates supplied by the caller, not exact
// memory accounting.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Stats is a snapshot of cache occupancy.
type Stats struct {
	Enabled          bool    `json:"enabled"`
	ItemCount        int     `json:"items_count"`
	CurrentSizeBytes int64   `json:"current_size_bytes"`
	CapacityBytes    int64   `json:"capacity_bytes"`
	CurrentSizeMB    float64 `json:"current_size_mb"`
	CapacityMB       float64 `json:"max_size_mb"`
	UsagePercent     float64 `json:"usage_percentage"`
}

type entry struct {
	key        string
	payload    []byte
	size       int64
	lastAccess time.Time
}

// Cache is a size-bounded LRU cache. It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	enabled  bool
	capacity int64
	size     int64
	order    *list.List // front = most recently used
	items    map[string]*list.Element
}

// New creates a cache holding at most capacityBytes of estimated payload.
// A disabled cache never stores anything.
func New(capacityBytes int64, enabled bool) *Cache {
	return &Cache{
		enabled:  enabled,
		capacity: capacityBytes,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Fingerprint derives the cache key for a request. params is serialized with
// encoding/json, which sorts map keys, so the key does not depend on the
// order in which parameters were supplied.
func Fingerprint(sourceID, operation string, params any) (string, error) {
	canonical, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(sourceID))
	h.Write([]byte{':'})
	h.Write([]byte(operation))
	h.Write([]byte{':'})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the stored payload for the request and marks it as recently
// used. Any failure to compute the fingerprint is treated as a miss.
func (c *Cache) Get(sourceID, operation string, params any) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}
	key, err := Fingerprint(sourceID, operation, params)
	if err != nil {
		log.Debug().Err(err).Str("operation", operation).Msg("cache fingerprint failed, treating as miss")
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	e.lastAccess = time.Now()
	c.order.MoveToFront(el)
	return e.payload, true
}

// Put stores payload with the given estimated size, evicting least recently
// used entries until it fits. Payloads larger than the whole capacity are
// not stored.
func (c *Cache) Put(sourceID, operation string, params any, payload []byte, size int64) {
	if !c.enabled || size < 0 {
		return
	}
	key, err := Fingerprint(sourceID, operation, params)
	if err != nil {
		log.Debug().Err(err).Str("operation", operation).Msg("cache fingerprint failed, skipping store")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
	if size > c.capacity {
		return
	}

	for c.size+size > c.capacity && c.order.Len() > 0 {
		c.remove(c.order.Back())
	}

	el := c.order.PushFront(&entry{
		key:        key,
		payload:    payload,
		size:       size,
		lastAccess: time.Now(),
	})
	c.items[key] = el
	c.size += size
}

// remove must be called with c.mu held.
func (c *Cache) remove(el *list.Element) {
	e := c.order.Remove(el).(*entry)
	delete(c.items, e.key)
	c.size -= e.size
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
	c.size = 0
	c.mu.Unlock()
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the cache occupancy.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Enabled:          c.enabled,
		ItemCount:        c.order.Len(),
		CurrentSizeBytes: c.size,
		CapacityBytes:    c.capacity,
		CurrentSizeMB:    float64(c.size) / (1024 * 1024),
		CapacityMB:       float64(c.capacity) / (1024 * 1024),
	}
	if c.capacity > 0 {
		s.UsagePercent = float64(c.size) / float64(c.capacity) * 100
	}
	return s
}

// sizes returns the recorded size of every entry, oldest access first.
func (c *Cache) sizes() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int64, 0, c.order.Len())
	for el := c.order.Back(); el != nil; el = el.Prev() {
		out = append(out, el.Value.(*entry).size)
	}
	return out
}
