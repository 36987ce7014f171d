// Package cache provides the bounded LRU maps behind the library's
// process-wide shared resources: parsed font sources capped at
// MaxOpenFaces, and interned scaled fonts. Keys hash across 16 locked
// shards; a full shard evicts its least recently used entry.
package cache

import (
	"sync"
	"sync/atomic"
)

const (
	// DefaultCapacity is the per-shard entry bound used when a caller
	// passes no capacity of its own.
	DefaultCapacity = 256

	// MaxOpenFaces bounds the number of parsed font faces each shard
	// of the process-wide source map keeps alive.
	MaxOpenFaces = 10

	shardCount = 16 // power of two, shard picked by hash&shardMask
	shardMask  = shardCount - 1
)

// Hasher computes the shard-selection hash for a key.
type Hasher[K any] func(K) uint64

// Uint64Hasher is the identity hash for keys that are already hashes.
func Uint64Hasher(u uint64) uint64 { return u }

// Sharded is a thread-safe LRU cache split across 16 independently
// locked shards. Values are stored as-is, never copied.
type Sharded[K comparable, V any] struct {
	shards   [shardCount]shard[K, V]
	hasher   Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	lru     ring[K]
}

type entry[K comparable, V any] struct {
	value V
	node  *node[K]
}

// NewSharded creates a cache holding up to capacity entries per shard.
// capacity <= 0 means DefaultCapacity.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Sharded[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i].entries = make(map[K]*entry[K, V])
		c.shards[i].lru.init()
	}
	return c
}

func (c *Sharded[K, V]) shardFor(key K) *shard[K, V] {
	return &c.shards[c.hasher(key)&shardMask]
}

// Get returns the cached value for key and marks it most recently
// used.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.lru.moveToFront(e.node)
	v := e.value
	s.mu.Unlock()
	c.hits.Add(1)
	return v, true
}

// Set stores value under key, evicting least recently used entries
// while the shard is full.
func (c *Sharded[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	c.put(s, key, value)
	s.mu.Unlock()
}

// put inserts or updates an entry. The caller holds the shard lock.
func (c *Sharded[K, V]) put(s *shard[K, V], key K, value V) {
	if e, ok := s.entries[key]; ok {
		e.value = value
		s.lru.moveToFront(e.node)
		return
	}
	for len(s.entries) >= c.capacity {
		oldest := s.lru.oldest()
		if oldest == nil {
			break
		}
		s.lru.remove(oldest)
		delete(s.entries, oldest.key)
		c.evictions.Add(1)
	}
	s.entries[key] = &entry[K, V]{value: value, node: s.lru.pushFront(key)}
}

// GetOrCreate returns the cached value for key, calling create under
// the shard lock to fill a miss. Use it for values that are cheap to
// build; expensive ones go through FindOrCreate.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		s.lru.moveToFront(e.node)
		v := e.value
		s.mu.Unlock()
		c.hits.Add(1)
		return v
	}
	v := create()
	c.put(s, key, v)
	s.mu.Unlock()
	c.misses.Add(1)
	return v
}

// FindOrCreate looks key up under a brief shard lock, runs create
// outside the lock on a miss, and publishes the result under a second
// brief lock. A failed create caches nothing. Two goroutines may build
// the same value concurrently; the first to publish wins and the loser
// receives the published value.
func (c *Sharded[K, V]) FindOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	s := c.shardFor(key)
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		s.lru.moveToFront(e.node)
		v = e.value
		s.mu.Unlock()
		return v, nil
	}
	c.put(s, key, v)
	s.mu.Unlock()
	return v, nil
}

// Delete removes key's entry if present.
func (c *Sharded[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.remove(e.node)
	delete(s.entries, key)
	return true
}

// Len returns the number of cached entries across all shards.
func (c *Sharded[K, V]) Len() int {
	total := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Stats is a snapshot of the cache's usage counters.
type Stats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns the current usage counters.
func (c *Sharded[K, V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
