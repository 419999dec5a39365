// File: internal/cache/cache.go
package cache

import (
	"errors"
)

// ErrInvalidCapacity is returned when Cache construction is given a
// non-positive capacity.
var ErrInvalidCapacity = errors.New("cache: capacity must be > 0")

// ErrInvalidShardCount is returned when Cache construction is given a
// non-positive shard count.
var ErrInvalidShardCount = errors.New("cache: shard count must be > 0")

// ErrNoShardsRemain is returned when every shard would be allocated zero
// slots and the derived shard count collapses to zero. Because New hands
// the remainder slots out one per shard, a positive capacity always leaves
// min(capacity, shardCount) shards, so New does not return this error for
// arguments that pass the capacity and shard-count checks.
var ErrNoShardsRemain = errors.New("cache: capacity too small for requested shard count")

// HashFunc computes a deterministic, process-local hash for a key. Callers
// pick the hash appropriate to their key type; see NewInt32Hash for the common
// case of integer keys.
type HashFunc[K comparable] func(K) uint64

// Cache is a sharded, concurrent, bounded LRU store over keys K and values
// V. Each shard is independently locked, so operations on distinct shards
// proceed in parallel and no lock is ever held across store I/O — callers
// populate the cache only after a store round trip has already completed.
type Cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   HashFunc[K]
}

// New builds a Cache with the given total capacity spread across
// shardCount shards. The first (capacity mod shardCount) shards receive one
// extra slot so the sum of per-shard capacities equals capacity exactly. A
// shard that would receive zero slots is dropped; if every shard would be
// dropped, construction fails with ErrNoShardsRemain.
//
// shardCount need not be a power of two: shard selection reduces the
// hash with a plain modulo (see shardFor), not a mask.
func New[K comparable, V any](capacity, shardCount int, hash HashFunc[K]) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if shardCount <= 0 {
		return nil, ErrInvalidShardCount
	}

	base := capacity / shardCount
	extra := capacity % shardCount

	shards := make([]*shard[K, V], 0, shardCount)
	for i := 0; i < shardCount; i++ {
		cap := base
		if i < extra {
			cap++
		}
		if cap == 0 {
			continue
		}
		shards = append(shards, newShard[K, V](cap))
	}

	if len(shards) == 0 {
		return nil, ErrNoShardsRemain
	}

	return &Cache[K, V]{
		shards: shards,
		hash:   hash,
	}, nil
}

func (c *Cache[K, V]) shardFor(key K) *shard[K, V] {
	idx := c.hash(key) % uint64(len(c.shards))
	return c.shards[idx]
}

// Get returns the current value for key and marks it most-recently-used.
// The zero value and false are returned on a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.shardFor(key).get(key)
}

// Put inserts or overwrites key. On overwrite, recency is refreshed and no
// eviction occurs. On a new key that overflows the containing shard, the
// least-recently-used key of that shard is evicted.
func (c *Cache[K, V]) Put(key K, value V) {
	c.shardFor(key).put(key, value)
}

// Remove deletes key if present and reports whether a removal occurred.
func (c *Cache[K, V]) Remove(key K) bool {
	return c.shardFor(key).remove(key)
}

// Clear removes every entry across all shards, locking each shard in turn.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.clear()
	}
}

// Size returns the number of entries across all shards at the moment of
// the call. It locks every shard in a fixed order and sums their lengths;
// it is a snapshot, not a linearization point against concurrent mutators
// on other shards.
func (c *Cache[K, V]) Size() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}

// ShardCount returns the number of shards actually constructed, which may
// be fewer than requested if capacity was too small to give every
// requested shard at least one slot.
func (c *Cache[K, V]) ShardCount() int {
	return len(c.shards)
}
