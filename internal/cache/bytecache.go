// File: internal/cache/bytecache.go
package cache

import (
	"github.com/golang/snappy"
)

// compressionThreshold is the value size at or above which ByteCache transparently
// snappy-compresses an entry before storing it. Below the threshold the raw
// bytes are kept inline — compression overhead is not worth it for small
// values such as the "value-<k>" bodies the workloads generate.
const compressionThreshold = 256

const (
	magicRaw    byte = 0
	magicSnappy byte = 1
)

// ByteCache wraps a Cache[int32, []byte] and transparently compresses
// large values behind a one-byte format tag. It is purely an internal
// storage detail: Get always returns exactly the bytes passed to Put.
type ByteCache struct {
	inner *Cache[int32, []byte]
}

// NewByteCache builds a ByteCache with the given total capacity spread
// across shardCount shards.
func NewByteCache(capacity, shardCount int) (*ByteCache, error) {
	inner, err := New[int32, []byte](capacity, shardCount, NewInt32Hash())
	if err != nil {
		return nil, err
	}
	return &ByteCache{inner: inner}, nil
}

// Get returns the current value for key and marks it most-recently-used.
func (c *ByteCache) Get(key int32) ([]byte, bool) {
	stored, ok := c.inner.Get(key)
	if !ok {
		return nil, false
	}
	return decode(stored), true
}

// Put inserts or overwrites key.
func (c *ByteCache) Put(key int32, value []byte) {
	c.inner.Put(key, encode(value))
}

// Remove deletes key if present and reports whether a removal occurred.
func (c *ByteCache) Remove(key int32) bool {
	return c.inner.Remove(key)
}

// Clear removes every entry across all shards.
func (c *ByteCache) Clear() {
	c.inner.Clear()
}

// Size returns the number of entries across all shards at the moment of
// the call; see Cache.Size for the snapshot caveat.
func (c *ByteCache) Size() int {
	return c.inner.Size()
}

func encode(value []byte) []byte {
	if len(value) < compressionThreshold {
		out := make([]byte, 1+len(value))
		out[0] = magicRaw
		copy(out[1:], value)
		return out
	}
	compressed := snappy.Encode(nil, value)
	out := make([]byte, 1+len(compressed))
	out[0] = magicSnappy
	copy(out[1:], compressed)
	return out
}

func decode(stored []byte) []byte {
	if len(stored) == 0 {
		return stored
	}
	magic, payload := stored[0], stored[1:]
	if magic == magicSnappy {
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			// Corrupt entry: return an empty value rather than panicking
			// the handler goroutine; Get still reports it as a hit.
			return nil
		}
		return decoded
	}
	return payload
}
