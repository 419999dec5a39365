// File: internal/cache/hash.go
package cache

import (
	"encoding/binary"
	"hash/maphash"
)

// NewInt32Hash returns a HashFunc for int32 keys backed by hash/maphash,
// the same family of hash Go's own map implementation uses internally.
// The seed is drawn once per call (so once per Cache construction) and
// reused for every key afterward, giving the deterministic-within-a-process,
// varies-across-processes behavior the cache's shard selection requires.
func NewInt32Hash() HashFunc[int32] {
	seed := maphash.MakeSeed()
	return func(k int32) uint64 {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(k))
		var h maphash.Hash
		h.SetSeed(seed)
		_, _ = h.Write(buf[:])
		return h.Sum64()
	}
}

// NewStringHash returns a HashFunc for string keys, for callers that shard
// on something other than the primitive integer keyspace used by the KV
// service (e.g. the singleflight dedup key in the request handler uses the
// same string form, though singleflight does its own internal sharding).
func NewStringHash() HashFunc[string] {
	seed := maphash.MakeSeed()
	return func(k string) uint64 {
		var h maphash.Hash
		h.SetSeed(seed)
		_, _ = h.WriteString(k)
		return h.Sum64()
	}
}
