// File: internal/handler/handler.go
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/alanaman/KvServerLoadTest/internal/cache"
	"github.com/alanaman/KvServerLoadTest/internal/pool"
)

// KVStore is the only surface the handler requires from the backing
// store: get, upsert, delete, scoped to a single connection.
// *store.Adapter satisfies this; tests use a hand-rolled fake instead
// of a mocking framework.
type KVStore interface {
	Get(ctx context.Context, key int32) (value string, ok bool, err error)
	Upsert(ctx context.Context, key int32, value string) error
	Delete(ctx context.Context, key int32) error
}

// errAbsent is the singleflight group's private miss-then-absent
// sentinel; it never escapes HandleGet as a returned error, only as
// the 404 status.
var errAbsent = errors.New("handler: key absent in store")

// Handler routes the three key-value operations into the cache and
// store, implementing read-through-with-cache and write-invalidate.
// Its counters are exact atomics rather than plain integers, so they
// never drift under concurrent access.
type Handler struct {
	cache *cache.ByteCache
	pool  *pool.Pool[KVStore]

	totalGets atomic.Int64
	cacheHits atomic.Int64

	// misses dedups concurrent cache-miss reads for the same key so a
	// thundering herd on one cold key costs one store round trip.
	misses singleflight.Group
}

// New builds a Handler over an already-constructed cache and
// connection pool; the handler owns no lifecycle for either.
func New(c *cache.ByteCache, p *pool.Pool[KVStore]) *Handler {
	return &Handler{cache: c, pool: p}
}

// HandleGet implements the GET operation: increment totalGets, probe
// the cache, and on miss acquire a connection and load from the store.
func (h *Handler) HandleGet(ctx context.Context, key int32) (value []byte, status int, err error) {
	h.totalGets.Add(1)

	if v, ok := h.cache.Get(key); ok {
		h.cacheHits.Add(1)
		return v, 200, nil
	}

	dedupKey := strconv.FormatInt(int64(key), 10)
	v, err, _ := h.misses.Do(dedupKey, func() (interface{}, error) {
		conn, err := h.pool.Acquire()
		if err != nil {
			return nil, fmt.Errorf("acquire connection: %w", err)
		}
		defer conn.Release()

		value, ok, err := conn.Get().Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errAbsent
		}

		raw := []byte(value)
		h.cache.Put(key, raw)
		return raw, nil
	})

	if err != nil {
		if errors.Is(err, errAbsent) {
			return nil, 404, nil
		}
		return nil, 500, err
	}
	return v.([]byte), 200, nil
}

// HandlePut implements the PUT operation: upsert the store, then
// invalidate (never write-through) the cache entry for key.
func (h *Handler) HandlePut(ctx context.Context, key int32, value []byte) (status int, err error) {
	conn, err := h.pool.Acquire()
	if err != nil {
		return 500, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if err := conn.Get().Upsert(ctx, key, string(value)); err != nil {
		return 500, err
	}

	h.cache.Remove(key)
	return 200, nil
}

// HandleDelete implements the DELETE operation: remove the row, then
// invalidate the cache entry for key.
func (h *Handler) HandleDelete(ctx context.Context, key int32) (status int, err error) {
	conn, err := h.pool.Acquire()
	if err != nil {
		return 500, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if err := conn.Get().Delete(ctx, key); err != nil {
		return 500, err
	}

	h.cache.Remove(key)
	return 200, nil
}

// Status returns the root endpoint's plain-text counter summary.
func (h *Handler) Status() string {
	return fmt.Sprintf("totalGets:%d\ncacheHits:%d\n", h.totalGets.Load(), h.cacheHits.Load())
}

// TotalGets and CacheHits return the current counter values; they are
// not part of the core contract, only observability. The /metrics route
// does not export them.
func (h *Handler) TotalGets() int64 { return h.totalGets.Load() }
func (h *Handler) CacheHits() int64 { return h.cacheHits.Load() }

// CacheSize exposes the cache's snapshot size; /metrics does not export it.
func (h *Handler) CacheSize() int { return h.cache.Size() }

// PoolStats exposes the pool's idle/total counts; /metrics does not
// export them.
func (h *Handler) PoolStats() (idle, total int) {
	return h.pool.IdleCount(), h.pool.TotalCount()
}
