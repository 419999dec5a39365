// File: internal/pool/pool.go
package pool

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Factory constructs a new resource. It may block on network I/O; it is
// always invoked outside the pool's lock.
type Factory[R any] func() (R, error)

// Pool is a bounded, generic pool of reusable resources. Acquire blocks
// until either an idle resource is available or total created is below
// max size, in which case a new resource is built via Factory. Resources
// are returned via the Handle's Release method rather than a destructor.
type Pool[R any] struct {
	mu            sync.Mutex
	cond          *sync.Cond
	factory       Factory[R]
	maxSize       int
	totalCreated  int
	idle          []pooledResource[R]
}

type pooledResource[R any] struct {
	id       string
	resource R
}

// New builds a Pool that never holds more than maxSize resources (idle +
// in-use) at once, constructing them lazily via factory.
func New[R any](maxSize int, factory Factory[R]) *Pool[R] {
	p := &Pool[R]{
		factory: factory,
		maxSize: maxSize,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Acquire blocks until a resource is available, returning a Handle that
// exclusively owns it until Release is called: wait while idle is empty
// and total created has reached max size; if an idle resource exists
// take it; otherwise reserve a slot, build outside the lock, and roll
// the slot back if construction fails.
func (p *Pool[R]) Acquire() (*Handle[R], error) {
	p.mu.Lock()
	for len(p.idle) == 0 && p.totalCreated >= p.maxSize {
		p.cond.Wait()
	}

	if len(p.idle) > 0 {
		pr := p.idle[0]
		p.idle = p.idle[1:]
		p.mu.Unlock()
		log.Printf("[POOL] acquired %s (reused)", pr.id)
		return &Handle[R]{pool: p, id: pr.id, resource: pr.resource}, nil
	}

	p.totalCreated++
	p.mu.Unlock()

	resource, err := p.factory()
	if err != nil {
		p.mu.Lock()
		p.totalCreated--
		p.mu.Unlock()
		p.cond.Broadcast()
		return nil, err
	}

	id := uuid.NewString()
	log.Printf("[POOL] acquired %s (new)", id)
	return &Handle[R]{pool: p, id: id, resource: resource}, nil
}

// release returns resource to the idle queue and wakes exactly one waiter.
// Invoked by Handle.Release.
func (p *Pool[R]) release(h *Handle[R]) {
	p.mu.Lock()
	p.idle = append(p.idle, pooledResource[R]{id: h.id, resource: h.resource})
	p.mu.Unlock()
	log.Printf("[POOL] released %s", h.id)
	p.cond.Signal()
}

// IdleCount returns the number of resources currently sitting idle.
func (p *Pool[R]) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// TotalCount returns the number of resources created so far (idle + in
// use); it never exceeds maxSize.
func (p *Pool[R]) TotalCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalCreated
}

// Handle is an owning wrapper around a pooled resource. Go has no
// destructors, so callers must `defer h.Release()` immediately after a
// successful Acquire; a sync.Once guards against double release.
//
// Handle carries no compiler-enforced exclusivity, but is intended to be
// used like one: held by a single goroutine for the scope of one
// request, then released exactly once.
type Handle[R any] struct {
	pool     *Pool[R]
	id       string
	resource R
	once     sync.Once
}

// Get returns the underlying resource.
func (h *Handle[R]) Get() R {
	return h.resource
}

// ID returns the resource's pool-assigned identifier, used for log
// correlation rather than anything protocol-visible.
func (h *Handle[R]) ID() string {
	return h.id
}

// Release returns the resource to the originating pool. It is safe to call
// more than once; only the first call has an effect.
func (h *Handle[R]) Release() {
	h.once.Do(func() {
		h.pool.release(h)
	})
}
