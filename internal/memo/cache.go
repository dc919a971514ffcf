package memo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Signal is the invalidation source. Firing it makes the next lookup of
// every key recompute.
type Signal struct {
	mu  sync.Mutex
	gen uint64
}

// NewSignal creates a signal that has never fired
func NewSignal() *Signal {
	return &Signal{}
}

// Fire invalidates everything cached under earlier generations
func (s *Signal) Fire() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
}

// Generation counts how many times the signal has fired
func (s *Signal) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Stats counts cache traffic
type Stats struct {
	Hits     uint64
	Misses   uint64
	Computes uint64
	Entries  int
}

// Options configures a Cache
type Options[T any] struct {
	Storage Storage[T]
	Signal  *Signal
	Log     logr.Logger
}

// Cache memoizes asynchronous lookups by key. At most one computation per
// key runs at a time; a failed computation stays cached until the signal
// fires or the key is evicted.
type Cache[T any] struct {
	mu      sync.Mutex
	storage Storage[T]
	signal  *Signal
	log     logr.Logger
	stats   Stats

	// running computations, kept even when the storage evicts them
	inflight map[string]*Entry[T]

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a cache. Missing options default to an unbounded map and a
// private signal.
func New[T any](opts Options[T]) *Cache[T] {
	if opts.Storage == nil {
		opts.Storage = NewMapStorage[T]()
	}
	if opts.Signal == nil {
		opts.Signal = NewSignal()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache[T]{
		storage:  opts.Storage,
		signal:   opts.Signal,
		log:      opts.Log.WithName("memo"),
		inflight: make(map[string]*Entry[T]),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Signal returns the invalidation source the cache listens to
func (c *Cache[T]) Signal() *Signal {
	return c.signal
}

// Lookup returns the shared handle for key, starting compute on a miss or
// when the entry predates the latest signal. compute runs on its own
// goroutine with the cache's context, so one waiter giving up does not
// cancel the work for the others.
func (c *Cache[T]) Lookup(key string, compute func(context.Context) (T, error)) *Future[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.signal.Generation()
	if e, ok := c.storage.Get(key); ok {
		if e.Generation == gen {
			c.stats.Hits++
			c.log.V(2).Info("cache hit", "key", key)
			return e.Future
		}
		c.log.V(1).Info("cache entry invalidated", "key", key, "entryGeneration", e.Generation, "generation", gen)
	} else if e, ok := c.inflight[key]; ok && e.Generation == gen && !e.Future.isDone() {
		// evicted while still computing
		c.stats.Hits++
		c.storage.Add(key, e)
		c.log.V(1).Info("cache hit on running computation", "key", key)
		return e.Future
	}

	c.stats.Misses++
	c.stats.Computes++
	f := newFuture[T]()
	e := &Entry[T]{Future: f, Generation: gen}
	c.storage.Add(key, e)
	c.inflight[key] = e
	c.log.V(1).Info("cache miss, computing", "key", key)

	go func() {
		f.run(c.ctx, compute)
		c.mu.Lock()
		if c.inflight[key] == e {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
	}()
	return f
}

// Evict forgets key so the next lookup recomputes it
func (c *Cache[T]) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storage.Remove(key)
	delete(c.inflight, key)
}

// Purge forgets every key
func (c *Cache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storage.Purge()
	c.inflight = make(map[string]*Entry[T])
}

// Stats returns a copy of the counters
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = c.storage.Len()
	return s
}

// Close cancels the context handed to running computations
func (c *Cache[T]) Close() {
	c.cancel()
}

// Key derives a cache key from a stable prefix and the call arguments
func Key(prefix string, args ...any) string {
	if args == nil {
		args = []any{}
	}
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%s_%#v", prefix, args)
	}
	return prefix + "_" + string(b)
}

// Wrap decorates fn so identical arguments share one cached computation.
// The returned function waits on the shared handle with the caller's ctx.
func Wrap[A any, T any](prefix string, c *Cache[T], fn func(context.Context, A) (T, error)) func(context.Context, A) (T, error) {
	return func(ctx context.Context, arg A) (T, error) {
		f := c.Lookup(Key(prefix, arg), func(cctx context.Context) (T, error) {
			return fn(cctx, arg)
		})
		return f.Wait(ctx)
	}
}
