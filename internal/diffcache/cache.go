// Package diffcache memoizes line diffs keyed by the (old, new) text pair so that
// redrawing a comparison does not recompute it.
package diffcache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/epuerta/kori/internal/linediff"
	"github.com/epuerta/kori/internal/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries is used when Options.MaxEntries is not positive.
const DefaultMaxEntries = 64

// Options configures a Cache.
type Options struct {
	// MaxEntries bounds the number of memoized results. Least recently used
	// entries are evicted first.
	MaxEntries int

	// Logger receives debug messages. Nil disables logging.
	Logger logging.Logger
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

type entry struct {
	key    string
	result linediff.Result
}

// Cache is a bounded LRU of linediff results.
//
// Thread Safety: safe for concurrent use. Concurrent requests for the same pair share
// a single computation. Returned results are shared and must not be modified.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front is most recently used
	flight  singleflight.Group

	maxEntries int
	logger     logging.Logger
	compute    func(oldText, newText string) linediff.Result

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates an empty cache.
func New(opts Options) *Cache {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNilLogger()
	}
	if err := initMetrics(); err != nil {
		opts.Logger.Log("diffcache: metrics disabled: %v", err)
	}
	return &Cache{
		entries:    make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: opts.MaxEntries,
		logger:     opts.Logger,
		compute:    linediff.Diff,
	}
}

// Diff returns linediff.Diff(oldText, newText), computing it at most once per pair
// while the pair stays cached.
//
// If ctx is done before the result is available, Diff returns ctx.Err(). The
// computation itself keeps running and its result is still cached.
func (c *Cache) Diff(ctx context.Context, oldText, newText string) (linediff.Result, error) {
	if err := ctx.Err(); err != nil {
		return linediff.Result{}, err
	}

	key := Key(oldText, newText)
	if res, ok := c.lookup(key); ok {
		c.hits.Add(1)
		if cacheHits != nil {
			cacheHits.Add(ctx, 1)
		}
		return res, nil
	}
	c.misses.Add(1)
	if cacheMisses != nil {
		cacheMisses.Add(ctx, 1)
	}

	// Detached so a cancelled caller does not cut off peers sharing the flight.
	computeCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		if res, ok := c.lookup(key); ok {
			return res, nil
		}
		return c.computeAndStore(computeCtx, key, oldText, newText), nil
	})

	select {
	case <-ctx.Done():
		return linediff.Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return linediff.Result{}, r.Err
		}
		res, ok := r.Val.(linediff.Result)
		if !ok {
			return linediff.Result{}, fmt.Errorf("diffcache: unexpected flight value %T", r.Val)
		}
		return res, nil
	}
}

func (c *Cache) computeAndStore(ctx context.Context, key, oldText, newText string) linediff.Result {
	ctx, span := tracer.Start(ctx, "diffcache.compute", trace.WithAttributes(
		attribute.Int("old_bytes", len(oldText)),
		attribute.Int("new_bytes", len(newText)),
	))
	defer span.End()

	start := time.Now()
	res := c.compute(oldText, newText)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int("rows", res.Rows()))
	if computeSeconds != nil {
		computeSeconds.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.Bool("changed", !res.Equal())))
	}
	if c.logger.IsEnabled() {
		c.logger.Log("diffcache: computed %s… in %s (%d rows)", key[:12], elapsed, res.Rows())
	}

	c.store(ctx, key, res)
	return res
}

// lookup returns a cached result and marks it most recently used.
func (c *Cache) lookup(key string) (linediff.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return linediff.Result{}, false
	}
	c.lru.MoveToFront(el)
	return el.Value.(*entry).result, true
}

func (c *Cache) store(ctx context.Context, key string, res linediff.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).result = res
		c.lru.MoveToFront(el)
		return
	}
	c.entries[key] = c.lru.PushFront(&entry{key: key, result: res})

	for c.lru.Len() > c.maxEntries {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		evicted := oldest.Value.(*entry)
		delete(c.entries, evicted.key)
		c.evictions.Add(1)
		if cacheEvictions != nil {
			cacheEvictions.Add(ctx, 1)
		}
		if c.logger.IsEnabled() {
			c.logger.Log("diffcache: evicted %s…", evicted.key[:12])
		}
	}
}

// Stats returns hit, miss and eviction counters and the current size.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	n := c.lru.Len()
	c.mu.Unlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   n,
	}
}

// Purge drops every cached result. Counters are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Key identifies a text pair. Each text is length-prefixed so that different splits
// of the same concatenation never collide.
func Key(oldText, newText string) string {
	h := sha256.New()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(oldText)))
	h.Write(n[:])
	h.Write([]byte(oldText))
	binary.BigEndian.PutUint64(n[:], uint64(len(newText)))
	h.Write(n[:])
	h.Write([]byte(newText))
	return hex.EncodeToString(h.Sum(nil))
}
