package query

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/taskflow/internal/client/metrics"
)

const (
	defaultTTL     = 5 * time.Minute
	defaultMaxSize = 500
)

type Config struct {
	TTL     time.Duration
	MaxSize int
}

// Stats are counters for diagnostics.
type Stats struct {
	Hits          int64         `json:"hits"`
	Misses        int64         `json:"misses"`
	Sets          int64         `json:"sets"`
	Invalidations int64         `json:"invalidations"`
	Evictions     int64         `json:"evictions"`
	Stale         int64         `json:"stale"`
	Size          int           `json:"size"`
	TTL           time.Duration `json:"ttl"`
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is what a view renders for one key.
type State struct {
	Status    Status
	Value     any
	Err       error
	FetchedAt time.Time
}

// slot is the per-key record. issued counts requests started for the key;
// floor is the highest request number whose result may no longer be stored.
type slot struct {
	value     any
	has       bool
	fetchedAt time.Time
	err       error
	issued    uint64
	floor     uint64
	loading   int
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

func WithMetrics(m *metrics.Metrics) Option { return func(c *Cache) { c.metrics = m } }

// Cache stores fetch results per Key.
type Cache struct {
	mu      sync.Mutex
	slots   map[Key]*slot
	sf      singleflight.Group
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	metrics *metrics.Metrics

	hits          int64
	misses        int64
	sets          int64
	invalidations int64
	evictions     int64
	stale         int64
}

func NewCache(cfg Config, opts ...Option) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultMaxSize
	}
	c := &Cache{
		slots:   make(map[Key]*slot),
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch returns the cached value for key, or calls fn and caches its
// result. Concurrent fetches of one key share a single call. Errors are
// recorded in State but not cached.
func (c *Cache) Fetch(ctx context.Context, key Key, fn func(context.Context) (any, error)) (any, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.sf.Do(string(key), func() (any, error) {
		s, seq := c.begin(key)
		v, err := fn(ctx)
		return c.finish(key, s, seq, v, err)
	})
	return v, err
}

// Get is Fetch with a typed result.
func Get[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) { return fn(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (c *Cache) lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok || !s.has || c.now().Sub(s.fetchedAt) > c.ttl {
		atomic.AddInt64(&c.misses, 1)
		c.metrics.CacheMiss(key.Kind())
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	c.metrics.CacheHit(key.Kind())
	return s.value, true
}

// begin registers a request for key and returns the slot it belongs to
// together with its request number.
func (c *Cache) begin(key Key) (*slot, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok {
		c.evictLocked()
		s = &slot{}
		c.slots[key] = s
		c.metrics.SetCacheEntries(len(c.slots))
	}
	s.issued++
	s.loading++
	return s, s.issued
}

func (c *Cache) finish(key Key, s *slot, seq uint64, v any, err error) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s.loading--

	// the cache was cleared while loading; the result belongs to nobody
	if cur, ok := c.slots[key]; !ok || cur != s {
		atomic.AddInt64(&c.stale, 1)
		c.metrics.StaleDiscarded(key.Kind())
		return v, err
	}

	// a newer result or an invalidation already superseded this request
	if seq <= s.floor {
		atomic.AddInt64(&c.stale, 1)
		c.metrics.StaleDiscarded(key.Kind())
		if err == nil && s.has {
			return s.value, nil
		}
		return v, err
	}

	if err != nil {
		if seq == s.issued {
			s.err = err
		}
		return nil, err
	}

	s.value, s.has, s.err = v, true, nil
	s.fetchedAt = c.now()
	s.floor = seq
	atomic.AddInt64(&c.sets, 1)
	return v, nil
}

// evictLocked drops the oldest idle slot when the cache is full.
func (c *Cache) evictLocked() {
	if len(c.slots) < c.maxSize {
		return
	}
	var (
		victim Key
		oldest time.Time
		found  bool
	)
	for k, s := range c.slots {
		if s.loading > 0 {
			continue
		}
		if !found || s.fetchedAt.Before(oldest) {
			victim, oldest, found = k, s.fetchedAt, true
		}
	}
	if found {
		delete(c.slots, victim)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// Invalidate drops every entry under any of prefixes. Requests already in
// flight for those keys can no longer store their result. It returns the
// number of keys affected.
func (c *Cache) Invalidate(prefixes ...Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, s := range c.slots {
		if !matchesAny(k, prefixes) {
			continue
		}
		s.value, s.has, s.err = nil, false, nil
		s.floor = s.issued
		c.sf.Forget(string(k))
		n++
	}
	atomic.AddInt64(&c.invalidations, int64(n))
	return n
}

func matchesAny(k Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if k.HasPrefix(p) {
			return true
		}
	}
	return false
}

// State snapshots key for rendering.
func (c *Cache) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok {
		return State{Status: StatusIdle}
	}
	st := State{Value: s.value, Err: s.err, FetchedAt: s.fetchedAt}
	switch {
	case s.loading > 0:
		st.Status = StatusLoading
	case s.err != nil:
		st.Status = StatusError
	case s.has:
		st.Status = StatusSuccess
	default:
		st.Status = StatusIdle
	}
	return st
}

// Clear drops everything, e.g. on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, s := range c.slots {
		s.floor = s.issued
		c.sf.Forget(string(k))
	}
	c.slots = make(map[Key]*slot)
	c.metrics.SetCacheEntries(0)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:          atomic.LoadInt64(&c.hits),
		Misses:        atomic.LoadInt64(&c.misses),
		Sets:          atomic.LoadInt64(&c.sets),
		Invalidations: atomic.LoadInt64(&c.invalidations),
		Evictions:     atomic.LoadInt64(&c.evictions),
		Stale:         atomic.LoadInt64(&c.stale),
		Size:          c.Len(),
		TTL:           c.ttl,
	}
}
