package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache lookup outcomes reported by ExpiringValue.Get
const (
	OutcomeHit    = "hit"
	OutcomeMiss   = "miss"
	OutcomeShared = "shared"
)

// ExpiringValue holds a single value that is refreshed by a loader once it is older than ttl.  Concurrent callers
// that miss at the same time share one load.  Failed loads are never stored.
//
// The shared load is detached from the cancellation of whichever caller started it and is bounded by loadTimeout
// instead.  A caller whose own context ends stops waiting without failing the others.
type ExpiringValue[T any] struct {
	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time

	mu        sync.Mutex
	value     T
	expiresAt time.Time
	valid     bool

	group singleflight.Group
}

// NewExpiringValue creates an empty cache entry with the given time to live.  A loadTimeout of 0 leaves the shared
// load unbounded.
func NewExpiringValue[T any](ttl, loadTimeout time.Duration) *ExpiringValue[T] {
	return &ExpiringValue[T]{ttl: ttl, loadTimeout: loadTimeout, now: time.Now}
}

// Get returns the cached value if it has not expired, otherwise calls load and stores its result.  The second
// return value is one of OutcomeHit, OutcomeMiss or OutcomeShared.
func (c *ExpiringValue[T]) Get(ctx context.Context, load func(context.Context) (T, error)) (T, string, error) {
	if v, ok := c.peek(); ok {
		return v, OutcomeHit, nil
	}

	ch := c.group.DoChan("value", func() (interface{}, error) {
		// Another caller may have filled the value between peek and DoChan
		if v, ok := c.peek(); ok {
			return v, nil
		}

		loadCtx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
			defer cancel()
		}

		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.store(v)
		return v, nil
	})

	select {
	case res := <-ch:
		outcome := OutcomeMiss
		if res.Shared {
			outcome = OutcomeShared
		}
		v, _ := res.Val.(T)
		return v, outcome, res.Err
	case <-ctx.Done():
		var zero T
		return zero, OutcomeMiss, ctx.Err()
	}
}

// Invalidate drops the cached value so the next Get loads again
func (c *ExpiringValue[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.valid = false
	c.expiresAt = time.Time{}
}

func (c *ExpiringValue[T]) peek() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || !c.now().Before(c.expiresAt) {
		var zero T
		return zero, false
	}
	return c.value, true
}

func (c *ExpiringValue[T]) store(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.valid = true
	c.expiresAt = c.now().Add(c.ttl)
}
