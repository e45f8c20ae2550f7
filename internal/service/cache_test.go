package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(ttl time.Duration) (*ExpiringValue[int], *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewExpiringValue[int](ttl, 0)
	c.now = clock.Now
	return c, clock
}

func TestExpiringValueReusesFreshValue(t *testing.T) {
	c, clock := newTestCache(time.Hour)
	var loads atomic.Int32
	load := func(context.Context) (int, error) {
		return int(loads.Add(1)), nil
	}

	v, outcome, err := c.Get(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, OutcomeMiss, outcome)

	clock.Advance(59 * time.Minute)
	v, outcome, err = c.Get(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, OutcomeHit, outcome)
	assert.Equal(t, int32(1), loads.Load())
}

func TestExpiringValueReloadsAfterExpiry(t *testing.T) {
	c, clock := newTestCache(time.Hour)
	var loads atomic.Int32
	load := func(context.Context) (int, error) {
		return int(loads.Add(1)), nil
	}

	_, _, _ = c.Get(context.Background(), load)
	clock.Advance(time.Hour)

	v, outcome, err := c.Get(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, OutcomeMiss, outcome)

	// Only one new load for the whole next window
	_, _, _ = c.Get(context.Background(), load)
	assert.Equal(t, int32(2), loads.Load())
}

func TestExpiringValueDoesNotStoreErrors(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	boom := errors.New("boom")
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}

	_, _, err := c.Get(context.Background(), load)
	assert.ErrorIs(t, err, boom)

	v, outcome, err := c.Get(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, OutcomeMiss, outcome)
	assert.Equal(t, 2, calls)
}

func TestExpiringValueInvalidate(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	var loads atomic.Int32
	load := func(context.Context) (int, error) {
		return int(loads.Add(1)), nil
	}

	_, _, _ = c.Get(context.Background(), load)
	c.Invalidate()
	v, _, err := c.Get(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestExpiringValueConcurrentMissLoadsOnce(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	var loads atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		loads.Add(1)
		<-release
		return 42, nil
	}

	const callers = 20
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	results := make([]int, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			v, _, err := c.Get(context.Background(), load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	started.Wait()
	// Give every goroutine a chance to join the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), loads.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestExpiringValueCancelledCallerDoesNotFailWaiters(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	var loads atomic.Int32
	loadStarted := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (int, error) {
		loads.Add(1)
		close(loadStarted)
		select {
		case <-release:
			return 42, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, _, err := c.Get(firstCtx, load)
		firstErr <- err
	}()
	<-loadStarted

	type result struct {
		v   int
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, _, err := c.Get(context.Background(), load)
		second <- result{v, err}
	}()
	// Let the second caller join the in-flight load
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, 42, got.v)
	assert.Equal(t, int32(1), loads.Load())

	// The detached load still filled the cache
	v, outcome, err := c.Get(context.Background(), load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, OutcomeHit, outcome)
}

func TestExpiringValueLoadTimeout(t *testing.T) {
	c := NewExpiringValue[int](time.Hour, 20*time.Millisecond)
	load := func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}

	_, _, err := c.Get(context.Background(), load)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
