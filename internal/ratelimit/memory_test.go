package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock safe for concurrent use.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
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

func TestMemory_LoginBoundary(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	lim := NewMemory(WithClock(clock.Now))
	ctx := context.Background()
	id := Identifier("login", "10.0.0.1", "alice")

	for i := 1; i <= 5; i++ {
		res, err := lim.Check(ctx, id, 5, 300*time.Second)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d should be admitted", i)
		assert.Equal(t, 5-i, res.Remaining)
		clock.Advance(time.Second)
	}

	res, err := lim.Check(ctx, id, 5, 300*time.Second)
	require.NoError(t, err)
	assert.False(t, res.Allowed, "6th attempt should be denied")
	assert.Equal(t, 295*time.Second, res.RetryAfter)
	assert.Equal(t, 295, res.RetryAfterSeconds())

	// Denied attempts are not recorded, so the oldest still decides the retry.
	clock.Advance(100 * time.Second)
	res, err = lim.Check(ctx, id, 5, 300*time.Second)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 195*time.Second, res.RetryAfter)
}

func TestMemory_ResetAfterWindow(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	lim := NewMemory(WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := lim.Check(ctx, "login:ip:bob", 5, 300*time.Second)
		require.NoError(t, err)
	}
	res, _ := lim.Check(ctx, "login:ip:bob", 5, 300*time.Second)
	require.False(t, res.Allowed)

	clock.Advance(301 * time.Second)

	res, err := lim.Check(ctx, "login:ip:bob", 5, 300*time.Second)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "identifier should be fully reset after the window")
	assert.Equal(t, 4, res.Remaining)
}

func TestMemory_SlidingWindowFreesOldestFirst(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	lim := NewMemory(WithClock(clock.Now))
	ctx := context.Background()

	_, _ = lim.Check(ctx, "k", 2, time.Minute)
	clock.Advance(30 * time.Second)
	_, _ = lim.Check(ctx, "k", 2, time.Minute)

	res, _ := lim.Check(ctx, "k", 2, time.Minute)
	require.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, res.RetryAfter)

	// Exactly one window after the first attempt it is pruned.
	clock.Advance(30 * time.Second)
	res, _ = lim.Check(ctx, "k", 2, time.Minute)
	assert.True(t, res.Allowed)
}

func TestMemory_IdentifiersAreIndependent(t *testing.T) {
	t.Parallel()

	lim := NewMemory()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = lim.Check(ctx, "register:1.1.1.1", 3, time.Hour)
	}
	res, _ := lim.Check(ctx, "register:1.1.1.1", 3, time.Hour)
	assert.False(t, res.Allowed)

	res, _ = lim.Check(ctx, "register:2.2.2.2", 3, time.Hour)
	assert.True(t, res.Allowed)
}

func TestMemory_ConcurrentChecksNeverExceedLimit(t *testing.T) {
	t.Parallel()

	lim := NewMemory()
	ctx := context.Background()

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := lim.Check(ctx, "login:nat:alice", 5, time.Minute)
			if err == nil && res.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), admitted.Load())
}

func TestMemory_InvalidLimit(t *testing.T) {
	t.Parallel()

	lim := NewMemory()
	_, err := lim.Check(context.Background(), "x", 0, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	_, err = lim.Check(context.Background(), "x", 5, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestMemory_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory().Check(ctx, "x", 5, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemory_Sweep(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	lim := NewMemory(WithClock(clock.Now))
	ctx := context.Background()

	_, _ = lim.Check(ctx, "short", 5, time.Minute)
	_, _ = lim.Check(ctx, "long", 5, time.Hour)
	require.Equal(t, 2, lim.Len())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, lim.Sweep())
	assert.Equal(t, 1, lim.Len())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, lim.Sweep())
	assert.Equal(t, 0, lim.Len())
}

func TestMemory_MaxKeysEvicts(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	// One identifier per shard.
	lim := NewMemory(WithClock(clock.Now), WithMaxKeys(shardCount))
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_, err := lim.Check(ctx, Identifier("k", time.Duration(i).String()), 5, time.Hour)
		require.NoError(t, err)
		clock.Advance(time.Millisecond)
	}

	assert.LessOrEqual(t, lim.Len(), shardCount)
}

func TestMemory_FullShardKeepsLockout(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	// Two identifiers per shard.
	lim := NewMemory(WithClock(clock.Now), WithMaxKeys(2*shardCount))
	ctx := context.Background()

	locked := "login:10.0.0.1:alice"
	for i := 0; i < 5; i++ {
		_, err := lim.Check(ctx, locked, 5, 5*time.Minute)
		require.NoError(t, err)
	}

	// Collect identifiers that land in the locked bucket's shard.
	target := lim.shardFor(locked)
	var sameShard []string
	for i := 0; len(sameShard) < 4; i++ {
		id := Identifier("login", "10.9.9.9", fmt.Sprintf("user%d", i))
		if lim.shardFor(id) == target {
			sameShard = append(sameShard, id)
		}
	}

	// An unlocked neighbour may be evicted to make room.
	for _, id := range sameShard[:2] {
		clock.Advance(time.Second)
		res, err := lim.Check(ctx, id, 5, 5*time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	// Lock the remaining neighbour too; now nothing in the shard is evictable.
	for i := 0; i < 4; i++ {
		_, err := lim.Check(ctx, sameShard[1], 5, 5*time.Minute)
		require.NoError(t, err)
	}
	_, err := lim.Check(ctx, sameShard[2], 5, 5*time.Minute)
	assert.ErrorIs(t, err, ErrCapacity)

	res, err := lim.Check(ctx, locked, 5, 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed, "flooding the shard must not lift the lockout")

	// Once the window passes, the shard frees up again.
	clock.Advance(6 * time.Minute)
	res, err = lim.Check(ctx, sameShard[3], 5, 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemory_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	lim := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		lim.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestResult_RetryAfterSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Millisecond, 1},
		{1500 * time.Millisecond, 2},
		{300 * time.Second, 300},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Result{RetryAfter: tt.in}.RetryAfterSeconds(), "RetryAfter=%v", tt.in)
	}
}

func TestIdentifier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "login:127.0.0.1:alice", Identifier("login", "127.0.0.1", "alice"))
	assert.Equal(t, "register:127.0.0.1", Identifier("register", "127.0.0.1"))
}
