//go:build integration

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/session"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/testutil"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	ctx := context.Background()

	c, err := New(ctx, testutil.RequireEnv(t, "REDIS_URL"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, testutil.FlushRedis(ctx, c.Client()))
	return c
}

func TestRateLimiter_Boundary(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	base := time.Now()
	now := base
	lim := c.NewRateLimiter()
	lim.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		res, err := lim.Check(ctx, "login:10.0.0.1:alice", 5, 300*time.Second)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d", i+1)
		now = now.Add(time.Second)
	}

	res, err := lim.Check(ctx, "login:10.0.0.1:alice", 5, 300*time.Second)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 295*time.Second, res.RetryAfter)

	now = base.Add(301 * time.Second)
	res, err = lim.Check(ctx, "login:10.0.0.1:alice", 5, 300*time.Second)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "bucket should reset after the window")
}

func TestRateLimiter_Concurrent(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	lim := c.NewRateLimiter()

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := lim.Check(ctx, "register:203.0.113.7", 10, time.Hour)
			if err != nil {
				t.Errorf("Check: %v", err)
				return
			}
			if res.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), admitted.Load())
}

func TestSessionStore_RoundTripAndTTL(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	store := c.NewSessionStore()

	created := time.Now().UTC().Truncate(time.Microsecond)
	in := &model.Session{ID: "abc", UserID: "user-1", CreatedAt: created, LastActivity: created}
	require.NoError(t, store.Save(ctx, in, time.Minute))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.CreatedAt.Equal(created))

	ttl, err := c.Client().TTL(ctx, c.key(sessionPrefix, "abc")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestSessionStore_WithManager(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	m := session.NewManager(c.NewSessionStore(), session.Config{}, nil)
	token, _, err := m.Create(ctx, "", "user-9")
	require.NoError(t, err)

	s, err := m.TouchAndValidate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", s.UserID)

	require.NoError(t, m.Destroy(ctx, token))
	_, err = m.TouchAndValidate(ctx, token)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestSessionStore_UpdateDoesNotRecreate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	store := c.NewSessionStore()

	now := time.Now().UTC()
	sess := &model.Session{ID: "gone", UserID: "user-1", CreatedAt: now, LastActivity: now}
	require.NoError(t, store.Save(ctx, sess, time.Minute))

	sess.LastActivity = now.Add(time.Second)
	require.NoError(t, store.Update(ctx, sess, time.Minute))

	require.NoError(t, store.Delete(ctx, "gone"))
	err := store.Update(ctx, sess, time.Minute)
	assert.ErrorIs(t, err, session.ErrNoSession)

	exists, err := c.Client().Exists(ctx, c.key(sessionPrefix, "gone")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
