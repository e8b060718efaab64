package ratelimit

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"
)

const (
	shardCount = 64
	// DefaultMaxKeys bounds the number of tracked identifiers across all shards.
	DefaultMaxKeys = 100_000
)

type bucket struct {
	attempts []time.Time
	window   time.Duration
	max      int
}

// idle reports whether every attempt has left the window.
func (b *bucket) idle(now time.Time) bool {
	if len(b.attempts) == 0 {
		return true
	}
	return !b.attempts[len(b.attempts)-1].After(now.Add(-b.window))
}

// lockedOut reports whether the bucket would deny its next attempt.
func (b *bucket) lockedOut(now time.Time) bool {
	cutoff := now.Add(-b.window)
	live := 0
	for _, at := range b.attempts {
		if at.After(cutoff) {
			live++
		}
	}
	return live >= b.max
}

type shard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// Memory is a process-local Limiter. Identifiers are spread over mutex-guarded
// shards so unrelated identifiers do not contend.
type Memory struct {
	shards      [shardCount]shard
	now         func() time.Time
	maxPerShard int
	logger      *slog.Logger
}

// Option configures a Memory limiter.
type Option func(*Memory)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// WithMaxKeys caps the number of identifiers tracked at once.
func WithMaxKeys(n int) Option {
	return func(m *Memory) {
		per := n / shardCount
		if per < 1 {
			per = 1
		}
		m.maxPerShard = per
	}
}

// WithLogger sets the logger used by the sweeper.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Memory) { m.logger = logger }
}

// NewMemory returns an in-memory sliding-window limiter.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		now:         time.Now,
		maxPerShard: DefaultMaxKeys / shardCount,
		logger:      slog.Default(),
	}
	for i := range m.shards {
		m.shards[i].buckets = make(map[string]*bucket)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Check prunes, decides and records under the identifier's shard lock.
func (m *Memory) Check(ctx context.Context, identifier string, maxAttempts int, window time.Duration) (Result, error) {
	if maxAttempts <= 0 || window <= 0 {
		return Result{}, ErrInvalidLimit
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	s := m.shardFor(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := m.now()
	b, ok := s.buckets[identifier]
	if !ok {
		if len(s.buckets) >= m.maxPerShard && !m.makeRoomLocked(s, now) {
			return Result{}, ErrCapacity
		}
		b = &bucket{}
		s.buckets[identifier] = b
	}
	b.window = window
	b.max = maxAttempts

	var res Result
	b.attempts, res = decide(b.attempts, now, maxAttempts, window)
	return res, nil
}

// Sweep evicts buckets whose newest attempt has left its window and
// returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	removed := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for id, b := range s.buckets {
			if b.idle(now) {
				delete(s.buckets, id)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("rate limit buckets swept", slog.Int("removed", n))
			}
		}
	}
}

// Len returns the number of tracked identifiers.
func (m *Memory) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		n += len(s.buckets)
		s.mu.Unlock()
	}
	return n
}

// makeRoomLocked frees a slot in a full shard and reports whether it did.
// Idle buckets go first. Otherwise the bucket with the oldest latest attempt
// among those not locked out is dropped. Locked-out buckets are never
// evicted, so a flood of fresh identifiers cannot lift a lockout; when every
// bucket is locked out the new identifier is refused instead.
func (m *Memory) makeRoomLocked(s *shard, now time.Time) bool {
	for id, b := range s.buckets {
		if b.idle(now) {
			delete(s.buckets, id)
		}
	}
	if len(s.buckets) < m.maxPerShard {
		return true
	}

	var (
		victim string
		oldest time.Time
		found  bool
	)
	for id, b := range s.buckets {
		if b.lockedOut(now) {
			continue
		}
		last := b.attempts[len(b.attempts)-1]
		if !found || last.Before(oldest) {
			victim, oldest, found = id, last, true
		}
	}
	if !found {
		m.logger.Warn("rate limit shard full of locked-out buckets, refusing new identifier")
		return false
	}
	delete(s.buckets, victim)
	m.logger.Warn("rate limit shard full, evicted bucket")
	return true
}

func (m *Memory) shardFor(identifier string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return &m.shards[h.Sum32()%shardCount]
}
