// Package session manages server-side sessions bound to opaque cookie tokens.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// ErrNoSession is returned when no live session exists for a token.
var ErrNoSession = errors.New("no session")

// Store persists sessions keyed by token hash.
// Get returns ErrNoSession for unknown or TTL-expired ids.
// Update writes only over a live record and returns ErrNoSession otherwise,
// so a request racing a logout cannot recreate the session.
// Delete of a missing id is not an error.
type Store interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, s *model.Session, ttl time.Duration) error
	Update(ctx context.Context, s *model.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session   model.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory with a per-entry TTL.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore. now may be nil to use time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get returns a copy of the stored session.
func (m *MemoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNoSession
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, id)
		return nil, ErrNoSession
	}
	s := e.session
	return &s, nil
}

// Save stores a copy of s until ttl elapses.
func (m *MemoryStore) Save(_ context.Context, s *model.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[s.ID] = memoryEntry{session: *s, expiresAt: m.now().Add(ttl)}
	return nil
}

// Update replaces a live session and resets its TTL.
func (m *MemoryStore) Update(_ context.Context, s *model.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[s.ID]
	if !ok || !m.now().Before(e.expiresAt) {
		delete(m.entries, s.ID)
		return ErrNoSession
	}
	m.entries[s.ID] = memoryEntry{session: *s, expiresAt: m.now().Add(ttl)}
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

// Sweep drops entries past their TTL and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Run sweeps every interval until ctx is cancelled.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 && logger != nil {
				logger.Debug("expired sessions swept", slog.Int("removed", n))
			}
		}
	}
}
