package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/session"
)

// sessionPrefix is the Redis key prefix for session records.
const sessionPrefix = "session:"

// cachedSession is the JSON shape of a session in Redis.
type cachedSession struct {
	UserID       string `json:"user_id"`
	CreatedAt    int64  `json:"created_at"`
	LastActivity int64  `json:"last_activity"`
}

// SessionStore is a session.Store backed by Redis string keys with TTLs.
type SessionStore struct {
	cache *Cache
}

// NewSessionStore returns a Redis session store.
func (c *Cache) NewSessionStore() *SessionStore {
	return &SessionStore{cache: c}
}

// Get loads a session. A missing key is session.ErrNoSession.
func (s *SessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.cache.client.Get(ctx, s.cache.key(sessionPrefix, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNoSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted entry - treat as absent
		_ = s.cache.client.Del(ctx, s.cache.key(sessionPrefix, id)).Err()
		return nil, session.ErrNoSession
	}

	return &model.Session{
		ID:           id,
		UserID:       cached.UserID,
		CreatedAt:    time.UnixMicro(cached.CreatedAt).UTC(),
		LastActivity: time.UnixMicro(cached.LastActivity).UTC(),
	}, nil
}

// Save writes the session with the given TTL.
func (s *SessionStore) Save(ctx context.Context, sess *model.Session, ttl time.Duration) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	return s.cache.client.Set(ctx, s.cache.key(sessionPrefix, sess.ID), data, ttl).Err()
}

// Update rewrites a session only if its key still exists (SET XX).
func (s *SessionStore) Update(ctx context.Context, sess *model.Session, ttl time.Duration) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}

	ok, err := s.cache.client.SetXX(ctx, s.cache.key(sessionPrefix, sess.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if !ok {
		return session.ErrNoSession
	}
	return nil
}

func encodeSession(sess *model.Session) ([]byte, error) {
	data, err := json.Marshal(cachedSession{
		UserID:       sess.UserID,
		CreatedAt:    sess.CreatedAt.UnixMicro(),
		LastActivity: sess.LastActivity.UnixMicro(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

// Delete removes a session key.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.client.Del(ctx, s.cache.key(sessionPrefix, id)).Err()
}
