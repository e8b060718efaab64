package model

import "time"

// ExpiryReason describes why a session stopped being valid.
type ExpiryReason string

const (
	ExpiryIdle     ExpiryReason = "idle"
	ExpiryAbsolute ExpiryReason = "absolute"
)

// Session is the server-side record behind a session cookie.
// ID is the hash of the opaque cookie token; the token itself is never stored.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Expired reports whether the session is past its idle or absolute limit at now.
// The idle limit is checked first.
func (s *Session) Expired(now time.Time, idle, absolute time.Duration) (bool, ExpiryReason) {
	if now.Sub(s.LastActivity) > idle {
		return true, ExpiryIdle
	}
	if now.Sub(s.CreatedAt) > absolute {
		return true, ExpiryAbsolute
	}
	return false, ""
}

// Touch advances LastActivity to now. It never moves backwards.
func (s *Session) Touch(now time.Time) {
	if now.After(s.LastActivity) {
		s.LastActivity = now
	}
}

// RemainingLifetime returns how long the session may live at most from now,
// bounded by both limits.
func (s *Session) RemainingLifetime(now time.Time, idle, absolute time.Duration) time.Duration {
	untilIdle := s.LastActivity.Add(idle).Sub(now)
	untilAbsolute := s.CreatedAt.Add(absolute).Sub(now)
	if untilAbsolute < untilIdle {
		return untilAbsolute
	}
	return untilIdle
}

// Identity is the authenticated principal attached to a request
// after its session has been validated.
type Identity struct {
	UserID    string
	SessionID string
}
