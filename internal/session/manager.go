package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/auth"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// Defaults for session expiry.
const (
	DefaultIdleTimeout      = 30 * time.Minute
	DefaultAbsoluteLifetime = 7 * 24 * time.Hour
)

// ErrSessionExpired is matched by every *ExpiredError.
var ErrSessionExpired = errors.New("session expired")

// ExpiredError reports which limit ended a session.
type ExpiredError struct {
	Reason model.ExpiryReason
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("session expired (%s)", e.Reason)
}

// Is makes errors.Is(err, ErrSessionExpired) true.
func (e *ExpiredError) Is(target error) bool {
	return target == ErrSessionExpired
}

// Config holds session lifetimes.
type Config struct {
	IdleTimeout      time.Duration
	AbsoluteLifetime time.Duration
}

// Manager implements the session lifecycle:
// Absent -> Active -> Expired(idle) | Expired(absolute) | LoggedOut.
type Manager struct {
	store  Store
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

// NewManager creates a Manager. Zero durations in cfg take the defaults.
func NewManager(store Store, cfg Config, logger *slog.Logger) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.AbsoluteLifetime <= 0 {
		cfg.AbsoluteLifetime = DefaultAbsoluteLifetime
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source, for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Config returns the effective lifetimes.
func (m *Manager) Config() Config {
	return m.cfg
}

// Create starts a new session for userID and returns its cookie token.
// Any session bound to previousToken is destroyed first so a client never
// carries a pre-login session identifier into an authenticated state.
func (m *Manager) Create(ctx context.Context, previousToken, userID string) (string, *model.Session, error) {
	if previousToken != "" {
		if err := m.Destroy(ctx, previousToken); err != nil {
			return "", nil, err
		}
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		return "", nil, err
	}

	now := m.now()
	s := &model.Session{
		ID:           auth.TokenHash(token),
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := m.store.Save(ctx, s, m.storeTTL(m.cfg.IdleTimeout)); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}

	return token, s, nil
}

// TouchAndValidate loads the session for token, enforces the idle limit and
// then the absolute limit, and on success advances last activity.
// Expired sessions are deleted before the error is returned.
func (m *Manager) TouchAndValidate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" || auth.ValidateTokenFormat(token) != nil {
		return nil, ErrNoSession
	}

	id := auth.TokenHash(token)
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	now := m.now()
	if expired, reason := s.Expired(now, m.cfg.IdleTimeout, m.cfg.AbsoluteLifetime); expired {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		m.logger.Info("session expired",
			slog.String("user_id", s.UserID),
			slog.String("reason", string(reason)),
		)
		return nil, &ExpiredError{Reason: reason}
	}

	s.Touch(now)
	ttl := s.RemainingLifetime(now, m.cfg.IdleTimeout, m.cfg.AbsoluteLifetime)
	if err := m.store.Update(ctx, s, m.storeTTL(ttl)); err != nil {
		if errors.Is(err, ErrNoSession) {
			// Destroyed between load and touch.
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("touch session: %w", err)
	}

	return s, nil
}

// storeTTL keeps a record for one idle period past its limit, so an access
// shortly after expiry reports ErrSessionExpired rather than ErrNoSession.
func (m *Manager) storeTTL(remaining time.Duration) time.Duration {
	if remaining < 0 {
		remaining = 0
	}
	return remaining + m.cfg.IdleTimeout
}

// Destroy removes the session for token. Unknown or malformed tokens are a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" || auth.ValidateTokenFormat(token) != nil {
		return nil
	}
	if err := m.store.Delete(ctx, auth.TokenHash(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
