package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/auth"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/metrics"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/repository"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/session"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// AuthService handles registration, login and logout.
type AuthService struct {
	users    UserStore
	sessions *session.Manager
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions *session.Manager, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		metrics:  recorder,
		logger:   logger,
		now:      nowUTC,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	PreviousToken string
}

// LoginInput defines input for logging in.
type LoginInput struct {
	Username      string
	Password      string
	PreviousToken string
}

// AuthResult is an authenticated user with a fresh session.
type AuthResult struct {
	User    *model.User
	Token   string
	Session *model.Session
}

// Register validates credentials, creates the user and starts a session.
// Validation failures are returned as *auth.ValidationError.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := auth.SanitizeString(in.Username)
	email := auth.SanitizeString(in.Email)

	if err := auth.ValidateCredentials(username, email, in.Password); err != nil {
		s.metrics.IncRegistration(metrics.OutcomeFailure)
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           newID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		s.metrics.IncRegistration(metrics.OutcomeFailure)
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		default:
			return nil, fmt.Errorf("create user: %w", err)
		}
	}

	token, sess, err := s.sessions.Create(ctx, in.PreviousToken, user.ID)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	s.metrics.IncRegistration(metrics.OutcomeSuccess)
	s.logger.Info("user registered", slog.String("user_id", user.ID))

	return &AuthResult{User: user, Token: token, Session: sess}, nil
}

// Login verifies credentials and starts a session. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials after comparable work.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	username := auth.SanitizeString(in.Username)
	if username == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("load user: %w", err)
		}
		auth.VerifyDummy(in.Password)
		s.loginFailed(username, "unknown user")
		return nil, ErrInvalidCredentials
	}

	match, needsRehash, err := auth.VerifyPassword(in.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash unreadable",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		s.loginFailed(username, "bad hash")
		return nil, ErrInvalidCredentials
	}
	if !match {
		s.loginFailed(username, "wrong password")
		return nil, ErrInvalidCredentials
	}

	if needsRehash {
		s.upgradeHash(ctx, user, in.Password)
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record last login",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	} else {
		user.LastLogin = &now
	}

	token, sess, err := s.sessions.Create(ctx, in.PreviousToken, user.ID)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	s.metrics.IncLogin(metrics.OutcomeSuccess)
	s.logger.Info("login succeeded", slog.String("user_id", user.ID))

	return &AuthResult{User: user, Token: token, Session: sess}, nil
}

func (s *AuthService) loginFailed(username, reason string) {
	s.metrics.IncLogin(metrics.OutcomeFailure)
	s.logger.Warn("authentication failed",
		slog.String("username", username),
		slog.String("reason", reason),
	)
}

func (s *AuthService) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.Warn("password rehash failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	user.PasswordHash = hash
}

// Logout destroys the session bound to token. It is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return err
	}
	s.metrics.IncLogout()
	return nil
}

// CheckAuth returns the user behind token. It returns session.ErrNoSession
// or an error matching session.ErrSessionExpired when there is none.
func (s *AuthService) CheckAuth(ctx context.Context, token string) (*model.User, error) {
	sess, err := s.sessions.TouchAndValidate(ctx, token)
	if err != nil {
		var expired *session.ExpiredError
		if errors.As(err, &expired) {
			s.metrics.IncSessionExpired(string(expired.Reason))
		}
		return nil, err
	}
	return s.CurrentUser(ctx, sess.UserID, token)
}

// CurrentUser loads the user of a validated session. A session whose user no
// longer exists is destroyed and reported as session.ErrNoSession.
func (s *AuthService) CurrentUser(ctx context.Context, userID, token string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = s.sessions.Destroy(ctx, token)
			return nil, session.ErrNoSession
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
