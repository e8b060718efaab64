package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/auth"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/metrics"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/session"
)

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger   *slog.Logger
	Sessions *session.Manager
	Cookie   session.CookieConfig
	Metrics  metrics.Recorder
}

// RequireSession authenticates the request from its session cookie.
// On success the session is touched and the identity is attached to the
// request context. Expired sessions clear the cookie and answer 401.
func RequireSession(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cfg.Cookie.Token(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			s, err := cfg.Sessions.TouchAndValidate(r.Context(), token)
			if err != nil {
				var expired *session.ExpiredError
				switch {
				case errors.As(err, &expired):
					cfg.Metrics.IncSessionExpired(string(expired.Reason))
					cfg.Cookie.Clear(w)
					writeError(w, http.StatusUnauthorized, "SESSION_EXPIRED", "Session expired. Please log in again.")
				case errors.Is(err, session.ErrNoSession):
					cfg.Cookie.Clear(w)
					writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				default:
					cfg.Logger.Error("session lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				}
				return
			}

			if slot := identitySlotFrom(r.Context()); slot != nil {
				slot.userID = s.UserID
			}

			ctx := auth.ContextWithIdentity(r.Context(), &model.Identity{
				UserID:    s.UserID,
				SessionID: s.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
