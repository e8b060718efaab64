package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/authz"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// RequireOwnership authorizes access to the resource named by the chi URL
// parameter param. Must be applied after RequireSession. Missing and foreign
// resources both answer 404.
func RequireOwnership(guard *authz.Guard, kind model.ResourceKind, param string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, param)
			if !ValidResourceID(id) {
				writeNotFound(w)
				return
			}

			resolved, err := guard.Authorize(r.Context(), model.ResourceRef{Kind: kind, ID: id})
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(authz.ContextWithResolved(r.Context(), resolved)))
			case errors.Is(err, authz.ErrUnauthenticated):
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			case errors.Is(err, authz.ErrNotFound):
				writeNotFound(w)
			default:
				logger.Error("ownership check failed",
					slog.String("error", err.Error()),
					slog.String("kind", string(kind)),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			}
		})
	}
}
