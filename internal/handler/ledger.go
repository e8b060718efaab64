package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/auth"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/authz"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/service"
)

// LedgerHandler serves profiles and everything under them. Routes that name
// a resource run behind RequireOwnership and read its verdict from context.
type LedgerHandler struct {
	svc    *service.LedgerService
	logger *slog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc *service.LedgerService, logger *slog.Logger) *LedgerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerHandler{svc: svc, logger: logger}
}

// resolved returns the ownership verdict for the routed resource. A missing
// verdict means the route was mounted without RequireOwnership.
func (h *LedgerHandler) resolved(w http.ResponseWriter, r *http.Request) (*authz.Resolved, bool) {
	res := authz.ResolvedFromContext(r.Context())
	if res == nil || res.Resource == nil || res.Identity == nil {
		h.logger.Error("route served without ownership check", slog.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return nil, false
	}
	return res, true
}

// userID returns the authenticated user for routes without a resource id.
func (h *LedgerHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := auth.UserIDFromContext(r.Context())
	if id == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return "", false
	}
	return id, true
}

func (h *LedgerHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	handleServiceError(h.logger, w, r, err)
}

// queryInt parses an optional integer query parameter. Absent means 0.
func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
