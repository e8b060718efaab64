package handler

import (
	"net/http"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/handler/dto"
)

// ListProfiles handles GET /api/profiles.
func (h *LedgerHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	profiles, err := h.svc.ListProfiles(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// CreateProfile handles POST /api/profiles.
func (h *LedgerHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req dto.ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProfile(r.Context(), userID, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProfile handles GET /api/profiles/{profile_id}.
func (h *LedgerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetProfile(r.Context(), res.Resource.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RenameProfile handles PATCH /api/profiles/{profile_id}.
func (h *LedgerHandler) RenameProfile(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	var req dto.ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.RenameProfile(r.Context(), res.Identity.UserID, res.Resource.ID, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProfile handles DELETE /api/profiles/{profile_id}.
func (h *LedgerHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProfile(r.Context(), res.Identity.UserID, res.Resource.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("profile deleted",
		"profile_id", res.Resource.ID,
		"user_id", res.Identity.UserID,
	)
	writeMessage(w, http.StatusOK, "Profile deleted successfully")
}
