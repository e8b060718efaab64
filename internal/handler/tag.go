package handler

import (
	"net/http"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/handler/dto"
)

// ListTags handles GET /api/profiles/{profile_id}/tags.
func (h *LedgerHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ListTags(r.Context(), res.Resource.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateTag handles POST /api/profiles/{profile_id}/tags.
func (h *LedgerHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	var req dto.TagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.CreateTag(r.Context(), res.Resource.ProfileID, req.Name, req.Color)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTag handles GET /api/tags/{tag_id}.
func (h *LedgerHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	t, err := h.svc.GetTag(r.Context(), res.Resource.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTag handles DELETE /api/tags/{tag_id}.
func (h *LedgerHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTag(r.Context(), res.Identity.UserID, res.Resource.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Tag deleted successfully")
}
