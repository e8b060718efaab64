package handler

import (
	"net/http"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/handler/dto"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/service"
)

// ListCategories handles GET /api/profiles/{profile_id}/categories.
func (h *LedgerHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ListCategories(r.Context(), res.Resource.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateCategory handles POST /api/profiles/{profile_id}/categories.
func (h *LedgerHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), res.Resource.ProfileID, service.CategoryInput{
		Name:  req.Name,
		Type:  req.Type,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// GetCategory handles GET /api/categories/{category_id}.
func (h *LedgerHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetCategory(r.Context(), res.Resource.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateCategory handles PATCH /api/categories/{category_id}.
func (h *LedgerHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	var req dto.CategoryPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.UpdateCategory(r.Context(), res.Identity.UserID, res.Resource.ID, service.CategoryUpdate{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /api/categories/{category_id}.
// Transactions keep their category name; their category link is cleared.
func (h *LedgerHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), res.Identity.UserID, res.Resource.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted successfully")
}
