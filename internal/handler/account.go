package handler

import (
	"net/http"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/handler/dto"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/service"
)

// ListAccounts handles GET /api/profiles/{profile_id}/accounts.
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ListAccounts(r.Context(), res.Resource.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateAccount handles POST /api/profiles/{profile_id}/accounts.
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	var req dto.AccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.CreateAccount(r.Context(), res.Resource.ProfileID, service.AccountInput{
		Name:     req.Name,
		Type:     req.Type,
		Balance:  req.Balance.Float(),
		Currency: req.Currency,
		Icon:     req.Icon,
		Color:    req.Color,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// GetAccount handles GET /api/accounts/{account_id}.
func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	a, err := h.svc.GetAccount(r.Context(), res.Resource.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// UpdateAccount handles PATCH /api/accounts/{account_id}.
func (h *LedgerHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	var req dto.AccountPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.UpdateAccount(r.Context(), res.Identity.UserID, res.Resource.ID, service.AccountUpdate{
		Name:     req.Name,
		Type:     req.Type,
		Balance:  dto.FloatPtr(req.Balance),
		Currency: req.Currency,
		Icon:     req.Icon,
		Color:    req.Color,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAccount handles DELETE /api/accounts/{account_id}.
func (h *LedgerHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), res.Identity.UserID, res.Resource.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Account deleted successfully")
}
