package handler

import (
	"net/http"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/handler/dto"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/service"
)

// ListBudgets handles GET /api/profiles/{profile_id}/budgets?month=&year=.
// Omitted month or year lists every period.
func (h *LedgerHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	month, ok := queryInt(r, "month")
	if !ok {
		writeFieldError(w, "month", "Month must be between 1 and 12")
		return
	}
	year, ok := queryInt(r, "year")
	if !ok {
		writeFieldError(w, "year", "Year must be between 2000 and 2100")
		return
	}

	out, err := h.svc.ListBudgets(r.Context(), res.Resource.ProfileID, month, year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBudgetResponses(out))
}

// CreateBudget handles POST /api/profiles/{profile_id}/budgets.
func (h *LedgerHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	var req dto.BudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.CreateBudget(r.Context(), res.Resource.ProfileID, service.BudgetInput{
		CategoryID:     req.CategoryID,
		Amount:         req.Amount.Float(),
		Month:          req.Month,
		Year:           req.Year,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToBudgetResponse(b))
}

// GetBudget handles GET /api/budgets/{budget_id}.
func (h *LedgerHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	b, err := h.svc.GetBudget(r.Context(), res.Resource.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBudgetResponse(b))
}

// UpdateBudget handles PATCH /api/budgets/{budget_id}.
func (h *LedgerHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	var req dto.BudgetPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.UpdateBudget(r.Context(), res.Identity.UserID, res.Resource.ID, service.BudgetUpdate{
		Amount:         dto.FloatPtr(req.Amount),
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBudgetResponse(b))
}

// DeleteBudget handles DELETE /api/budgets/{budget_id}.
func (h *LedgerHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteBudget(r.Context(), res.Identity.UserID, res.Resource.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Budget deleted successfully")
}
