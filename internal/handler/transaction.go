package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/handler/dto"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/repository"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/service"
)

const maxTransactionPage = 500

// ListTransactions handles GET /api/profiles/{profile_id}/transactions.
// Query: type, category_id, account_id, tag_id, from, to, limit, offset.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	filter, ok := transactionFilter(w, r)
	if !ok {
		return
	}

	txns, err := h.svc.ListTransactions(r.Context(), res.Resource.ProfileID, filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func transactionFilter(w http.ResponseWriter, r *http.Request) (repository.TransactionFilter, bool) {
	q := r.URL.Query()
	f := repository.TransactionFilter{
		Type:       model.EntryType(q.Get("type")),
		CategoryID: q.Get("category_id"),
		AccountID:  q.Get("account_id"),
		TagID:      q.Get("tag_id"),
		From:       q.Get("from"),
		To:         q.Get("to"),
	}

	limit, ok := queryInt(r, "limit")
	if !ok || limit < 0 || limit > maxTransactionPage {
		writeFieldError(w, "limit", fmt.Sprintf("Limit must be between 0 and %d", maxTransactionPage))
		return f, false
	}
	offset, ok := queryInt(r, "offset")
	if !ok || offset < 0 {
		writeFieldError(w, "offset", "Offset must be a non-negative integer")
		return f, false
	}
	f.Limit, f.Offset = limit, offset
	return f, true
}

// CreateTransaction handles POST /api/profiles/{profile_id}/transactions.
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.svc.CreateTransaction(r.Context(), res.Resource.ProfileID, service.TransactionInput{
		Type:        req.Type,
		Amount:      req.Amount.Float(),
		Category:    req.Category,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		Description: req.Description,
		Date:        req.Date,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTransaction handles GET /api/transactions/{transaction_id}.
func (h *LedgerHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	t, err := h.svc.GetTransaction(r.Context(), res.Resource.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTransaction handles DELETE /api/transactions/{transaction_id}.
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTransaction(r.Context(), res.Identity.UserID, res.Resource.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Transaction deleted successfully")
}

var exportHeader = []string{
	"ID", "Profile ID", "Profile Name", "Type", "Amount",
	"Category", "Description", "Date", "Created At",
}

// ExportTransactions handles GET /api/profiles/{profile_id}/transactions/export.
// It streams every matching transaction of the profile as CSV.
func (h *LedgerHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	res, ok := h.resolved(w, r)
	if !ok {
		return
	}
	filter, ok := transactionFilter(w, r)
	if !ok {
		return
	}

	profile, err := h.svc.GetProfile(r.Context(), res.Resource.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	txns, err := h.svc.ListTransactions(r.Context(), profile.ID, filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%s.csv"`, profile.ID))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(exportHeader)
	for _, t := range txns {
		_ = cw.Write([]string{
			t.ID,
			t.ProfileID,
			profile.Name,
			string(t.Type),
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			t.Category,
			t.Description,
			t.Date,
			t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Warn("csv export interrupted", "profile_id", profile.ID, "error", err)
	}
}
