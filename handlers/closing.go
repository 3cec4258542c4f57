package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/restoka/closing/recordapi"
	"github.com/restoka/closing/services"
)

// GET /api/closings?store=...&date=...
func (h *Handler) getClosing(w http.ResponseWriter, r *http.Request) {
	storeID := r.URL.Query().Get("store")
	date := r.URL.Query().Get("date")
	if storeID == "" {
		storeID = currentSession(r).OperatingStore()
	}
	if storeID == "" || date == "" {
		badRequest(w)
		return
	}
	view, err := h.ClosingService.Fetch(r.Context(), currentSession(r), storeID, date)
	if err != nil {
		if errors.Is(err, services.ErrSuperseded) {
			// a newer fetch for the same day replaced this one; the stale
			// result is withheld instead of answered
			w.WriteHeader(http.StatusNoContent)
			return
		}
		serviceError(w, err)
		return
	}
	respond(w, http.StatusOK, view)
}

type closingDraftRequest struct {
	StoreID      string `json:"storeId"`
	BusinessDate string `json:"businessDate" validate:"required"`

	GrossSales      *decimal.Decimal `json:"grossSales" validate:"required"`
	CardSales       *decimal.Decimal `json:"cardSales" validate:"required"`
	CashSales       *decimal.Decimal `json:"cashSales" validate:"required"`
	Payouts         *decimal.Decimal `json:"payouts" validate:"required"`
	OpeningFloat    *decimal.Decimal `json:"openingFloat" validate:"required"`
	ClosingFloat    *decimal.Decimal `json:"closingFloat" validate:"required"`
	CountedCash     *decimal.Decimal `json:"countedCash" validate:"required"`
	DepositedAmount *decimal.Decimal `json:"depositedAmount" validate:"required"`

	LaborBudget    *decimal.Decimal `json:"laborBudget" validate:"required"`
	FoodCostBudget *decimal.Decimal `json:"foodCostBudget" validate:"required"`
	MiscBudget     *decimal.Decimal `json:"miscBudget" validate:"required"`
}

// POST /api/closings
func (h *Handler) saveClosing(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeAndValidateBody[closingDraftRequest](w, r)
	if !ok {
		return
	}
	session := currentSession(r)
	if body.StoreID == "" {
		body.StoreID = session.OperatingStore()
	}
	draft := recordapi.ClosingDraft{
		StoreID:         body.StoreID,
		BusinessDate:    body.BusinessDate,
		GrossSales:      *body.GrossSales,
		CardSales:       *body.CardSales,
		CashSales:       *body.CashSales,
		Payouts:         *body.Payouts,
		OpeningFloat:    *body.OpeningFloat,
		ClosingFloat:    *body.ClosingFloat,
		CountedCash:     *body.CountedCash,
		DepositedAmount: *body.DepositedAmount,
		LaborBudget:     *body.LaborBudget,
		FoodCostBudget:  *body.FoodCostBudget,
		MiscBudget:      *body.MiscBudget,
	}
	view, err := h.ClosingService.Save(r.Context(), session, draft)
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusCreated, view)
}

// POST /api/closings/{id}/unlock
func (h *Handler) unlockClosing(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeAndValidateBody[struct {
		PIN string `json:"pin" validate:"required,len=4,number"`
	}](w, r)
	if !ok {
		return
	}
	view, err := h.ClosingService.Unlock(r.Context(), chi.URLParam(r, "id"), body.PIN)
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusOK, view)
}

// allowedPatchFields are the record columns a manager correction may touch.
var allowedPatchFields = map[string]struct{}{
	"Gross Sales":      {},
	"Card Sales":       {},
	"Cash Sales":       {},
	"Payouts":          {},
	"Opening Float":    {},
	"Closing Float":    {},
	"Counted Cash":     {},
	"Deposited Amount": {},
	"Labor Budget":     {},
	"Food Cost Budget": {},
	"Misc Budget":      {},
}

// PATCH /api/closings/{id}
func (h *Handler) patchClosing(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeAndValidateBody[struct {
		Fields map[string]any `json:"fields" validate:"required,min=1"`
	}](w, r)
	if !ok {
		return
	}
	var bad []invalidField
	for name := range body.Fields {
		if _, ok := allowedPatchFields[name]; !ok {
			bad = append(bad, invalidField{
				Name:    name,
				Rule:    "field",
				Message: fmt.Sprintf("%s is not an editable field", name),
			})
		}
	}
	if len(bad) > 0 {
		invalidFields(w, bad)
		return
	}
	view, err := h.ClosingService.Patch(r.Context(), chi.URLParam(r, "id"), body.Fields)
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusOK, view)
}

// POST /api/closings/{id}/verify
func (h *Handler) verifyClosing(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeAndValidateBody[struct {
		Status recordapi.VerifiedStatus `json:"status" validate:"required"`
		Notes  string                   `json:"notes"`
	}](w, r)
	if !ok {
		return
	}
	view, err := h.ClosingService.Verify(r.Context(), currentSession(r), chi.URLParam(r, "id"), body.Status, body.Notes)
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusOK, view)
}

// GET /api/closings/watch?store=...&date=...&last=...
//
// Streams lock status transitions as server-sent events until the client
// disconnects.
func (h *Handler) watchLock(w http.ResponseWriter, r *http.Request) {
	session := currentSession(r)
	storeID := r.URL.Query().Get("store")
	date := r.URL.Query().Get("date")
	if storeID == "" {
		storeID = session.OperatingStore()
	}
	if storeID == "" || date == "" {
		badRequest(w)
		return
	}
	if !session.CanAccessStore(storeID) && session.OperatingStore() != storeID {
		respondError(w, ErrForbidden, http.StatusForbidden, nil)
		return
	}
	last := recordapi.LockStatus(r.URL.Query().Get("last"))
	if last != "" && last != recordapi.Locked && last != recordapi.Unlocked {
		badRequest(w)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		serverError(w, fmt.Errorf("streaming unsupported by response writer"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range h.LockWatcher.Watch(r.Context(), storeID, date, last) {
		data, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: lock\ndata: %s\n\n", data)
		flusher.Flush()
	}
}
