package recordapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

type LockStatus string

const (
	Locked   LockStatus = "Locked"
	Unlocked LockStatus = "Unlocked"
)

type VerifiedStatus string

const (
	VerifyPending     VerifiedStatus = "Pending"
	Verified          VerifiedStatus = "Verified"
	VerifyNeedsUpdate VerifiedStatus = "Needs Update"
)

func (s VerifiedStatus) Valid() bool {
	return s == VerifyPending || s == Verified || s == VerifyNeedsUpdate
}

// Record mirrors the service's representation: an opaque id plus a field
// map keyed by the service's column names.
type Record struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

type Fields struct {
	BusinessDate   string         `json:"Business Date"`
	StoreID        string         `json:"Store"`
	LockStatus     LockStatus     `json:"Lock Status"`
	VerifiedStatus VerifiedStatus `json:"Verified Status"`

	GrossSales      decimal.Decimal `json:"Gross Sales"`
	CardSales       decimal.Decimal `json:"Card Sales"`
	CashSales       decimal.Decimal `json:"Cash Sales"`
	Payouts         decimal.Decimal `json:"Payouts"`
	OpeningFloat    decimal.Decimal `json:"Opening Float"`
	ClosingFloat    decimal.Decimal `json:"Closing Float"`
	CountedCash     decimal.Decimal `json:"Counted Cash"`
	DepositedAmount decimal.Decimal `json:"Deposited Amount"`

	LaborBudget    decimal.Decimal `json:"Labor Budget"`
	FoodCostBudget decimal.Decimal `json:"Food Cost Budget"`
	MiscBudget     decimal.Decimal `json:"Misc Budget"`

	SubmittedBy string `json:"Submitted By,omitempty"`
	VerifiedBy  string `json:"Verified By,omitempty"`
	VerifyNotes string `json:"Verify Notes,omitempty"`
}

// ClosingDraft is one end-of-day submission. Saving it creates or replaces
// the record for (store, businessDate) and locks it in the same write.
type ClosingDraft struct {
	StoreID      string `json:"storeId"`
	BusinessDate string `json:"businessDate"`
	SubmittedBy  string `json:"submitted_by"`

	GrossSales      decimal.Decimal `json:"grossSales"`
	CardSales       decimal.Decimal `json:"cardSales"`
	CashSales       decimal.Decimal `json:"cashSales"`
	Payouts         decimal.Decimal `json:"payouts"`
	OpeningFloat    decimal.Decimal `json:"openingFloat"`
	ClosingFloat    decimal.Decimal `json:"closingFloat"`
	CountedCash     decimal.Decimal `json:"countedCash"`
	DepositedAmount decimal.Decimal `json:"depositedAmount"`

	LaborBudget    decimal.Decimal `json:"laborBudget"`
	FoodCostBudget decimal.Decimal `json:"foodCostBudget"`
	MiscBudget     decimal.Decimal `json:"miscBudget"`
}

// FetchClosing returns the unique record for (businessDate, storeID) or
// ErrNotFound when the store has not submitted for that date yet.
func (c *client) FetchClosing(ctx context.Context, storeID, businessDate string) (*Record, error) {
	query := url.Values{}
	query.Set("store", storeID)
	query.Set("date", businessDate)
	var record Record
	err := c.do(ctx, http.MethodGet, "/closings?"+query.Encode(), nil, &record)
	if err != nil {
		return nil, fmt.Errorf("fetch closing %s/%s: %w", storeID, businessDate, err)
	}
	if record.ID == "" {
		return nil, fmt.Errorf("fetch closing %s/%s: %w", storeID, businessDate, ErrNotFound)
	}
	return &record, nil
}

func (c *client) SaveClosing(ctx context.Context, draft ClosingDraft) (*Record, error) {
	var record Record
	err := c.do(ctx, http.MethodPost, "/closings", draft, &record)
	if err != nil {
		return nil, fmt.Errorf("save closing %s/%s: %w", draft.StoreID, draft.BusinessDate, err)
	}
	return &record, nil
}

// UnlockClosing submits the manager PIN out-of-band. The service verifies
// the PIN; an authorization failure surfaces as ErrUnauthorized.
func (c *client) UnlockClosing(ctx context.Context, recordID, managerPIN string) (*Record, error) {
	body := struct {
		PIN string `json:"pin"`
	}{managerPIN}
	var record Record
	err := c.do(ctx, http.MethodPost, "/closings/"+recordID+"/unlock", body, &record)
	if err != nil {
		return nil, fmt.Errorf("unlock closing %s: %w", recordID, err)
	}
	return &record, nil
}

func (c *client) PatchClosing(ctx context.Context, recordID string, fields map[string]any) (*Record, error) {
	body := struct {
		Fields map[string]any `json:"fields"`
	}{fields}
	var record Record
	err := c.do(ctx, http.MethodPatch, "/closings/"+recordID, body, &record)
	if err != nil {
		return nil, fmt.Errorf("patch closing %s: %w", recordID, err)
	}
	return &record, nil
}

func (c *client) VerifyClosing(ctx context.Context, recordID string, status VerifiedStatus, verifier, notes string) (*Record, error) {
	body := struct {
		Status   VerifiedStatus `json:"status"`
		Verifier string         `json:"verifier"`
		Notes    string         `json:"notes,omitempty"`
	}{status, verifier, notes}
	var record Record
	err := c.do(ctx, http.MethodPost, "/closings/"+recordID+"/verify", body, &record)
	if err != nil {
		return nil, fmt.Errorf("verify closing %s: %w", recordID, err)
	}
	return &record, nil
}
