package services

import (
	"github.com/shopspring/decimal"

	"github.com/restoka/closing/recordapi"
)

// Derived holds the figures the closing views show but never store: they
// are recomputed from the record's raw fields on every read.
type Derived struct {
	ExpectedCash   decimal.Decimal `json:"expectedCash"`
	Variance       decimal.Decimal `json:"variance"`
	TotalBudget    decimal.Decimal `json:"totalBudget"`
	CashForDeposit decimal.Decimal `json:"cashForDeposit"`
	TransferNeeded decimal.Decimal `json:"transferNeeded"`
}

func DeriveFigures(f recordapi.Fields) Derived {
	expected := f.CashSales.Sub(f.Payouts).Add(f.OpeningFloat)
	deposit := f.CountedCash.Sub(f.ClosingFloat)
	return Derived{
		ExpectedCash:   expected,
		Variance:       f.CountedCash.Sub(expected),
		TotalBudget:    f.LaborBudget.Add(f.FoodCostBudget).Add(f.MiscBudget),
		CashForDeposit: deposit,
		TransferNeeded: deposit.Sub(f.DepositedAmount),
	}
}
