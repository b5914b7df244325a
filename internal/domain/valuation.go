package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status classifies a lot's current PnL percentage.
type Status string

const (
	StatusGreen       Status = "green"
	StatusYellow      Status = "yellow"
	StatusRed         Status = "red"
	StatusUnavailable Status = "unavailable"
)

// ValuationResult is derived on every read and never persisted. When Status is
// StatusUnavailable the numeric fields carry no meaning.
type ValuationResult struct {
	GrossQty     decimal.Decimal `json:"gross_qty"`
	FeeQty       decimal.Decimal `json:"fee_qty"`
	NetQty       decimal.Decimal `json:"net_qty"`
	Invested     decimal.Decimal `json:"invested"`
	CurrentValue decimal.Decimal `json:"current_value"`
	PnL          decimal.Decimal `json:"pnl"`
	PnLPct       decimal.Decimal `json:"pnl_pct"`
	Status       Status          `json:"status"`
}

// Priced reports whether the result was computed against a live price.
func (r ValuationResult) Priced() bool {
	return r.Status != StatusUnavailable
}

// PortfolioSnapshot is the aggregate state of one valuation cycle for a single
// fiat currency, journaled for the dashboard stream. Totals are never summed
// across fiats. String fields avoid precision loss in UI layers.
type PortfolioSnapshot struct {
	Timestamp     time.Time `json:"ts"`
	Fiat          string    `json:"fiat"`
	Lots          int       `json:"lots"`
	PricedLots    int       `json:"priced_lots"`
	TotalInvested string    `json:"total_invested"`
	TotalValue    string    `json:"total_value"`
	TotalPnL      string    `json:"total_pnl"`
}

// PortfolioSnapshotRecord bundles a snapshot with its journal index.
type PortfolioSnapshotRecord struct {
	Index    uint64
	Snapshot PortfolioSnapshot
}
