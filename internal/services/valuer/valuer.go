// Package valuer derives fee-adjusted quantities and profit/loss for lots.
package valuer

import (
	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/shopspring/decimal"
)

// Classification thresholds, in percent. Asymmetric on purpose: a position
// must gain more than it is allowed to lose before it reads as healthy.
// Both comparisons are strict, +5.0 exactly is still yellow.
var (
	greenThresholdPct = decimal.NewFromInt(5)
	redThresholdPct   = decimal.NewFromInt(-2)
)

var hundred = decimal.NewFromInt(100)

// Valuer computes valuation metrics for lots. The exchange fee is a fraction
// of the purchased quantity, denominated in the traded asset.
type Valuer struct {
	feeRate decimal.Decimal
}

func New(feeRate decimal.Decimal) *Valuer {
	return &Valuer{feeRate: feeRate}
}

// Compute derives the full valuation for a lot at currentPrice. A nil price
// is a valid terminal state: the pair could not be priced this cycle and the
// result is unavailable, not an error.
func (v *Valuer) Compute(lot domain.Lot, currentPrice *decimal.Decimal) domain.ValuationResult {
	if currentPrice == nil {
		return domain.ValuationResult{Status: domain.StatusUnavailable}
	}

	grossQty := lot.PurchaseAmount.Div(lot.PurchasePrice)
	feeQty := grossQty.Mul(v.feeRate)
	netQty := grossQty.Sub(feeQty)

	currentValue := netQty.Mul(*currentPrice)
	pnl := currentValue.Sub(lot.PurchaseAmount)

	// lot validation forbids a zero purchase amount, guard anyway
	pnlPct := decimal.Zero
	if !lot.PurchaseAmount.IsZero() {
		pnlPct = pnl.Div(lot.PurchaseAmount).Mul(hundred)
	}

	return domain.ValuationResult{
		GrossQty:     grossQty,
		FeeQty:       feeQty,
		NetQty:       netQty,
		Invested:     lot.PurchaseAmount,
		CurrentValue: currentValue,
		PnL:          pnl,
		PnLPct:       pnlPct,
		Status:       classify(pnlPct),
	}
}

func classify(pnlPct decimal.Decimal) domain.Status {
	switch {
	case pnlPct.GreaterThan(greenThresholdPct):
		return domain.StatusGreen
	case pnlPct.LessThan(redThresholdPct):
		return domain.StatusRed
	default:
		return domain.StatusYellow
	}
}
