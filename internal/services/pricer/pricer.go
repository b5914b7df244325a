// Package pricer provides spot price adapters for external quote providers.
package pricer

import (
	"context"

	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/shopspring/decimal"
)

// Pricer fetches the current spot price for a (coin, fiat) pair, quoted in
// fiat per unit coin. Implementations are pure queries: symbol validation
// fails before any network access, transport failures surface as
// *domain.PriceFetchError.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}
