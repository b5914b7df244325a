package pricer

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/shopspring/decimal"
)

// binanceQuotes maps fiat symbols to Binance quote assets. Binance has no
// direct USD spot market, USDT stands in for it.
var binanceQuotes = map[string]string{
	"USD": "USDT",
	"BRL": "BRL",
}

// BinancePricer fetches spot prices from the Binance ticker API.
type BinancePricer struct {
	client *binance.Client
}

func NewBinancePricer(client *binance.Client) *BinancePricer {
	return &BinancePricer{client: client}
}

// GetPrice returns the last traded price for the pair's Binance symbol.
func (p *BinancePricer) GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	quote, ok := binanceQuotes[pair.Fiat]
	if !ok {
		return decimal.Decimal{}, errors.Wrapf(domain.ErrUnsupportedAsset, "no Binance market for %s", pair.Fiat)
	}
	symbol := pair.Coin + quote

	prices, err := p.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, &domain.PriceFetchError{Pair: pair, Err: err}
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, &domain.PriceFetchError{
			Pair: pair,
			Err:  fmt.Errorf("binance API returned empty prices for %s", symbol),
		}
	}

	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return decimal.Decimal{}, &domain.PriceFetchError{Pair: pair, Err: err}
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, &domain.PriceFetchError{
			Pair: pair,
			Err:  fmt.Errorf("binance returned non-positive price %s for %s", price, symbol),
		}
	}

	return price, nil
}
