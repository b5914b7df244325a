package pricer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/rmachado-dev/hodlite/pkg/retrier"
	"github.com/shopspring/decimal"
	"resty.dev/v3"
)

// DefaultCoinGeckoURL is the public CoinGecko API base.
const DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

const (
	simplePricePath = "/simple/price"

	fetchAttempts      = 2
	fetchRetryInterval = 500 * time.Millisecond
)

// coinGeckoIDs maps supported symbols to CoinGecko asset ids.
var coinGeckoIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
}

// CoinGeckoPricer fetches spot prices from the CoinGecko simple price API.
type CoinGeckoPricer struct {
	c       *resty.Client
	retrier *retrier.Retrier
}

// NewCoinGeckoPricer creates a pricer against baseURL. Every request is capped
// by timeout on top of whatever deadline the caller context carries.
func NewCoinGeckoPricer(baseURL string, timeout time.Duration) *CoinGeckoPricer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &CoinGeckoPricer{
		c:       client,
		retrier: retrier.New(fetchAttempts, fetchRetryInterval),
	}
}

// GetPrice returns the current fiat price of one unit of the pair's coin.
func (p *CoinGeckoPricer) GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	coinID, ok := coinGeckoIDs[pair.Coin]
	if !ok {
		return decimal.Decimal{}, errors.Wrapf(domain.ErrUnsupportedAsset, "no CoinGecko id for %s", pair.Coin)
	}
	fiat := strings.ToLower(pair.Fiat)

	price, err := retrier.DoWithData(p.retrier, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return p.fetch(ctx, pair, coinID, fiat)
	})
	if err != nil {
		return decimal.Decimal{}, &domain.PriceFetchError{Pair: pair, Err: err}
	}

	return price, nil
}

func (p *CoinGeckoPricer) fetch(ctx context.Context, pair domain.Pair, coinID, fiat string) (decimal.Decimal, error) {
	var result map[string]map[string]decimal.Decimal

	resp, err := p.c.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           coinID,
			"vs_currencies": fiat,
		}).
		SetResult(&result).
		Get(simplePricePath)
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return decimal.Decimal{}, fmt.Errorf("CoinGecko returned %s", resp.Status())
	}

	price, ok := result[coinID][fiat]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("CoinGecko response misses %s/%s", coinID, fiat)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("CoinGecko returned non-positive price %s for %s", price, pair)
	}

	return price, nil
}
