package pricer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBinancePricerFor(srv *httptest.Server) *BinancePricer {
	client := binance.NewClient("", "")
	client.BaseURL = srv.URL
	return NewBinancePricer(client)
}

func TestBinanceGetPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"symbol":"BTCUSDT","price":"50000.25"}]`)
	}))
	defer srv.Close()

	p := newBinancePricerFor(srv)

	price, err := p.GetPrice(context.Background(), mustPair(t, "BTC", "USD"))
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(50000.25)), "got %s", price)
}

func TestBinanceUsesBRLMarketDirectly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ETHBRL", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"symbol":"ETHBRL","price":"12345.6"}]`)
	}))
	defer srv.Close()

	p := newBinancePricerFor(srv)

	price, err := p.GetPrice(context.Background(), mustPair(t, "ETH", "BRL"))
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromFloat(12345.6)))
}

func TestBinanceUnknownFiatFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	p := newBinancePricerFor(srv)

	// bypass pair validation to reach the adapter's own market check
	_, err := p.GetPrice(context.Background(), domain.Pair{Coin: "BTC", Fiat: "EUR"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedAsset))
	assert.Equal(t, int32(0), hits.Load(), "unsupported symbols must not hit the provider")
}

func TestBinanceNonPositivePriceIsFetchError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero price", `[{"symbol":"BTCUSDT","price":"0"}]`},
		{"negative price", `[{"symbol":"BTCUSDT","price":"-1"}]`},
		{"empty list", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p := newBinancePricerFor(srv)

			_, err := p.GetPrice(context.Background(), mustPair(t, "BTC", "USD"))
			require.Error(t, err)

			var fetchErr *domain.PriceFetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, "BTC_USD", fetchErr.Pair.String())
		})
	}
}
