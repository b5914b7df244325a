package portfolio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/rmachado-dev/hodlite/internal/services/valuer"
	"github.com/rmachado-dev/hodlite/internal/storage/lots"
	"github.com/rmachado-dev/hodlite/internal/storage/prices"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePricer struct {
	mu     sync.Mutex
	calls  map[string]int
	quotes map[string]decimal.Decimal
	fails  map[string]bool
}

func newFakePricer() *fakePricer {
	return &fakePricer{
		calls:  make(map[string]int),
		quotes: make(map[string]decimal.Decimal),
		fails:  make(map[string]bool),
	}
}

func (f *fakePricer) GetPrice(_ context.Context, pair domain.Pair) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := pair.String()
	f.calls[key]++
	if f.fails[key] {
		return decimal.Decimal{}, &domain.PriceFetchError{Pair: pair, Err: errors.New("boom")}
	}
	return f.quotes[key], nil
}

type fakeJournal struct {
	mu        sync.Mutex
	snapshots []domain.PortfolioSnapshot
}

func (j *fakeJournal) Save(s domain.PortfolioSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.snapshots = append(j.snapshots, s)
	return nil
}

func newTestService(t *testing.T, quotes *fakePricer, journal SnapshotJournal) (*Service, *lots.Store, *prices.Store) {
	t.Helper()
	dir := t.TempDir()

	lotStore, err := lots.NewStore(dir)
	require.NoError(t, err)
	priceStore, err := prices.NewStore(dir, 100)
	require.NoError(t, err)

	svc := New(zap.NewNop(), lotStore, priceStore, journal,
		quotes, valuer.New(decimal.NewFromFloat(0.001)), time.Second)
	return svc, lotStore, priceStore
}

func seedLot(t *testing.T, store *lots.Store, id int64, coin, fiat string) domain.Lot {
	t.Helper()
	lot, err := domain.NewLot(coin, fiat,
		decimal.NewFromInt(1000), decimal.NewFromInt(100), time.UnixMilli(id))
	require.NoError(t, err)
	require.NoError(t, store.Add(lot))
	return lot
}

func TestRevalueDedupsPairFetches(t *testing.T) {
	quotes := newFakePricer()
	quotes.quotes["BTC_USD"] = decimal.NewFromInt(120)
	quotes.quotes["ETH_BRL"] = decimal.NewFromInt(200)

	svc, lotStore, _ := newTestService(t, quotes, nil)

	// 10 lots spanning only 2 distinct pairs
	var want []int64
	for i := 0; i < 10; i++ {
		coin, fiat := "BTC", "USD"
		if i%2 == 1 {
			coin, fiat = "ETH", "BRL"
		}
		lot := seedLot(t, lotStore, int64(i+1), coin, fiat)
		want = append(want, lot.ID)
	}

	rows, degraded, err := svc.Revalue(context.Background())
	require.NoError(t, err)
	assert.False(t, degraded)

	assert.Equal(t, 1, quotes.calls["BTC_USD"])
	assert.Equal(t, 1, quotes.calls["ETH_BRL"])

	require.Len(t, rows, 10)
	for i, row := range rows {
		assert.Equal(t, want[i], row.Lot.ID, "rows must keep storage order")
		require.NotNil(t, row.CurrentPrice)
		expected := quotes.quotes[row.Lot.Pair().String()]
		assert.True(t, row.CurrentPrice.Equal(expected))
		assert.Equal(t, domain.StatusGreen, row.Metrics.Status)
	}
}

func TestRevaluePartialFailureIsolation(t *testing.T) {
	quotes := newFakePricer()
	quotes.quotes["ETH_USD"] = decimal.NewFromInt(104)
	quotes.fails["BTC_USD"] = true

	svc, lotStore, _ := newTestService(t, quotes, nil)
	seedLot(t, lotStore, 1, "BTC", "USD")
	seedLot(t, lotStore, 2, "ETH", "USD")
	seedLot(t, lotStore, 3, "BTC", "USD")

	rows, degraded, err := svc.Revalue(context.Background())
	require.NoError(t, err)
	assert.True(t, degraded)
	require.Len(t, rows, 3)

	assert.Nil(t, rows[0].CurrentPrice)
	assert.Equal(t, domain.StatusUnavailable, rows[0].Metrics.Status)
	assert.Nil(t, rows[2].CurrentPrice)
	assert.Equal(t, domain.StatusUnavailable, rows[2].Metrics.Status)

	require.NotNil(t, rows[1].CurrentPrice)
	assert.Equal(t, domain.StatusYellow, rows[1].Metrics.Status)
}

func TestRevalueRecordsHistoryForPricedPairsOnly(t *testing.T) {
	quotes := newFakePricer()
	quotes.quotes["ETH_USD"] = decimal.NewFromInt(150)
	quotes.fails["BTC_USD"] = true

	svc, lotStore, priceStore := newTestService(t, quotes, nil)
	seedLot(t, lotStore, 1, "BTC", "USD")
	seedLot(t, lotStore, 2, "ETH", "USD")

	_, _, err := svc.Revalue(context.Background())
	require.NoError(t, err)

	table, err := priceStore.Load()
	require.NoError(t, err)
	assert.NotContains(t, table, "BTC_USD")
	require.Contains(t, table, "ETH_USD")
	require.Len(t, table["ETH_USD"], 1)
	assert.True(t, table["ETH_USD"][0].Price.Equal(decimal.NewFromInt(150)))
}

func TestRevalueEmptyRepository(t *testing.T) {
	quotes := newFakePricer()
	svc, _, _ := newTestService(t, quotes, nil)

	rows, degraded, err := svc.Revalue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.False(t, degraded)
	assert.Empty(t, quotes.calls)
}

func TestAddLotInputParsing(t *testing.T) {
	tests := []struct {
		name    string
		coin    string
		fiat    string
		amount  string
		price   string
		wantErr error
		want    decimal.Decimal
	}{
		{
			name: "plain decimal", coin: "BTC", fiat: "USD",
			amount: "1234.56", price: "100",
			want: decimal.NewFromFloat(1234.56),
		},
		{
			name: "locale form with thousands dot and decimal comma", coin: "BTC", fiat: "USD",
			amount: "1.234,56", price: "100",
			want: decimal.NewFromFloat(1234.56),
		},
		{
			name: "unparseable amount", coin: "BTC", fiat: "USD",
			amount: "abc", price: "100",
			wantErr: domain.ErrInvalidLotInput,
		},
		{
			name: "negative amount", coin: "BTC", fiat: "USD",
			amount: "-5", price: "100",
			wantErr: domain.ErrInvalidLotInput,
		},
		{
			name: "unsupported coin", coin: "XRP", fiat: "USD",
			amount: "100", price: "1",
			wantErr: domain.ErrUnsupportedAsset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, lotStore, _ := newTestService(t, newFakePricer(), nil)

			lot, err := svc.AddLot(tt.coin, tt.fiat, tt.amount, tt.price)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				all, loadErr := lotStore.Load()
				require.NoError(t, loadErr)
				assert.Empty(t, all, "rejected input must not create a lot")
				return
			}

			require.NoError(t, err)
			assert.True(t, lot.PurchaseAmount.Equal(tt.want), "got %s", lot.PurchaseAmount)
		})
	}
}

func TestAddLotIDsStayUnique(t *testing.T) {
	svc, lotStore, _ := newTestService(t, newFakePricer(), nil)
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	first, err := svc.AddLot("BTC", "USD", "100", "10")
	require.NoError(t, err)
	second, err := svc.AddLot("BTC", "USD", "200", "10")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	all, err := lotStore.Load()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteLotIdempotent(t *testing.T) {
	svc, lotStore, _ := newTestService(t, newFakePricer(), nil)
	lot := seedLot(t, lotStore, 7, "BTC", "USD")

	require.NoError(t, svc.DeleteLot(lot.ID))
	// retried delete of the same id succeeds as a no-op
	require.NoError(t, svc.DeleteLot(lot.ID))
	require.NoError(t, svc.DeleteLot(424242))

	all, err := lotStore.Load()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRevalueJournalsSnapshotPerFiat(t *testing.T) {
	quotes := newFakePricer()
	quotes.quotes["BTC_USD"] = decimal.NewFromInt(120)
	quotes.quotes["BTC_BRL"] = decimal.NewFromInt(110)

	journal := &fakeJournal{}
	svc, lotStore, _ := newTestService(t, quotes, journal)
	seedLot(t, lotStore, 1, "BTC", "USD")
	seedLot(t, lotStore, 2, "BTC", "BRL")
	seedLot(t, lotStore, 3, "BTC", "USD")

	_, _, err := svc.Revalue(context.Background())
	require.NoError(t, err)

	require.Len(t, journal.snapshots, 2)
	byFiat := make(map[string]domain.PortfolioSnapshot)
	for _, s := range journal.snapshots {
		byFiat[s.Fiat] = s
	}

	usd := byFiat["USD"]
	assert.Equal(t, 2, usd.Lots)
	assert.Equal(t, 2, usd.PricedLots)
	assert.Equal(t, "2000", usd.TotalInvested)

	brl := byFiat["BRL"]
	assert.Equal(t, 1, brl.Lots)
	assert.Equal(t, "1000", brl.TotalInvested)
}
