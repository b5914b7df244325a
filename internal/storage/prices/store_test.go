package prices

import (
	"testing"
	"time"

	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPair(t *testing.T) domain.Pair {
	t.Helper()
	pair, err := domain.NewPair("BTC", "USD")
	require.NoError(t, err)
	return pair
}

func TestLoadMissingFileIsEmptyTable(t *testing.T) {
	store, err := NewStore(t.TempDir(), 100)
	require.NoError(t, err)

	table, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestRecordAppendsAndPersists(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 100)
	require.NoError(t, err)

	pair := mustPair(t)
	now := time.Unix(1000, 0)
	require.NoError(t, store.Record(pair, decimal.NewFromInt(50000), now))
	require.NoError(t, store.Record(pair, decimal.NewFromInt(51000), now.Add(time.Minute)))

	// a fresh store over the same dir sees the recorded points
	reopened, err := NewStore(dir, 100)
	require.NoError(t, err)
	table, err := reopened.Load()
	require.NoError(t, err)

	series := table["BTC_USD"]
	require.Len(t, series, 2)
	assert.Equal(t, int64(1000), series[0].Timestamp)
	assert.True(t, series[0].Price.Equal(decimal.NewFromInt(50000)))
	assert.True(t, series[1].Price.Equal(decimal.NewFromInt(51000)))
}

func TestRecordEnforcesCapFIFO(t *testing.T) {
	const limit = 5
	store, err := NewStore(t.TempDir(), limit)
	require.NoError(t, err)

	pair := mustPair(t)
	for i := 0; i < limit+3; i++ {
		now := time.Unix(int64(i), 0)
		require.NoError(t, store.Record(pair, decimal.NewFromInt(int64(100+i)), now))
	}

	table, err := store.Load()
	require.NoError(t, err)
	series := table[pair.String()]
	require.Len(t, series, limit)
	assert.Equal(t, int64(3), series[0].Timestamp)
	assert.Equal(t, int64(7), series[limit-1].Timestamp)
}

func TestChartSeriesSkipsUnknownKeys(t *testing.T) {
	store, err := NewStore(t.TempDir(), 100)
	require.NoError(t, err)

	table := domain.PriceTable{
		"BTC_USD": {{Timestamp: 60, Price: decimal.NewFromInt(1)}},
		"XRP_USD": {{Timestamp: 60, Price: decimal.NewFromInt(2)}},
		"garbage": {{Timestamp: 60, Price: decimal.NewFromInt(3)}},
	}
	require.NoError(t, store.Save(table))

	charts, err := store.ChartSeries()
	require.NoError(t, err)
	require.Len(t, charts, 1)
	require.Contains(t, charts, "BTC_USD")
	assert.Len(t, charts["BTC_USD"].Data, 1)
}
