// Package prices persists the per-pair price history table as a single JSON
// file, capped per series with FIFO eviction.
package prices

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/shopspring/decimal"
)

const fileName = "prices.json"

// Store is a whole-file JSON price history store.
type Store struct {
	path  string
	limit int
}

// NewStore creates the data directory if needed and returns a store backed by
// <dataDir>/prices.json keeping at most limit points per pair.
func NewStore(dataDir string, limit int) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return &Store{path: filepath.Join(dataDir, fileName), limit: limit}, nil
}

// Load reads the whole price table. A missing file is an empty table.
func (s *Store) Load() (domain.PriceTable, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.PriceTable{}, nil
		}
		return nil, errors.Wrap(err, "read prices file")
	}
	if len(payload) == 0 {
		return domain.PriceTable{}, nil
	}

	var table domain.PriceTable
	if err := json.Unmarshal(payload, &table); err != nil {
		return nil, errors.Wrap(err, "decode prices file")
	}
	return table, nil
}

// Save writes the whole table atomically via a temp file.
func (s *Store) Save(table domain.PriceTable) error {
	if table == nil {
		table = domain.PriceTable{}
	}

	payload, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode prices")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write prices temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist prices")
	}
	return nil
}

// Record appends an observation to the pair's series, evicting the oldest
// points beyond the cap, and persists the table. This is the only mutation
// path for price history.
func (s *Store) Record(pair domain.Pair, price decimal.Decimal, now time.Time) error {
	table, err := s.Load()
	if err != nil {
		return err
	}

	key := pair.String()
	table[key] = table[key].Append(domain.PricePoint{
		Timestamp: now.Unix(),
		Price:     price,
	}, s.limit)

	return s.Save(table)
}

// ChartSeries projects every stored series into chart labels and data,
// oldest point first. Keys that do not parse as supported pairs are skipped,
// stale files never break rendering.
func (s *Store) ChartSeries() (map[string]domain.ChartSeries, error) {
	table, err := s.Load()
	if err != nil {
		return nil, err
	}

	charts := make(map[string]domain.ChartSeries, len(table))
	for key, series := range table {
		if _, err := domain.ParsePair(key); err != nil {
			continue
		}
		charts[key] = series.Chart()
	}
	return charts, nil
}
