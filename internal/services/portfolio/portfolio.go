// Package portfolio drives the valuation cycle: it dedups the pairs
// referenced by the stored lots, prices each pair once, records history and
// values every lot against the cycle cache.
package portfolio

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/rmachado-dev/hodlite/internal/services/pricer"
	"github.com/rmachado-dev/hodlite/internal/services/valuer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LotStore is the whole-collection lot repository boundary.
type LotStore interface {
	Load() ([]domain.Lot, error)
	Save([]domain.Lot) error
	Delete(id int64) (bool, error)
}

// HistoryStore records price observations and projects them for charts.
type HistoryStore interface {
	Record(pair domain.Pair, price decimal.Decimal, now time.Time) error
	ChartSeries() (map[string]domain.ChartSeries, error)
}

// SnapshotJournal receives one aggregate snapshot per fiat per cycle.
type SnapshotJournal interface {
	Save(snapshot domain.PortfolioSnapshot) error
}

// Row is the per-lot outcome of a cycle, in submission order. CurrentPrice is
// nil when the lot's pair could not be priced.
type Row struct {
	Lot          domain.Lot             `json:"lot"`
	CurrentPrice *decimal.Decimal       `json:"current_price"`
	Metrics      domain.ValuationResult `json:"metrics"`
}

// Service serializes every mutating path (revalue, add, delete) through one
// mutex, making it the single writer for the lot and price files.
type Service struct {
	mu           sync.Mutex
	lots         LotStore
	history      HistoryStore
	journal      SnapshotJournal
	pricer       pricer.Pricer
	valuer       *valuer.Valuer
	fetchTimeout time.Duration
	l            *zap.Logger
	now          func() time.Time
}

// New creates the portfolio service. journal may be nil.
func New(l *zap.Logger, lots LotStore, history HistoryStore, journal SnapshotJournal,
	p pricer.Pricer, v *valuer.Valuer, fetchTimeout time.Duration) *Service {
	return &Service{
		lots:         lots,
		history:      history,
		journal:      journal,
		pricer:       p,
		valuer:       v,
		fetchTimeout: fetchTimeout,
		l:            l,
		now:          time.Now,
	}
}

// AddLot validates user input and appends a new lot. Amounts accept both
// "1234.56" and the locale form "1.234,56".
func (s *Service) AddLot(coin, fiat, amountRaw, priceRaw string) (domain.Lot, error) {
	amount, err := parseAmount(amountRaw)
	if err != nil {
		return domain.Lot{}, errors.Wrapf(domain.ErrInvalidLotInput, "purchase amount %q", amountRaw)
	}
	price, err := parseAmount(priceRaw)
	if err != nil {
		return domain.Lot{}, errors.Wrapf(domain.ErrInvalidLotInput, "purchase price %q", priceRaw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lot, err := domain.NewLot(coin, fiat, amount, price, s.now())
	if err != nil {
		return domain.Lot{}, err
	}

	all, err := s.lots.Load()
	if err != nil {
		return domain.Lot{}, err
	}

	// ids are unix millis; bump on collision so two quick adds stay unique
	for hasID(all, lot.ID) {
		lot.ID++
	}

	if err := s.lots.Save(append(all, lot)); err != nil {
		return domain.Lot{}, err
	}

	s.l.Info("lot added",
		zap.Int64("id", lot.ID),
		zap.String("pair", lot.Pair().String()),
		zap.String("amount", lot.PurchaseAmount.String()))

	return lot, nil
}

// DeleteLot removes a lot by id. Deleting an unknown id is a no-op success so
// retried deletes stay idempotent.
func (s *Service) DeleteLot(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.lots.Delete(id)
	if err != nil {
		return err
	}
	if !removed {
		s.l.Warn("delete of unknown lot ignored", zap.Int64("id", id))
		return nil
	}

	s.l.Info("lot deleted", zap.Int64("id", id))
	return nil
}

// Revalue runs one valuation cycle and returns per-lot rows in storage order.
// degraded is true when at least one pair could not be priced; the affected
// rows carry unavailable metrics while the rest of the cycle proceeds.
func (s *Service) Revalue(ctx context.Context) (rows []Row, degraded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.lots.Load()
	if err != nil {
		return nil, false, err
	}

	pairs := distinctPairs(all)
	cache := s.fetchPrices(ctx, pairs)

	now := s.now()
	for _, pair := range pairs {
		price, ok := cache[pair]
		if !ok || price == nil {
			degraded = true
			continue
		}
		if err := s.history.Record(pair, *price, now); err != nil {
			s.l.Error("failed to record price history", zap.String("pair", pair.String()), zap.Error(err))
		}
	}

	rows = make([]Row, 0, len(all))
	for _, lot := range all {
		price := cache[lot.Pair()]
		rows = append(rows, Row{
			Lot:          lot,
			CurrentPrice: price,
			Metrics:      s.valuer.Compute(lot, price),
		})
	}

	s.journalSnapshots(now, rows)

	return rows, degraded, nil
}

// ChartData returns the stored price history projected for charts.
func (s *Service) ChartData() (map[string]domain.ChartSeries, error) {
	return s.history.ChartSeries()
}

// fetchPrices queries every distinct pair exactly once, concurrently, each
// fetch bounded by its own deadline. A failed pair caches nil so its lots
// degrade instead of aborting the cycle.
func (s *Service) fetchPrices(ctx context.Context, pairs []domain.Pair) map[domain.Pair]*decimal.Decimal {
	prices := make([]*decimal.Decimal, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	for i, pair := range pairs {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, s.fetchTimeout)
			defer cancel()

			price, err := s.pricer.GetPrice(fetchCtx, pair)
			if err != nil {
				s.l.Warn("price fetch failed", zap.String("pair", pair.String()), zap.Error(err))
				return nil
			}
			prices[i] = &price
			return nil
		})
	}
	// goroutines only report nil, Wait is for joining
	_ = g.Wait()

	cache := make(map[domain.Pair]*decimal.Decimal, len(pairs))
	for i, pair := range pairs {
		cache[pair] = prices[i]
	}
	return cache
}

// journalSnapshots aggregates priced rows per fiat and appends one snapshot
// per fiat to the journal.
func (s *Service) journalSnapshots(now time.Time, rows []Row) {
	if s.journal == nil || len(rows) == 0 {
		return
	}

	type totals struct {
		lots     int
		priced   int
		invested decimal.Decimal
		value    decimal.Decimal
		pnl      decimal.Decimal
	}

	perFiat := make(map[string]*totals)
	order := make([]string, 0, len(domain.SupportedFiat))
	for _, row := range rows {
		t, ok := perFiat[row.Lot.Fiat]
		if !ok {
			t = &totals{}
			perFiat[row.Lot.Fiat] = t
			order = append(order, row.Lot.Fiat)
		}
		t.lots++
		if !row.Metrics.Priced() {
			continue
		}
		t.priced++
		t.invested = t.invested.Add(row.Metrics.Invested)
		t.value = t.value.Add(row.Metrics.CurrentValue)
		t.pnl = t.pnl.Add(row.Metrics.PnL)
	}

	for _, fiat := range order {
		t := perFiat[fiat]
		snapshot := domain.PortfolioSnapshot{
			Timestamp:     now,
			Fiat:          fiat,
			Lots:          t.lots,
			PricedLots:    t.priced,
			TotalInvested: t.invested.String(),
			TotalValue:    t.value.String(),
			TotalPnL:      t.pnl.String(),
		}
		if err := s.journal.Save(snapshot); err != nil {
			s.l.Error("failed to journal portfolio snapshot", zap.String("fiat", fiat), zap.Error(err))
		}
	}
}

func distinctPairs(lots []domain.Lot) []domain.Pair {
	seen := make(map[domain.Pair]struct{}, len(lots))
	pairs := make([]domain.Pair, 0, len(lots))
	for _, lot := range lots {
		pair := lot.Pair()
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs
}

func hasID(lots []domain.Lot, id int64) bool {
	for _, lot := range lots {
		if lot.ID == id {
			return true
		}
	}
	return false
}

// parseAmount accepts plain decimal input and the pt-BR form with thousands
// dots and a decimal comma.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	return decimal.NewFromString(raw)
}
