package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single observed spot price. Immutable once recorded.
type PricePoint struct {
	Timestamp int64           `json:"t"`
	Price     decimal.Decimal `json:"p"`
}

// PriceSeries is an insertion-ordered sequence of price points for one pair.
type PriceSeries []PricePoint

// Append adds a point and evicts from the front until the series fits limit.
func (s PriceSeries) Append(point PricePoint, limit int) PriceSeries {
	s = append(s, point)
	if limit > 0 && len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

// PriceTable maps pair keys (Pair.String form) to their series.
type PriceTable map[string]PriceSeries

// ChartSeries is the projection of one series for chart rendering,
// oldest point first.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// Chart projects a series into time labels and float values. Floats are
// acceptable here: the values feed a chart, not arithmetic.
func (s PriceSeries) Chart() ChartSeries {
	cs := ChartSeries{
		Labels: make([]string, 0, len(s)),
		Data:   make([]float64, 0, len(s)),
	}
	for _, p := range s {
		cs.Labels = append(cs.Labels, time.Unix(p.Timestamp, 0).Format("15:04"))
		cs.Data = append(cs.Data, p.Price.InexactFloat64())
	}
	return cs
}
