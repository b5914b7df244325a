// Package web exposes the HTTP surface: the HTML dashboard, a JSON API over
// the portfolio service and an SSE stream of portfolio snapshots.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rmachado-dev/hodlite/internal/domain"
	"github.com/rmachado-dev/hodlite/internal/services/portfolio"
	"go.uber.org/zap"
)

const snapshotPollInterval = 2 * time.Second

type portfolioService interface {
	Revalue(ctx context.Context) ([]portfolio.Row, bool, error)
	AddLot(coin, fiat, amountRaw, priceRaw string) (domain.Lot, error)
	DeleteLot(id int64) error
	ChartData() (map[string]domain.ChartSeries, error)
}

type snapshotReader interface {
	SnapshotsAfter(index uint64) ([]domain.PortfolioSnapshotRecord, error)
}

// Server exposes HTTP endpoints serving the HTML UI, the JSON API and the
// snapshot SSE stream.
type Server struct {
	Addr       string
	Portfolio  portfolioService
	Snapshots  snapshotReader
	FeeRatePct float64
	l          *zap.Logger
}

// NewServer creates a new web server instance. feeRatePct is the display-only
// fee percentage shown on the dashboard.
func NewServer(l *zap.Logger, addr string, p portfolioService, snapshots snapshotReader, feeRatePct float64) *Server {
	return &Server{Addr: addr, Portfolio: p, Snapshots: snapshots, FeeRatePct: feeRatePct, l: l}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/lots", s.handleAddLot)
	mux.HandleFunc("/api/lots/delete", s.handleDeleteLot)
	mux.HandleFunc("/portfolio/stream", s.handleSnapshotStream)
	mux.HandleFunc("/health", s.handleHealth)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// portfolioPayload is the full dashboard state returned by /api/portfolio.
type portfolioPayload struct {
	Rows           []portfolio.Row               `json:"rows"`
	Charts         map[string]domain.ChartSeries `json:"charts"`
	Degraded       bool                          `json:"degraded"`
	FeeRatePct     float64                       `json:"fee_rate_pct"`
	SupportedCoins []string                      `json:"supported_coins"`
	SupportedFiat  []string                      `json:"supported_fiat"`
	LastUpdate     string                        `json:"last_update"`
}

// handlePortfolio runs one valuation cycle and returns the rows together with
// the chart series. A degraded cycle (some pair unpriced) is still a 200.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rows, degraded, err := s.Portfolio.Revalue(r.Context())
	if err != nil {
		s.l.Error("revalue cycle failed", zap.Error(err))
		http.Error(w, "revalue failed", http.StatusInternalServerError)
		return
	}

	charts, err := s.Portfolio.ChartData()
	if err != nil {
		s.l.Error("chart projection failed", zap.Error(err))
		http.Error(w, "chart data failed", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, portfolioPayload{
		Rows:           rows,
		Charts:         charts,
		Degraded:       degraded,
		FeeRatePct:     s.FeeRatePct,
		SupportedCoins: domain.SupportedCoins,
		SupportedFiat:  domain.SupportedFiat,
		LastUpdate:     time.Now().Format("15:04"),
	})
}

func (s *Server) handleAddLot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	lot, err := s.Portfolio.AddLot(
		r.PostFormValue("coin"),
		r.PostFormValue("fiat"),
		r.PostFormValue("purchase_amount"),
		r.PostFormValue("purchase_price"),
	)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedAsset) || errors.Is(err, domain.ErrInvalidLotInput) {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.l.Error("add lot failed", zap.Error(err))
		http.Error(w, "add lot failed", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusCreated, lot)
}

func (s *Server) handleDeleteLot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be an integer"})
		return
	}

	if err := s.Portfolio.DeleteLot(id); err != nil {
		s.l.Error("delete lot failed", zap.Int64("id", id), zap.Error(err))
		http.Error(w, "delete lot failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSnapshotStream(w http.ResponseWriter, r *http.Request) {
	if s.Snapshots == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "snapshot store not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat every 30s so proxies keep the connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(snapshotPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendSnapshots := func() error {
		records, err := s.Snapshots.SnapshotsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: portfolio\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendSnapshots(); err != nil {
		http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
		s.l.Error("snapshot stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendSnapshots(); err != nil {
				s.l.Error("snapshot stream poll", zap.Error(err))
			}
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.Error("encode response", zap.Error(err))
	}
}
