package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/adshao/go-binance/v2"
	"github.com/rmachado-dev/hodlite/config"
	"github.com/rmachado-dev/hodlite/internal/services/portfolio"
	"github.com/rmachado-dev/hodlite/internal/services/pricer"
	"github.com/rmachado-dev/hodlite/internal/services/valuer"
	"github.com/rmachado-dev/hodlite/internal/storage/lots"
	"github.com/rmachado-dev/hodlite/internal/storage/prices"
	"github.com/rmachado-dev/hodlite/internal/storage/snapshots"
	"github.com/rmachado-dev/hodlite/internal/web"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	lotStore, err := lots.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatal("failed to init lot store", zap.Error(err))
	}

	priceStore, err := prices.NewStore(cfg.DataDir, cfg.HistoryLimit)
	if err != nil {
		logger.Fatal("failed to init price history store", zap.Error(err))
	}

	snapshotStore, err := snapshots.NewWALStore(cfg.DataDir)
	if err != nil {
		logger.Fatal("failed to init snapshot journal", zap.Error(err))
	}
	defer snapshotStore.Close()

	var quotes pricer.Pricer
	switch cfg.Provider {
	case config.ProviderBinance:
		// public ticker endpoints need no credentials
		quotes = pricer.NewBinancePricer(binance.NewClient("", ""))
	default:
		quotes = pricer.NewCoinGeckoPricer(pricer.DefaultCoinGeckoURL, cfg.FetchTimeout)
	}

	service := portfolio.New(logger, lotStore, priceStore, snapshotStore,
		quotes, valuer.New(cfg.FeeRate), cfg.FetchTimeout)

	feeRatePct := cfg.FeeRate.Mul(decimal.NewFromInt(100)).InexactFloat64()
	server := web.NewServer(logger, cfg.ListenAddr, service, snapshotStore, feeRatePct)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("started",
		zap.String("addr", cfg.ListenAddr),
		zap.String("provider", cfg.Provider),
		zap.String("data_dir", cfg.DataDir))

	if err := server.Start(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
