// Package config loads immutable service configuration from yaml, flags and
// environment. Fee rate and history cap are named options so policy constants
// never live as magic numbers inside the engine.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	ProviderCoinGecko = "coingecko"
	ProviderBinance   = "binance"

	defaultListenAddr   = ":8080"
	defaultDataDir      = "./data"
	defaultFeeRate      = "0.001"
	defaultHistoryLimit = 100
	defaultFetchTimeout = 10 * time.Second
)

// Config is passed into services at construction and never mutated after Get.
type Config struct {
	ListenAddr   string
	DataDir      string
	Provider     string
	FeeRate      decimal.Decimal
	HistoryLimit int
	FetchTimeout time.Duration
}

type configTmp struct {
	ListenAddr   string        `yaml:"listen_addr,omitempty"`
	DataDir      string        `yaml:"data_dir,omitempty"`
	Provider     string        `yaml:"provider,omitempty"`
	FeeRate      string        `yaml:"fee_rate,omitempty"`
	HistoryLimit string        `yaml:"history_limit,omitempty"`
	FetchTimeout time.Duration `yaml:"fetch_timeout,omitempty"`
}

// Get reads the optional yaml config named by -config, overlays env vars
// (a .env file is honored when present) and fills defaults.
func Get() (Config, error) {
	path := flag.String("config", "", "path to yaml config")
	flag.Parse()

	// missing .env is fine, Load only seeds env vars when the file exists
	_ = godotenv.Load()

	var tmp configTmp
	if *path != "" {
		f, err := os.ReadFile(*path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", *path, err)
		}
		if err := yaml.Unmarshal(f, &tmp); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", *path, err)
		}
	}

	overlayEnv(&tmp)

	return buildConfig(tmp)
}

func overlayEnv(tmp *configTmp) {
	if v := os.Getenv("HODLITE_LISTEN_ADDR"); v != "" {
		tmp.ListenAddr = v
	}
	if v := os.Getenv("HODLITE_DATA_DIR"); v != "" {
		tmp.DataDir = v
	}
	if v := os.Getenv("HODLITE_PROVIDER"); v != "" {
		tmp.Provider = v
	}
	if v := os.Getenv("HODLITE_FEE_RATE"); v != "" {
		tmp.FeeRate = v
	}
	if v := os.Getenv("HODLITE_HISTORY_LIMIT"); v != "" {
		tmp.HistoryLimit = v
	}
}

func buildConfig(tmp configTmp) (Config, error) {
	cfg := Config{
		ListenAddr:   defaultListenAddr,
		DataDir:      defaultDataDir,
		Provider:     ProviderCoinGecko,
		HistoryLimit: defaultHistoryLimit,
		FetchTimeout: defaultFetchTimeout,
	}

	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	if tmp.DataDir != "" {
		cfg.DataDir = tmp.DataDir
	}
	if tmp.Provider != "" {
		if tmp.Provider != ProviderCoinGecko && tmp.Provider != ProviderBinance {
			return Config{}, fmt.Errorf("unknown provider %q, must be %q or %q",
				tmp.Provider, ProviderCoinGecko, ProviderBinance)
		}
		cfg.Provider = tmp.Provider
	}
	if tmp.FetchTimeout > 0 {
		cfg.FetchTimeout = tmp.FetchTimeout
	}

	feeRaw := tmp.FeeRate
	if feeRaw == "" {
		feeRaw = defaultFeeRate
	}
	feeRate, err := decimal.NewFromString(feeRaw)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'fee_rate' param (correct format is 0.001): %w", err)
	}
	if feeRate.IsNegative() || feeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("fee_rate %s must be in [0, 1)", feeRate)
	}
	cfg.FeeRate = feeRate

	if tmp.HistoryLimit != "" {
		limit, err := strconv.Atoi(tmp.HistoryLimit)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'history_limit' param (must be an integer): %w", err)
		}
		if limit <= 0 {
			return Config{}, fmt.Errorf("history_limit %d must be positive", limit)
		}
		cfg.HistoryLimit = limit
	}

	return cfg, nil
}
