// Package domain defines the core data structures of the lot tracker.
package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SupportedCoins and SupportedFiat are closed sets; anything else is rejected
// before pricing or valuation.
var (
	SupportedCoins = []string{"BTC", "ETH"}
	SupportedFiat  = []string{"BRL", "USD"}
)

// Pair is a (coin, fiat) combination, e.g. (BTC, USD).
type Pair struct {
	Coin string
	Fiat string
}

// NewPair validates both symbols against the supported sets.
func NewPair(coin, fiat string) (Pair, error) {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	fiat = strings.ToUpper(strings.TrimSpace(fiat))

	if !contains(SupportedCoins, coin) {
		return Pair{}, errors.Wrapf(ErrUnsupportedAsset, "coin %q", coin)
	}
	if !contains(SupportedFiat, fiat) {
		return Pair{}, errors.Wrapf(ErrUnsupportedAsset, "fiat %q", fiat)
	}

	return Pair{Coin: coin, Fiat: fiat}, nil
}

// String returns the underscore form used as a storage key, e.g. "BTC_USD".
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.Coin, p.Fiat)
}

// Symbol returns the concatenated exchange symbol, e.g. "BTCUSD".
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.Coin, p.Fiat)
}

// ParsePair parses the underscore form produced by String.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 {
		return Pair{}, errors.Wrapf(ErrUnsupportedAsset, "pair key %q", s)
	}
	return NewPair(parts[0], parts[1])
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
