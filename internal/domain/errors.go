package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedAsset marks a coin or fiat outside the supported sets.
	ErrUnsupportedAsset = errors.New("unsupported asset")
	// ErrInvalidLotInput marks a non-positive or unparseable purchase value.
	ErrInvalidLotInput = errors.New("invalid lot input")
)

// PriceFetchError reports a transport, timeout or malformed-response failure
// from a quote provider. It carries the pair so the aggregator can degrade
// only the affected rows.
type PriceFetchError struct {
	Pair Pair
	Err  error
}

func (e *PriceFetchError) Error() string {
	return fmt.Sprintf("price fetch for %s: %v", e.Pair, e.Err)
}

func (e *PriceFetchError) Unwrap() error {
	return e.Err
}
