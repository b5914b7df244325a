package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Lot is a single recorded cryptocurrency purchase. Lots are created on user
// submission and deleted by id, never mutated in place.
type Lot struct {
	ID             int64           `json:"id"`
	Coin           string          `json:"coin"`
	Fiat           string          `json:"fiat"`
	PurchaseAmount decimal.Decimal `json:"purchase_amount"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewLot validates inputs and builds a lot with a time-derived id.
func NewLot(coin, fiat string, amount, price decimal.Decimal, now time.Time) (Lot, error) {
	pair, err := NewPair(coin, fiat)
	if err != nil {
		return Lot{}, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return Lot{}, errors.Wrapf(ErrInvalidLotInput, "purchase amount %s must be positive", amount)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return Lot{}, errors.Wrapf(ErrInvalidLotInput, "purchase price %s must be positive", price)
	}

	return Lot{
		ID:             now.UnixMilli(),
		Coin:           pair.Coin,
		Fiat:           pair.Fiat,
		PurchaseAmount: amount,
		PurchasePrice:  price,
		CreatedAt:      now,
	}, nil
}

// Pair returns the (coin, fiat) pair the lot is denominated in.
func (l Lot) Pair() Pair {
	return Pair{Coin: l.Coin, Fiat: l.Fiat}
}
