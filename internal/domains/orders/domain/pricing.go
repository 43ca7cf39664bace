package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNegativePrice = errors.New("unit price must not be negative")

// TotalPrice computes unit price times quantity with exact fixed-point
// arithmetic. The quantity must be positive.
func TotalPrice(unitPrice decimal.Decimal, quantity int32) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Decimal{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return decimal.Decimal{}, ErrNegativePrice
	}
	return unitPrice.Mul(decimal.NewFromInt32(quantity)), nil
}
