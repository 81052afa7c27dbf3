// Package unit converts on-chain smallest-unit integers to and from exact
// decimal amounts.
package unit

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrPrecision is returned when a decimal amount carries more fractional
// digits than the asset supports.
var ErrPrecision = errors.New("amount exceeds asset precision")

// ToDecimal returns raw / 10^decimals without any floating point step.
func ToDecimal(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// FromDecimal is the inverse of ToDecimal.
func FromDecimal(amount decimal.Decimal, decimals uint8) (*big.Int, error) {
	shifted := amount.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: %s with %d decimals", ErrPrecision, amount.String(), decimals)
	}
	return shifted.BigInt(), nil
}

// Equal reports whether raw, rendered with decimals, is exactly expected.
// Trailing zeros do not matter: 0.5 equals 0.500000.
func Equal(raw *big.Int, decimals uint8, expected decimal.Decimal) bool {
	return ToDecimal(raw, decimals).Equal(expected)
}
