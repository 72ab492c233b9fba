package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ScaleAmount converts a raw on-chain integer amount into human units.
// Example: amount=1234500, decimals=6 => 1.2345
// A nil amount is treated as zero.
func ScaleAmount(amount *big.Int, decimals int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// FormatFixed renders d with exactly places digits after the decimal point,
// rounding half away from zero.
func FormatFixed(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
