package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// UnknownTokenLabel is used for name and symbol when the provider does not supply them.
const UnknownTokenLabel = "Unknown"

// TokenHolding represents one token balance of a wallet together with its valuation.
type TokenHolding struct {
	Address     string              `json:"address,omitempty"`
	Symbol      string              `json:"symbol"`
	Name        string              `json:"name"`
	Decimals    int                 `json:"decimals"`
	Balance     *big.Int            `json:"balance"`
	UIAmount    decimal.Decimal     `json:"uiAmount"`
	PriceUSD    decimal.NullDecimal `json:"priceUsd"`
	ValueUSD    decimal.NullDecimal `json:"valueUsd"`
	ValueNative decimal.NullDecimal `json:"valueNative"`
}

// QuoteValue returns the USD value, treating an unresolved value as zero.
func (h TokenHolding) QuoteValue() decimal.Decimal {
	if !h.ValueUSD.Valid {
		return decimal.Zero
	}
	return h.ValueUSD.Decimal
}

// ApplyNativePrice derives ValueNative from ValueUSD.
// The native value stays unresolved unless both the USD value and a positive native price are known.
func (h *TokenHolding) ApplyNativePrice(nativePriceUSD decimal.Decimal) {
	h.ValueNative = ToNative(h.ValueUSD, nativePriceUSD)
}

// Clone returns a deep copy of the holding.
func (h TokenHolding) Clone() TokenHolding {
	c := h
	if h.Balance != nil {
		c.Balance = new(big.Int).Set(h.Balance)
	}
	return c
}

// ToNative converts a USD amount into native-coin units rounded to NativePrecision.
func ToNative(valueUSD decimal.NullDecimal, nativePriceUSD decimal.Decimal) decimal.NullDecimal {
	if !valueUSD.Valid || !nativePriceUSD.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(valueUSD.Decimal.DivRound(nativePriceUSD, NativePrecision))
}
