package entity

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FlexDecimal accepts a JSON number, a numeric string, or null.
// null, "" and "N/A" leave the value unresolved.
type FlexDecimal struct {
	decimal.NullDecimal
}

func (f *FlexDecimal) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if raw == "" || raw == "null" || raw == "N/A" {
		f.NullDecimal = decimal.NullDecimal{}
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("cannot unmarshal %s into decimal: %w", string(data), err)
	}
	f.NullDecimal = decimal.NewNullDecimal(d)
	return nil
}

// OrZero returns the value, or zero when unresolved.
func (f FlexDecimal) OrZero() decimal.Decimal {
	if !f.Valid {
		return decimal.Zero
	}
	return f.Decimal
}

// FlexBigInt accepts an integer given as a JSON number or string.
// Scientific or fractional notation is truncated toward zero.
type FlexBigInt struct {
	Int *big.Int
}

func (f *FlexBigInt) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if raw == "" || raw == "null" {
		f.Int = nil
		return nil
	}
	if n, ok := new(big.Int).SetString(raw, 10); ok {
		f.Int = n
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("cannot unmarshal %s into integer: %w", string(data), err)
	}
	f.Int = d.BigInt()
	return nil
}
