package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// QuotePrecision is the number of decimal places used for USD amounts in reports.
	QuotePrecision int32 = 2
	// NativePrecision is the number of decimal places used for native-coin amounts.
	NativePrecision int32 = 6
)

// Portfolio is a valuation snapshot of a single wallet.
type Portfolio struct {
	Wallet      string          `json:"wallet"`
	Source      string          `json:"source"`
	TotalUSD    decimal.Decimal `json:"totalUsd"`
	TotalNative decimal.Decimal `json:"totalNative"`
	Items       []TokenHolding  `json:"items"`
	FetchedAt   time.Time       `json:"fetchedAt"`
}

// ItemsValueUSD sums the resolvable USD values of all holdings.
func (p Portfolio) ItemsValueUSD() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range p.Items {
		sum = sum.Add(item.QuoteValue())
	}
	return sum
}

// SortItemsByValue orders holdings by USD value, highest first.
// Holdings of equal value keep the order the provider returned them in.
func (p *Portfolio) SortItemsByValue() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		return p.Items[i].QuoteValue().GreaterThan(p.Items[j].QuoteValue())
	})
}

// NonZeroItems returns the holdings whose human-scaled amount is strictly positive.
func (p Portfolio) NonZeroItems() []TokenHolding {
	items := make([]TokenHolding, 0, len(p.Items))
	for _, item := range p.Items {
		if item.UIAmount.IsPositive() {
			items = append(items, item)
		}
	}
	return items
}

// Clone returns a deep copy of the portfolio.
func (p Portfolio) Clone() Portfolio {
	c := p
	if p.Items != nil {
		c.Items = make([]TokenHolding, len(p.Items))
		for i, item := range p.Items {
			c.Items[i] = item.Clone()
		}
	}
	return c
}
