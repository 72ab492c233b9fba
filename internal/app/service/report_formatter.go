package service

import (
	"fmt"
	"strings"

	"portfolio_reporter/internal/domain/entity"
	"portfolio_reporter/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

const noHoldingsLine = "No tokens found with non-zero balance"

// FormatPortfolio renders the wallet report. It performs no I/O.
// Only holdings with a positive amount are listed.
func FormatPortfolio(title, wallet string, portfolio entity.Portfolio, prices entity.PriceTable) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Wallet Address: %s\n\n", wallet)
	fmt.Fprintf(&b, "Total Value: $%s (%s SOL)\n\n",
		utils.FormatFixed(portfolio.TotalUSD, entity.QuotePrecision),
		utils.FormatFixed(portfolio.TotalNative, entity.NativePrecision))

	b.WriteString("Token Balances:\n")
	items := portfolio.NonZeroItems()
	if len(items) == 0 {
		b.WriteString(noHoldingsLine + "\n")
	}
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s): %s ($%s | %s SOL)\n",
			item.Name,
			item.Symbol,
			utils.FormatFixed(item.UIAmount, entity.NativePrecision),
			utils.FormatFixed(item.QuoteValue(), entity.QuotePrecision),
			utils.FormatFixed(orZero(item.ValueNative), entity.NativePrecision))
	}

	b.WriteString("\nMarket Prices:\n")
	for _, asset := range entity.ReferenceAssets {
		fmt.Fprintf(&b, "%s: $%s\n", asset.Ticker(), utils.FormatFixed(prices.Get(asset), entity.QuotePrecision))
	}
	return b.String()
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
