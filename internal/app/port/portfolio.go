package port

import (
	"context"

	"portfolio_reporter/internal/domain/entity"
)

// PortfolioFetcher defines the interface for valuing a wallet's holdings.
// Implementations differ by the upstream balance provider they query.
type PortfolioFetcher interface {
	// FetchPortfolio returns a snapshot of the wallet with holdings sorted by USD value, highest first.
	FetchPortfolio(ctx context.Context, wallet string) (entity.Portfolio, error)

	// Source names the upstream provider backing this fetcher.
	Source() string
}

// PriceProvider defines the interface for resolving reference asset prices.
type PriceProvider interface {
	// FetchPrices returns USD prices for every reference asset. Unresolved prices are zero.
	FetchPrices(ctx context.Context) (entity.PriceTable, error)
}

// ReportService defines the inbound operation producing a human-readable wallet report.
type ReportService interface {
	// Report resolves the wallet from settings and renders its report.
	Report(ctx context.Context, settings RuntimeSettings) (string, error)

	// GetFormattedPortfolio renders the report for a wallet, degrading to a fallback message on failure.
	GetFormattedPortfolio(ctx context.Context, wallet string) string
}
