package service

import (
	"fmt"
	"strings"
	"time"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/client"
	"portfolio_reporter/internal/domain/entity"
	"portfolio_reporter/internal/infrastructure/cache"

	"github.com/shopspring/decimal"
)

const (
	ProviderBirdeye = "birdeye"
	ProviderCodex   = "codex"

	// DefaultSnapshotTTL is how long a Codex portfolio snapshot stays cached.
	DefaultSnapshotTTL = time.Minute
)

// reconciliationTolerance is the largest accepted gap between a provider total and the sum of its items.
var reconciliationTolerance = decimal.RequireFromString("0.01")

// PortfolioDependencies groups what the portfolio fetchers need.
type PortfolioDependencies struct {
	Birdeye     client.BirdeyeClient
	Codex       client.CodexClient
	Prices      port.PriceProvider
	Cache       *cache.TTLCache
	Network     entity.NetworkDefinition
	SnapshotTTL time.Duration
	Logger      port.Logger
}

// NewPortfolioFetcher returns the fetcher backed by the named provider.
func NewPortfolioFetcher(provider string, deps PortfolioDependencies) (port.PortfolioFetcher, error) {
	if deps.Cache == nil || deps.Prices == nil || deps.Logger == nil {
		return nil, fmt.Errorf("portfolio fetcher requires cache, price provider and logger")
	}

	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderBirdeye:
		if deps.Birdeye == nil {
			return nil, fmt.Errorf("provider %q requires a Birdeye client", ProviderBirdeye)
		}
		return NewBirdeyePortfolioService(deps.Birdeye, deps.Prices, deps.Cache, deps.Logger), nil
	case ProviderCodex:
		if deps.Codex == nil {
			return nil, fmt.Errorf("provider %q requires a Codex client", ProviderCodex)
		}
		return NewCodexPortfolioService(deps.Codex, deps.Prices, deps.Cache, deps.Network.CodexNetworkID, deps.SnapshotTTL, deps.Logger), nil
	default:
		return nil, fmt.Errorf("unknown portfolio provider %q", provider)
	}
}

// PortfolioCacheKey returns the cache key holding the snapshot of wallet.
// Both providers share the key, so switching provider does not invalidate a live snapshot.
func PortfolioCacheKey(wallet string) string {
	return "portfolio-" + wallet
}

// finalizePortfolio derives native values and orders the holdings, highest USD value first.
func finalizePortfolio(p *entity.Portfolio, nativePrice decimal.Decimal) {
	for i := range p.Items {
		p.Items[i].ApplyNativePrice(nativePrice)
	}
	p.TotalNative = decimal.Zero
	if nativePrice.IsPositive() {
		p.TotalNative = p.TotalUSD.DivRound(nativePrice, entity.NativePrecision)
	}
	p.SortItemsByValue()
}

// reconcileTotals warns when the provider total drifts from the sum of item values.
// The provider total is kept either way.
func reconcileTotals(logger port.Logger, p entity.Portfolio) {
	itemsTotal := p.ItemsValueUSD()
	if p.TotalUSD.Sub(itemsTotal).Abs().GreaterThan(reconciliationTolerance) {
		logger.Warn("Portfolio total does not match the sum of its holdings",
			"wallet", p.Wallet,
			"source", p.Source,
			"total_usd", p.TotalUSD.String(),
			"items_usd", itemsTotal.String())
	}
}
