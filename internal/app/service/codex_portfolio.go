package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/client"
	"portfolio_reporter/internal/domain/entity"
	upstream "portfolio_reporter/internal/entity"
	"portfolio_reporter/internal/infrastructure/cache"
)

// codexTokenDecimals is assumed for every Codex balance; the Balances query does not return token metadata.
const codexTokenDecimals = 6

// codexPortfolioService values a wallet from Codex GraphQL balances.
// Codex returns no prices, so holdings carry no USD value and totals are zero.
type codexPortfolioService struct {
	codexClient client.CodexClient
	prices      port.PriceProvider
	cache       *cache.TTLCache
	networkID   int64
	snapshotTTL time.Duration
	logger      port.Logger
	now         func() time.Time
}

// NewCodexPortfolioService creates a PortfolioFetcher backed by Codex.
// A non-positive snapshotTTL falls back to DefaultSnapshotTTL.
func NewCodexPortfolioService(
	cc client.CodexClient,
	prices port.PriceProvider,
	c *cache.TTLCache,
	networkID int64,
	snapshotTTL time.Duration,
	l port.Logger,
) port.PortfolioFetcher {
	if snapshotTTL <= 0 {
		snapshotTTL = DefaultSnapshotTTL
	}
	return &codexPortfolioService{
		codexClient: cc,
		prices:      prices,
		cache:       c,
		networkID:   networkID,
		snapshotTTL: snapshotTTL,
		logger:      l,
		now:         time.Now,
	}
}

func (s *codexPortfolioService) Source() string { return ProviderCodex }

// FetchPortfolio implements port.PortfolioFetcher. Only the first page of balances is read.
func (s *codexPortfolioService) FetchPortfolio(ctx context.Context, wallet string) (entity.Portfolio, error) {
	cacheKey := PortfolioCacheKey(wallet)
	if cached, found := cache.Load[entity.Portfolio](s.cache, cacheKey); found {
		s.logger.Debug("Cache hit for portfolio", "wallet", wallet, "source", cached.Source)
		return cached, nil
	}
	s.logger.Debug("Cache miss for portfolio", "wallet", wallet, "source", ProviderCodex)

	page, err := s.codexClient.GetBalances(ctx, wallet, s.networkID)
	if err != nil {
		s.logger.Error("Error fetching portfolio", "wallet", wallet, "error", err)
		return entity.Portfolio{}, fmt.Errorf("fetch codex balances for %s: %w", wallet, err)
	}
	if page.Cursor != nil && *page.Cursor != "" {
		s.logger.Debug("Codex has more balance pages, only the first is used", "wallet", wallet)
	}

	prices, err := s.prices.FetchPrices(ctx)
	if err != nil {
		return entity.Portfolio{}, fmt.Errorf("fetch prices for %s: %w", wallet, err)
	}

	portfolio := entity.Portfolio{
		Wallet:    wallet,
		Source:    ProviderCodex,
		Items:     make([]entity.TokenHolding, 0, len(page.Items)),
		FetchedAt: s.now().UTC(),
	}
	for _, item := range page.Items {
		portfolio.Items = append(portfolio.Items, holdingFromCodex(item))
	}
	portfolio.TotalUSD = portfolio.ItemsValueUSD()

	finalizePortfolio(&portfolio, prices.Native())

	cache.Store(s.cache, cacheKey, portfolio, s.snapshotTTL)
	return portfolio, nil
}

func holdingFromCodex(item upstream.CodexBalanceItem) entity.TokenHolding {
	address, _, _ := strings.Cut(item.TokenID, ":")
	balance := item.Balance.Int
	if balance == nil {
		balance = new(big.Int)
	}
	return entity.TokenHolding{
		Address:  address,
		Name:     entity.UnknownTokenLabel,
		Symbol:   address,
		Decimals: codexTokenDecimals,
		Balance:  balance,
		UIAmount: item.ShiftedBalance.OrZero(),
	}
}
