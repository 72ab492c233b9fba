package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/client"
	"portfolio_reporter/internal/domain/entity"
	upstream "portfolio_reporter/internal/entity"
	"portfolio_reporter/internal/infrastructure/cache"
	"portfolio_reporter/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

// birdeyePortfolioService values a wallet from the Birdeye token list.
type birdeyePortfolioService struct {
	birdeyeClient client.BirdeyeClient
	prices        port.PriceProvider
	cache         *cache.TTLCache
	logger        port.Logger
	now           func() time.Time
}

// NewBirdeyePortfolioService creates a PortfolioFetcher backed by Birdeye.
// Snapshots are cached with the cache's default TTL.
func NewBirdeyePortfolioService(bc client.BirdeyeClient, prices port.PriceProvider, c *cache.TTLCache, l port.Logger) port.PortfolioFetcher {
	return &birdeyePortfolioService{
		birdeyeClient: bc,
		prices:        prices,
		cache:         c,
		logger:        l,
		now:           time.Now,
	}
}

func (s *birdeyePortfolioService) Source() string { return ProviderBirdeye }

// FetchPortfolio implements port.PortfolioFetcher.
func (s *birdeyePortfolioService) FetchPortfolio(ctx context.Context, wallet string) (entity.Portfolio, error) {
	cacheKey := PortfolioCacheKey(wallet)
	if cached, found := cache.Load[entity.Portfolio](s.cache, cacheKey); found {
		s.logger.Debug("Cache hit for portfolio", "wallet", wallet, "source", cached.Source)
		return cached, nil
	}
	s.logger.Debug("Cache miss for portfolio", "wallet", wallet, "source", ProviderBirdeye)

	resp, err := s.birdeyeClient.GetWalletTokenList(ctx, wallet)
	if err != nil {
		s.logger.Error("Error fetching portfolio", "wallet", wallet, "error", err)
		return entity.Portfolio{}, fmt.Errorf("fetch birdeye token list for %s: %w", wallet, err)
	}
	if resp == nil || !resp.Success || resp.Data == nil || resp.Data.Items == nil || !resp.Data.TotalUsd.Valid {
		s.logger.Error("No portfolio data available", "wallet", wallet)
		return entity.Portfolio{}, &entity.UpstreamDataError{Source: ProviderBirdeye, Err: entity.ErrNoPortfolioData}
	}

	prices, err := s.prices.FetchPrices(ctx)
	if err != nil {
		return entity.Portfolio{}, fmt.Errorf("fetch prices for %s: %w", wallet, err)
	}

	portfolio := entity.Portfolio{
		Wallet:    wallet,
		Source:    ProviderBirdeye,
		Items:     make([]entity.TokenHolding, 0, len(resp.Data.Items)),
		FetchedAt: s.now().UTC(),
	}
	for _, item := range resp.Data.Items {
		portfolio.Items = append(portfolio.Items, holdingFromBirdeye(item))
	}

	portfolio.TotalUSD = resp.Data.TotalUsd.Decimal
	reconcileTotals(s.logger, portfolio)

	finalizePortfolio(&portfolio, prices.Native())

	cache.Store(s.cache, cacheKey, portfolio, cache.DefaultTTL)
	return portfolio, nil
}

func holdingFromBirdeye(item upstream.BirdeyeTokenItem) entity.TokenHolding {
	h := entity.TokenHolding{
		Address:  item.Address,
		Name:     item.Name,
		Symbol:   item.Symbol,
		Decimals: item.Decimals,
		Balance:  item.Balance.Int,
		PriceUSD: item.PriceUsd.NullDecimal,
		ValueUSD: decimal.NewNullDecimal(item.ValueUsd.OrZero()),
	}
	if h.Name == "" {
		h.Name = entity.UnknownTokenLabel
	}
	if h.Symbol == "" {
		h.Symbol = entity.UnknownTokenLabel
	}
	if h.Balance == nil {
		h.Balance = new(big.Int)
	}
	if item.UIAmount.Valid {
		h.UIAmount = item.UIAmount.Decimal
	} else {
		h.UIAmount = utils.ScaleAmount(h.Balance, h.Decimals)
	}
	return h
}
