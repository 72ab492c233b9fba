package service

import (
	"context"
	"errors"
	"fmt"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/client"
	"portfolio_reporter/internal/domain/entity"
	"portfolio_reporter/internal/infrastructure/cache"
	"portfolio_reporter/internal/pkg/metrics"

	"github.com/shopspring/decimal"
)

// PricesCacheKey is the cache key under which the reference price table is stored.
const PricesCacheKey = "prices"

// priceServiceImpl implements port.PriceProvider on top of the Birdeye price endpoint.
type priceServiceImpl struct {
	birdeyeClient client.BirdeyeClient
	cache         *cache.TTLCache
	addresses     map[entity.ReferenceAsset]string
	logger        port.Logger
}

// NewPriceService creates a new instance of priceServiceImpl.
// addresses maps each reference asset to its token address; a missing or empty
// address leaves that asset's price at zero.
func NewPriceService(
	bc client.BirdeyeClient,
	c *cache.TTLCache,
	addresses map[entity.ReferenceAsset]string,
	l port.Logger,
) port.PriceProvider {
	copied := make(map[entity.ReferenceAsset]string, len(addresses))
	for asset, addr := range addresses {
		copied[asset] = addr
	}
	return &priceServiceImpl{
		birdeyeClient: bc,
		cache:         c,
		addresses:     copied,
		logger:        l,
	}
}

// FetchPrices implements port.PriceProvider.
// A cached table is returned as is, including prices that defaulted to zero.
// Transport failures escalate and leave the cache untouched; every other per-asset
// problem is logged and leaves that asset at zero.
func (s *priceServiceImpl) FetchPrices(ctx context.Context) (entity.PriceTable, error) {
	if cached, found := cache.Load[entity.PriceTable](s.cache, PricesCacheKey); found {
		s.logger.Debug("Cache hit for prices")
		return cached, nil
	}
	s.logger.Debug("Cache miss for prices")

	prices := entity.NewPriceTable()
	for _, asset := range entity.ReferenceAssets {
		price, err := s.fetchAssetPrice(ctx, asset)
		if err != nil {
			s.logger.Error("Error fetching prices", "asset", string(asset), "error", err)
			return entity.PriceTable{}, fmt.Errorf("fetch %s price: %w", asset, err)
		}
		prices.Set(asset, price)
	}

	cache.Store(s.cache, PricesCacheKey, prices, cache.DefaultTTL)
	return prices, nil
}

// fetchAssetPrice returns a non-nil error only for failures that must escalate.
func (s *priceServiceImpl) fetchAssetPrice(ctx context.Context, asset entity.ReferenceAsset) (decimal.Decimal, error) {
	address := s.addresses[asset]
	if address == "" {
		cfgErr := &entity.ConfigurationError{Setting: addressSettingFor(asset), Reason: "price defaults to zero"}
		s.logger.Warn("No address configured for reference asset", "asset", string(asset), "error", cfgErr)
		metrics.PriceResolution.WithLabelValues(string(asset), "missing").Inc()
		return decimal.Zero, nil
	}

	resp, err := s.birdeyeClient.GetTokenPrice(ctx, address)
	if err != nil {
		var dataErr *entity.UpstreamDataError
		if errors.As(err, &dataErr) {
			s.logger.Warn("Malformed price response, defaulting to zero", "asset", string(asset), "token", address, "error", err)
			metrics.PriceResolution.WithLabelValues(string(asset), "missing").Inc()
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	if resp == nil || resp.Data == nil || !resp.Data.Value.Valid || !resp.Data.Value.Decimal.IsPositive() {
		s.logger.Warn("No price data available for token", "asset", string(asset), "token", address)
		metrics.PriceResolution.WithLabelValues(string(asset), "missing").Inc()
		return decimal.Zero, nil
	}

	metrics.PriceResolution.WithLabelValues(string(asset), "resolved").Inc()
	return resp.Data.Value.Decimal, nil
}

func addressSettingFor(asset entity.ReferenceAsset) string {
	return asset.Ticker() + "_ADDRESS"
}
