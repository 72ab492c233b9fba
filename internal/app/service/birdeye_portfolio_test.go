package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio_reporter/internal/domain/entity"
	upstream "portfolio_reporter/internal/entity"
	"portfolio_reporter/internal/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTokenList() *upstream.BirdeyeTokenListResponse {
	return &upstream.BirdeyeTokenListResponse{
		Success: true,
		Data: &upstream.BirdeyeTokenListData{
			Wallet:   "W1",
			TotalUsd: flex("100"),
			Items: []upstream.BirdeyeTokenItem{
				{Address: "EPjF", Decimals: 6, Balance: flexInt(40000000), UIAmount: flex("40"), Name: "USD Coin", Symbol: "USDC", PriceUsd: flex("1"), ValueUsd: flex("40")},
				{Address: "So11", Decimals: 9, Balance: flexInt(400000000), UIAmount: flex("0.4"), Name: "Wrapped SOL", Symbol: "SOL", PriceUsd: flex("150"), ValueUsd: flex("60")},
			},
		},
	}
}

func newBirdeyeFixture(list func(string) (*upstream.BirdeyeTokenListResponse, error), solPrice string) (*fakeBirdeyeClient, *fakePriceProvider, *cache.TTLCache, *birdeyePortfolioService) {
	bc := &fakeBirdeyeClient{tokenList: list}
	pp := &fakePriceProvider{table: priceTable(solPrice, "65000", "3000")}
	c := cache.New(time.Minute, 0)
	svc := NewBirdeyePortfolioService(bc, pp, c, testLogger()).(*birdeyePortfolioService)
	return bc, pp, c, svc
}

func TestBirdeyePortfolio_ValuesAndSorts(t *testing.T) {
	bc, _, _, svc := newBirdeyeFixture(func(string) (*upstream.BirdeyeTokenListResponse, error) {
		return sampleTokenList(), nil
	}, "150")

	p, err := svc.FetchPortfolio(context.Background(), "W1")
	require.NoError(t, err)

	assert.Equal(t, "W1", p.Wallet)
	assert.Equal(t, ProviderBirdeye, p.Source)
	assert.Equal(t, "100", p.TotalUSD.String())
	assert.Equal(t, "0.666667", p.TotalNative.String())

	require.Len(t, p.Items, 2)
	assert.Equal(t, "SOL", p.Items[0].Symbol)
	assert.Equal(t, "USDC", p.Items[1].Symbol)
	assert.Equal(t, "0.4", p.Items[0].ValueNative.Decimal.String())
	assert.Equal(t, "0.266667", p.Items[1].ValueNative.Decimal.String())
	assert.Equal(t, 1, bc.listCallCount())
}

func TestBirdeyePortfolio_CacheHitSkipsUpstream(t *testing.T) {
	bc, pp, _, svc := newBirdeyeFixture(func(string) (*upstream.BirdeyeTokenListResponse, error) {
		return sampleTokenList(), nil
	}, "150")

	first, err := svc.FetchPortfolio(context.Background(), "W1")
	require.NoError(t, err)
	first.Items[0].Symbol = "MUTATED"

	second, err := svc.FetchPortfolio(context.Background(), "W1")
	require.NoError(t, err)
	assert.Equal(t, 1, bc.listCallCount())
	assert.Equal(t, 1, pp.calls)
	assert.Equal(t, "SOL", second.Items[0].Symbol)
}

func TestBirdeyePortfolio_NoDataIsNotCached(t *testing.T) {
	tests := []struct {
		name string
		resp *upstream.BirdeyeTokenListResponse
	}{
		{name: "success false", resp: &upstream.BirdeyeTokenListResponse{Success: false}},
		{name: "missing data", resp: &upstream.BirdeyeTokenListResponse{Success: true}},
		{name: "missing items", resp: &upstream.BirdeyeTokenListResponse{Success: true, Data: &upstream.BirdeyeTokenListData{TotalUsd: flex("0")}}},
		{name: "missing totalUsd", resp: func() *upstream.BirdeyeTokenListResponse {
			resp := sampleTokenList()
			resp.Data.TotalUsd = upstream.FlexDecimal{}
			return resp
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc, pp, c, svc := newBirdeyeFixture(func(string) (*upstream.BirdeyeTokenListResponse, error) {
				return tt.resp, nil
			}, "150")

			_, err := svc.FetchPortfolio(context.Background(), "W1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrNoPortfolioData))
			var dataErr *entity.UpstreamDataError
			assert.ErrorAs(t, err, &dataErr)

			_, found := c.Get(PortfolioCacheKey("W1"))
			assert.False(t, found)
			assert.Zero(t, pp.calls)

			_, err = svc.FetchPortfolio(context.Background(), "W1")
			require.Error(t, err)
			assert.Equal(t, 2, bc.listCallCount(), "failures are never served from cache")
		})
	}
}

func TestBirdeyePortfolio_EmptyWalletIsValid(t *testing.T) {
	_, _, _, svc := newBirdeyeFixture(func(string) (*upstream.BirdeyeTokenListResponse, error) {
		return &upstream.BirdeyeTokenListResponse{
			Success: true,
			Data:    &upstream.BirdeyeTokenListData{TotalUsd: flex("0"), Items: []upstream.BirdeyeTokenItem{}},
		}, nil
	}, "150")

	p, err := svc.FetchPortfolio(context.Background(), "W1")
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.True(t, p.TotalUSD.IsZero())
	assert.True(t, p.TotalNative.IsZero())
}

func TestBirdeyePortfolio_ItemDefaults(t *testing.T) {
	_, _, _, svc := newBirdeyeFixture(func(string) (*upstream.BirdeyeTokenListResponse, error) {
		return &upstream.BirdeyeTokenListResponse{
			Success: true,
			Data: &upstream.BirdeyeTokenListData{
				TotalUsd: flex("0"),
				Items: []upstream.BirdeyeTokenItem{
					{Address: "mystery", Decimals: 6, Balance: flexInt(2500000)},
				},
			},
		}, nil
	}, "150")

	p, err := svc.FetchPortfolio(context.Background(), "W1")
	require.NoError(t, err)
	require.Len(t, p.Items, 1)

	h := p.Items[0]
	assert.Equal(t, entity.UnknownTokenLabel, h.Name)
	assert.Equal(t, entity.UnknownTokenLabel, h.Symbol)
	assert.Equal(t, "2.5", h.UIAmount.String(), "amount is derived from balance and decimals")
	assert.False(t, h.PriceUSD.Valid)
	require.True(t, h.ValueUSD.Valid)
	assert.True(t, h.ValueUSD.Decimal.IsZero())
	assert.True(t, h.ValueNative.Decimal.IsZero())
}

func TestBirdeyePortfolio_ZeroNativePriceLeavesNativeUnresolved(t *testing.T) {
	_, _, _, svc := newBirdeyeFixture(func(string) (*upstream.BirdeyeTokenListResponse, error) {
		return sampleTokenList(), nil
	}, "0")

	p, err := svc.FetchPortfolio(context.Background(), "W1")
	require.NoError(t, err)
	assert.True(t, p.TotalNative.IsZero())
	for _, item := range p.Items {
		assert.False(t, item.ValueNative.Valid)
	}
}

func TestBirdeyePortfolio_TiesKeepProviderOrder(t *testing.T) {
	_, _, _, svc := newBirdeyeFixture(func(string) (*upstream.BirdeyeTokenListResponse, error) {
		return &upstream.BirdeyeTokenListResponse{
			Success: true,
			Data: &upstream.BirdeyeTokenListData{
				TotalUsd: flex("30"),
				Items: []upstream.BirdeyeTokenItem{
					{Symbol: "A", UIAmount: flex("1"), ValueUsd: flex("10")},
					{Symbol: "B", UIAmount: flex("1"), ValueUsd: flex("10")},
					{Symbol: "C", UIAmount: flex("1"), ValueUsd: flex("10")},
				},
			},
		}, nil
	}, "150")

	p, err := svc.FetchPortfolio(context.Background(), "W1")
	require.NoError(t, err)
	symbols := []string{p.Items[0].Symbol, p.Items[1].Symbol, p.Items[2].Symbol}
	assert.Equal(t, []string{"A", "B", "C"}, symbols)
}

func TestBirdeyePortfolio_PropagatesErrors(t *testing.T) {
	upstreamErr := &entity.TransportError{URL: "https://public-api.birdeye.so/v1/wallet/token_list", Attempts: 3}
	_, _, c, svc := newBirdeyeFixture(func(string) (*upstream.BirdeyeTokenListResponse, error) {
		return nil, upstreamErr
	}, "150")

	_, err := svc.FetchPortfolio(context.Background(), "W1")
	assert.ErrorIs(t, err, upstreamErr)
	assert.Zero(t, c.Len())
}

func TestBirdeyePortfolio_PriceFailurePropagates(t *testing.T) {
	bc := &fakeBirdeyeClient{tokenList: func(string) (*upstream.BirdeyeTokenListResponse, error) {
		return sampleTokenList(), nil
	}}
	pp := &fakePriceProvider{err: errors.New("prices down")}
	c := cache.New(time.Minute, 0)
	svc := NewBirdeyePortfolioService(bc, pp, c, testLogger())

	_, err := svc.FetchPortfolio(context.Background(), "W1")
	require.Error(t, err)
	assert.Zero(t, c.Len())
}
