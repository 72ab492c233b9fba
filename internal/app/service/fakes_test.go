package service

import (
	"context"
	"math/big"
	"sync"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/domain/entity"
	upstream "portfolio_reporter/internal/entity"
	"portfolio_reporter/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func testLogger() port.Logger {
	return logger.FromZap(zap.NewNop(), "test")
}

func flex(s string) upstream.FlexDecimal {
	return upstream.FlexDecimal{NullDecimal: decimal.NewNullDecimal(decimal.RequireFromString(s))}
}

func flexInt(n int64) upstream.FlexBigInt {
	return upstream.FlexBigInt{Int: big.NewInt(n)}
}

type fakeBirdeyeClient struct {
	mu         sync.Mutex
	tokenList  func(wallet string) (*upstream.BirdeyeTokenListResponse, error)
	price      func(address string) (*upstream.BirdeyePriceResponse, error)
	listCalls  int
	priceCalls []string
}

func (f *fakeBirdeyeClient) GetWalletTokenList(_ context.Context, wallet string) (*upstream.BirdeyeTokenListResponse, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	return f.tokenList(wallet)
}

func (f *fakeBirdeyeClient) GetTokenPrice(_ context.Context, address string) (*upstream.BirdeyePriceResponse, error) {
	f.mu.Lock()
	f.priceCalls = append(f.priceCalls, address)
	f.mu.Unlock()
	return f.price(address)
}

func (f *fakeBirdeyeClient) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeBirdeyeClient) priceCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.priceCalls)
}

type fakeCodexClient struct {
	mu       sync.Mutex
	balances func(wallet string, networkID int64) (*upstream.CodexBalanceConnection, error)
	calls    int
}

func (f *fakeCodexClient) GetBalances(_ context.Context, wallet string, networkID int64) (*upstream.CodexBalanceConnection, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.balances(wallet, networkID)
}

func (f *fakeCodexClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePriceProvider struct {
	mu    sync.Mutex
	table entity.PriceTable
	err   error
	calls int
}

func (f *fakePriceProvider) FetchPrices(context.Context) (entity.PriceTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return entity.PriceTable{}, f.err
	}
	return f.table.Clone(), nil
}

func priceTable(sol, btc, eth string) entity.PriceTable {
	t := entity.NewPriceTable()
	t.Set(entity.AssetSolana, decimal.RequireFromString(sol))
	t.Set(entity.AssetBitcoin, decimal.RequireFromString(btc))
	t.Set(entity.AssetEthereum, decimal.RequireFromString(eth))
	return t
}

type fakePortfolioFetcher struct {
	portfolio entity.Portfolio
	err       error
}

func (f *fakePortfolioFetcher) FetchPortfolio(context.Context, string) (entity.Portfolio, error) {
	if f.err != nil {
		return entity.Portfolio{}, f.err
	}
	return f.portfolio.Clone(), nil
}

func (f *fakePortfolioFetcher) Source() string { return "fake" }

type mapSettings map[string]string

func (m mapSettings) GetSetting(key string) string { return m[key] }
