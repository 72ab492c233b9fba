package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio_reporter/internal/domain/entity"
	upstream "portfolio_reporter/internal/entity"
	"portfolio_reporter/internal/infrastructure/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddresses = map[entity.ReferenceAsset]string{
	entity.AssetSolana:   "So11111111111111111111111111111111111111112",
	entity.AssetBitcoin:  "btc-mint",
	entity.AssetEthereum: "eth-mint",
}

func pricesByAddress(values map[string]string) func(string) (*upstream.BirdeyePriceResponse, error) {
	return func(address string) (*upstream.BirdeyePriceResponse, error) {
		v, ok := values[address]
		if !ok {
			return &upstream.BirdeyePriceResponse{Success: true, Data: &upstream.BirdeyePriceData{}}, nil
		}
		return &upstream.BirdeyePriceResponse{Success: true, Data: &upstream.BirdeyePriceData{Value: flex(v)}}, nil
	}
}

func TestPriceService_FetchesAndCaches(t *testing.T) {
	bc := &fakeBirdeyeClient{price: pricesByAddress(map[string]string{
		"So11111111111111111111111111111111111111112": "150",
		"btc-mint": "65000.5",
		"eth-mint": "3000",
	})}
	svc := NewPriceService(bc, cache.New(time.Minute, 0), testAddresses, testLogger())

	prices, err := svc.FetchPrices(context.Background())
	require.NoError(t, err)
	assert.True(t, prices.Get(entity.AssetSolana).Equal(decimal.NewFromInt(150)))
	assert.True(t, prices.Get(entity.AssetBitcoin).Equal(decimal.RequireFromString("65000.5")))
	assert.True(t, prices.Get(entity.AssetEthereum).Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, []string{"So11111111111111111111111111111111111111112", "btc-mint", "eth-mint"}, bc.priceCalls)

	again, err := svc.FetchPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, bc.priceCallCount(), "cache hit must not issue outbound calls")
	assert.True(t, again.Get(entity.AssetSolana).Equal(decimal.NewFromInt(150)))
}

func TestPriceService_RefetchesAfterExpiry(t *testing.T) {
	bc := &fakeBirdeyeClient{price: pricesByAddress(map[string]string{
		"So11111111111111111111111111111111111111112": "150",
	})}
	svc := NewPriceService(bc, cache.New(40*time.Millisecond, 0), testAddresses, testLogger())

	_, err := svc.FetchPrices(context.Background())
	require.NoError(t, err)
	_, err = svc.FetchPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, bc.priceCallCount())

	time.Sleep(70 * time.Millisecond)

	_, err = svc.FetchPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, bc.priceCallCount())
}

func TestPriceService_PartialFailuresDefaultToZero(t *testing.T) {
	bc := &fakeBirdeyeClient{price: func(address string) (*upstream.BirdeyePriceResponse, error) {
		switch address {
		case "So11111111111111111111111111111111111111112":
			return &upstream.BirdeyePriceResponse{Success: true, Data: &upstream.BirdeyePriceData{Value: flex("150")}}, nil
		case "eth-mint":
			return nil, &entity.UpstreamDataError{Source: "birdeye", Err: errors.New("bad json")}
		default:
			return &upstream.BirdeyePriceResponse{Success: true, Data: &upstream.BirdeyePriceData{Value: flex("0")}}, nil
		}
	}}
	c := cache.New(time.Minute, 0)
	svc := NewPriceService(bc, c, testAddresses, testLogger())

	prices, err := svc.FetchPrices(context.Background())
	require.NoError(t, err)
	assert.True(t, prices.Get(entity.AssetSolana).Equal(decimal.NewFromInt(150)))
	assert.True(t, prices.Get(entity.AssetBitcoin).IsZero())
	assert.True(t, prices.Get(entity.AssetEthereum).IsZero())

	// Zero defaults are cached like any other price.
	_, err = svc.FetchPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, bc.priceCallCount())
}

func TestPriceService_MissingAddressSkipsCall(t *testing.T) {
	bc := &fakeBirdeyeClient{price: pricesByAddress(map[string]string{
		"So11111111111111111111111111111111111111112": "150",
		"eth-mint": "3000",
	})}
	addresses := map[entity.ReferenceAsset]string{
		entity.AssetSolana:   "So11111111111111111111111111111111111111112",
		entity.AssetEthereum: "eth-mint",
	}
	svc := NewPriceService(bc, cache.New(time.Minute, 0), addresses, testLogger())

	prices, err := svc.FetchPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, bc.priceCallCount())
	assert.True(t, prices.Get(entity.AssetBitcoin).IsZero())
	assert.Len(t, prices.USD, 3, "every reference asset is present")
}

func TestPriceService_TransportFailureEscalatesWithoutCaching(t *testing.T) {
	transportErr := &entity.TransportError{URL: "https://public-api.birdeye.so/defi/price", Attempts: 3, StatusCode: 503}
	bc := &fakeBirdeyeClient{price: func(address string) (*upstream.BirdeyePriceResponse, error) {
		if address == "btc-mint" {
			return nil, transportErr
		}
		return &upstream.BirdeyePriceResponse{Success: true, Data: &upstream.BirdeyePriceData{Value: flex("1")}}, nil
	}}
	c := cache.New(time.Minute, 0)
	svc := NewPriceService(bc, c, testAddresses, testLogger())

	_, err := svc.FetchPrices(context.Background())
	var te *entity.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, c.Len())
}
