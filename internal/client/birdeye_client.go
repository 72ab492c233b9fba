package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"portfolio_reporter/internal/app/port"
	domain "portfolio_reporter/internal/domain/entity"
	"portfolio_reporter/internal/entity"
	"portfolio_reporter/internal/infrastructure/httpclient"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	BirdeyeAPIKeySetting = "BIRDEYE_API_KEY"
	birdeyeSource        = "birdeye"
	birdeyeChain         = "solana"
)

// BirdeyeClient defines the interface for interacting with the Birdeye public API.
type BirdeyeClient interface {
	GetWalletTokenList(ctx context.Context, wallet string) (*entity.BirdeyeTokenListResponse, error)
	GetTokenPrice(ctx context.Context, tokenAddress string) (*entity.BirdeyePriceResponse, error)
}

// birdeyeClientImpl is the implementation of BirdeyeClient.
type birdeyeClientImpl struct {
	fetcher  httpclient.Fetcher
	baseURL  string
	settings port.RuntimeSettings
	logger   *zap.Logger
}

// NewBirdeyeClient creates a new instance of birdeyeClientImpl.
// The API key is resolved on every call, from the request settings in the context first
// and from settings otherwise.
func NewBirdeyeClient(fetcher httpclient.Fetcher, baseURL string, settings port.RuntimeSettings, logger *zap.Logger) BirdeyeClient {
	return &birdeyeClientImpl{
		fetcher:  fetcher,
		baseURL:  strings.TrimRight(baseURL, "/"),
		settings: settings,
		logger:   logger.Named("BirdeyeClient"),
	}
}

// GetWalletTokenList implements the BirdeyeClient interface.
func (c *birdeyeClientImpl) GetWalletTokenList(ctx context.Context, wallet string) (*entity.BirdeyeTokenListResponse, error) {
	if wallet == "" {
		return nil, fmt.Errorf("wallet cannot be empty")
	}
	requestURL := fmt.Sprintf("%s/v1/wallet/token_list?wallet=%s", c.baseURL, url.QueryEscape(wallet))

	c.logger.Debug("Requesting wallet token list from Birdeye", zap.String("url", requestURL))

	rawBody, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var tokenList entity.BirdeyeTokenListResponse
	if err := json.Unmarshal(rawBody, &tokenList); err != nil {
		c.logger.Error("Failed to unmarshal Birdeye token list response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, &domain.UpstreamDataError{
			Source: birdeyeSource,
			Err:    fmt.Errorf("failed to unmarshal token list from %s: %w", requestURL, err),
		}
	}

	if tokenList.Data != nil {
		c.logger.Debug("Successfully unmarshalled Birdeye token list",
			zap.String("wallet", wallet),
			zap.Bool("success", tokenList.Success),
			zap.Int("itemCount", len(tokenList.Data.Items)))
	}
	return &tokenList, nil
}

// GetTokenPrice implements the BirdeyeClient interface.
func (c *birdeyeClientImpl) GetTokenPrice(ctx context.Context, tokenAddress string) (*entity.BirdeyePriceResponse, error) {
	if tokenAddress == "" {
		return nil, &domain.ConfigurationError{Setting: "token address", Reason: "empty address passed to price lookup"}
	}
	requestURL := fmt.Sprintf("%s/defi/price?address=%s", c.baseURL, url.QueryEscape(tokenAddress))

	c.logger.Debug("Requesting token price from Birdeye", zap.String("url", requestURL))

	rawBody, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var price entity.BirdeyePriceResponse
	if err := json.Unmarshal(rawBody, &price); err != nil {
		c.logger.Warn("Failed to unmarshal Birdeye price response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, &domain.UpstreamDataError{
			Source: birdeyeSource,
			Err:    fmt.Errorf("failed to unmarshal price from %s: %w", requestURL, err),
		}
	}
	return &price, nil
}

func (c *birdeyeClientImpl) get(ctx context.Context, requestURL string) ([]byte, error) {
	apiKey := port.SettingFromContext(ctx, BirdeyeAPIKeySetting, c.settings)
	if apiKey == "" {
		c.logger.Warn("Birdeye API key is not configured, sending request without it", zap.String("setting", BirdeyeAPIKeySetting))
	}

	resp, err := c.fetcher.Fetch(ctx, domain.FetchRequest{
		Method: "GET",
		URL:    requestURL,
		Headers: map[string]string{
			"x-chain":   birdeyeChain,
			"X-API-KEY": apiKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("birdeye request failed: %w", err)
	}
	return resp.Body, nil
}
