package client

import (
	"context"
	"fmt"
	"strings"

	"portfolio_reporter/internal/app/port"
	domain "portfolio_reporter/internal/domain/entity"
	"portfolio_reporter/internal/entity"
	"portfolio_reporter/internal/infrastructure/httpclient"

	"go.uber.org/zap"
)

const (
	CodexAPIKeySetting = "CODEX_API_KEY"
	codexSource        = "codex"
)

const balancesQuery = `query Balances($walletId: String!, $cursor: String) {
  balances(input: { walletId: $walletId, cursor: $cursor }) {
    cursor
    items {
      walletId
      tokenId
      balance
      shiftedBalance
    }
  }
}`

// CodexClient defines the interface for interacting with the Codex GraphQL API.
type CodexClient interface {
	// GetBalances returns the first page of balances for wallet on the given network.
	GetBalances(ctx context.Context, wallet string, networkID int64) (*entity.CodexBalanceConnection, error)
}

type codexClientImpl struct {
	fetcher  httpclient.Fetcher
	endpoint string
	settings port.RuntimeSettings
	logger   *zap.Logger
}

// NewCodexClient creates a new CodexClient posting to the given GraphQL endpoint.
func NewCodexClient(fetcher httpclient.Fetcher, endpoint string, settings port.RuntimeSettings, logger *zap.Logger) CodexClient {
	return &codexClientImpl{
		fetcher:  fetcher,
		endpoint: strings.TrimRight(endpoint, "/"),
		settings: settings,
		logger:   logger.Named("CodexClient"),
	}
}

// GetBalances implements the CodexClient interface.
func (c *codexClientImpl) GetBalances(ctx context.Context, wallet string, networkID int64) (*entity.CodexBalanceConnection, error) {
	if wallet == "" {
		return nil, fmt.Errorf("wallet cannot be empty")
	}

	body, err := json.Marshal(entity.CodexGraphQLRequest{
		Query: balancesQuery,
		Variables: entity.CodexBalanceVariables{
			WalletID: fmt.Sprintf("%s:%d", wallet, networkID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode balances query: %w", err)
	}

	apiKey := port.SettingFromContext(ctx, CodexAPIKeySetting, c.settings)
	if apiKey == "" {
		c.logger.Warn("Codex API key is not configured, sending request without it", zap.String("setting", CodexAPIKeySetting))
	}

	c.logger.Debug("Requesting balances from Codex",
		zap.String("endpoint", c.endpoint),
		zap.String("wallet", wallet),
		zap.Int64("networkID", networkID))

	resp, err := c.fetcher.Fetch(ctx, domain.FetchRequest{
		Method: "POST",
		URL:    c.endpoint,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": apiKey,
		},
		Body: body,
	})
	if err != nil {
		return nil, fmt.Errorf("codex request failed: %w", err)
	}

	var envelope entity.CodexBalancesResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		c.logger.Error("Failed to unmarshal Codex balances response",
			zap.String("endpoint", c.endpoint),
			zap.ByteString("responseBody", resp.Body),
			zap.Error(err))
		return nil, &domain.UpstreamDataError{Source: codexSource, Err: fmt.Errorf("failed to unmarshal balances: %w", err)}
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		c.logger.Error("Codex returned GraphQL errors", zap.Strings("errors", messages))
		return nil, &domain.UpstreamDataError{Source: codexSource, Err: fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))}
	}

	// Balances sit directly under the GraphQL "data" member; a doubly nested data.data is not accepted.
	if envelope.Data == nil || envelope.Data.Balances == nil || len(envelope.Data.Balances.Items) == 0 {
		c.logger.Warn("Codex returned no balances", zap.String("wallet", wallet))
		return nil, &domain.UpstreamDataError{Source: codexSource, Err: domain.ErrNoPortfolioData}
	}

	c.logger.Debug("Successfully unmarshalled Codex balances",
		zap.String("wallet", wallet),
		zap.Int("itemCount", len(envelope.Data.Balances.Items)))
	return envelope.Data.Balances, nil
}
