package service

import (
	"context"
	"time"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/domain/entity"
	"portfolio_reporter/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	// FallbackReport is returned instead of a report when any part of the pipeline fails.
	FallbackReport = "Unable to fetch wallet information. Please try again later."

	SolanaPublicKeySetting = "SOLANA_PUBLIC_KEY"
	WalletPublicKeySetting = "WALLET_PUBLIC_KEY"
	RPCURLSetting          = "RPC_URL"

	DefaultReportTitle = "Wallet Portfolio"
)

// reportServiceImpl implements port.ReportService.
type reportServiceImpl struct {
	portfolios port.PortfolioFetcher
	prices     port.PriceProvider
	network    entity.NetworkDefinition
	title      string
	logger     port.Logger
}

// NewReportService creates a new instance of reportServiceImpl.
func NewReportService(
	pf port.PortfolioFetcher,
	pp port.PriceProvider,
	network entity.NetworkDefinition,
	title string,
	l port.Logger,
) port.ReportService {
	if title == "" {
		title = DefaultReportTitle
	}
	return &reportServiceImpl{
		portfolios: pf,
		prices:     pp,
		network:    network,
		title:      title,
		logger:     l,
	}
}

// Report implements port.ReportService.
// A missing wallet key is returned as *entity.ConfigurationError; every later failure
// degrades to FallbackReport. settings also supply the upstream API keys for this call.
func (s *reportServiceImpl) Report(ctx context.Context, settings port.RuntimeSettings) (string, error) {
	wallet := settings.GetSetting(SolanaPublicKeySetting)
	if wallet == "" {
		wallet = settings.GetSetting(WalletPublicKeySetting)
	}
	if wallet == "" {
		err := &entity.ConfigurationError{Setting: SolanaPublicKeySetting, Reason: "wallet public key is required"}
		s.logger.Error("Error in wallet report", "error", err)
		return "", err
	}

	rpcURL := settings.GetSetting(RPCURLSetting)
	if rpcURL == "" {
		rpcURL = s.network.PrimaryRPCURL
	}
	s.logger.Debug("Resolved wallet for report", "wallet", wallet, "network", s.network.Name, "rpc_url", rpcURL)

	return s.GetFormattedPortfolio(port.ContextWithSettings(ctx, settings), wallet), nil
}

// GetFormattedPortfolio implements port.ReportService.
// The portfolio and the price table are fetched concurrently.
func (s *reportServiceImpl) GetFormattedPortfolio(ctx context.Context, wallet string) string {
	start := time.Now()

	var (
		portfolio entity.Portfolio
		prices    entity.PriceTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		portfolio, err = s.portfolios.FetchPortfolio(gctx, wallet)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = s.prices.FetchPrices(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Error generating portfolio report", "wallet", wallet, "source", s.portfolios.Source(), "error", err)
		metrics.ReportDuration.WithLabelValues("fallback").Observe(time.Since(start).Seconds())
		return FallbackReport
	}

	report := FormatPortfolio(s.title, wallet, portfolio, prices)
	metrics.ReportDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	s.logger.Info("Portfolio report generated", "wallet", wallet, "source", portfolio.Source, "holdings", len(portfolio.Items))
	return report
}
