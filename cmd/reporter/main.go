package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/app/service"
	"portfolio_reporter/internal/client"
	"portfolio_reporter/internal/infrastructure/cache"
	"portfolio_reporter/internal/infrastructure/configloader"
	"portfolio_reporter/internal/infrastructure/httpclient"
	networkdefinition "portfolio_reporter/internal/infrastructure/network/definition"
	"portfolio_reporter/internal/infrastructure/restapi"
	"portfolio_reporter/internal/infrastructure/walletloader"
	"portfolio_reporter/internal/pkg/logger"
	"portfolio_reporter/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type application struct {
	cfg        *configloader.Config
	settings   port.RuntimeSettings
	reports    port.ReportService
	portfolios port.PortfolioFetcher
	prices     port.PriceProvider
	zap        *zap.Logger
}

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration (default $CONFIG_PATH or config/config.yml)")
	wallet := flag.String("wallet", "", "report on this wallet instead of SOLANA_PUBLIC_KEY")
	walletsFile := flag.String("wallets-file", "", "report on every wallet listed in this file")
	serve := flag.Bool("serve", false, "serve the report API over HTTP")
	flag.Parse()

	if err := configloader.LoadDotEnv(); err != nil {
		logrus.Warnf("Failed to load .env: %v", err)
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = configloader.DefaultConfigPath
	}
	cfg, err := configloader.Load(path)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync() //nolint:errcheck

	metrics.MustRegisterMetrics()

	app, err := newApplication(cfg, zapLogger)
	if err != nil {
		logger.Fatal("Failed to build application", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *serve:
		err = app.serve(ctx)
	case *walletsFile != "":
		err = app.reportFile(ctx, *walletsFile)
	case *wallet != "":
		err = app.reportOne(ctx, configloader.WithOverrides(app.settings, map[string]string{
			service.SolanaPublicKeySetting: *wallet,
		}))
	default:
		err = app.reportOne(ctx, app.settings)
	}
	if err != nil {
		logger.Error("Reporter stopped with error", "error", err)
		zapLogger.Sync() //nolint:errcheck
		os.Exit(1)
	}
}

func newApplication(cfg *configloader.Config, zapLogger *zap.Logger) (*application, error) {
	appLogger := logger.NewSlogAdapter()

	networks, err := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.Network)
	if err != nil {
		return nil, err
	}
	network := networks.Active()

	settings := configloader.NewEnvSettings(cfg.Settings)

	opts := []httpclient.Option{
		httpclient.WithMaxAttempts(cfg.HTTPClient.MaxAttempts),
		httpclient.WithBaseDelay(cfg.HTTPClient.RetryDelay()),
		httpclient.WithTimeout(cfg.HTTPClient.Timeout()),
	}
	if cfg.HTTPClient.RateLimit > 0 {
		opts = append(opts, httpclient.WithRateLimit(cfg.HTTPClient.RateLimit, cfg.HTTPClient.BurstLimit))
	}
	fetcher := httpclient.NewRetryClient(zapLogger.Named("HTTPClient"), opts...)

	birdeye := client.NewBirdeyeClient(fetcher, cfg.Birdeye.BaseURL, settings, zapLogger.Named("BirdeyeClient"))
	codex := client.NewCodexClient(fetcher, cfg.Codex.Endpoint, settings, zapLogger.Named("CodexClient"))

	store := cache.New(cfg.Cache.DefaultTTL(), cfg.Cache.CleanupInterval())

	prices := service.NewPriceService(birdeye, store, cfg.ReferenceAssets.Addresses(), appLogger)
	portfolios, err := service.NewPortfolioFetcher(cfg.Portfolio.Provider, service.PortfolioDependencies{
		Birdeye:     birdeye,
		Codex:       codex,
		Prices:      prices,
		Cache:       store,
		Network:     network,
		SnapshotTTL: cfg.Cache.SnapshotTTL(),
		Logger:      appLogger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Portfolio provider selected", "provider", portfolios.Source(), "network", network.Name)

	reports := service.NewReportService(portfolios, prices, network, cfg.Report.Title, appLogger)

	return &application{
		cfg:        cfg,
		settings:   settings,
		reports:    reports,
		portfolios: portfolios,
		prices:     prices,
		zap:        zapLogger,
	}, nil
}

func (a *application) reportOne(ctx context.Context, settings port.RuntimeSettings) error {
	report, err := a.reports.Report(ctx, settings)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func (a *application) reportFile(ctx context.Context, path string) error {
	wallets, err := walletloader.NewWalletFileLoader(path, logger.NewSlogAdapter()).GetWallets()
	if err != nil {
		return err
	}
	for i, w := range wallets {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(a.reports.GetFormattedPortfolio(ctx, w.Address))
	}
	return nil
}

func (a *application) serve(ctx context.Context) error {
	if a.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewSlogAdapter()
	var wallets port.WalletProvider
	if _, err := os.Stat(a.cfg.Wallets.File); err == nil {
		wallets = walletloader.NewWalletFileLoader(a.cfg.Wallets.File, appLogger)
	} else {
		logger.Warn("Wallet list not found, batch reports disabled", "path", a.cfg.Wallets.File)
	}

	handler := restapi.NewPortfolioHandler(a.reports, a.portfolios, a.prices, wallets, appLogger)
	router := restapi.SetupRouter(handler, a.zap)

	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
