package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/app/service"
	"portfolio_reporter/internal/domain/entity"
	"portfolio_reporter/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	goodWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	failWallet = "So11111111111111111111111111111111111111112"
)

type stubReports struct{}

func (stubReports) Report(context.Context, port.RuntimeSettings) (string, error) { return "", nil }

func (stubReports) GetFormattedPortfolio(_ context.Context, wallet string) string {
	if wallet == failWallet {
		return service.FallbackReport
	}
	return "report for " + wallet
}

type stubPortfolios struct{ err error }

func (s stubPortfolios) FetchPortfolio(_ context.Context, wallet string) (entity.Portfolio, error) {
	if s.err != nil {
		return entity.Portfolio{}, s.err
	}
	return entity.Portfolio{Wallet: wallet, Source: "birdeye", TotalUSD: decimal.NewFromInt(100)}, nil
}

func (stubPortfolios) Source() string { return "birdeye" }

type stubPrices struct{}

func (stubPrices) FetchPrices(context.Context) (entity.PriceTable, error) {
	t := entity.NewPriceTable()
	t.Set(entity.AssetSolana, decimal.NewFromInt(150))
	return t, nil
}

type stubWallets []entity.Wallet

func (s stubWallets) GetWallets() ([]entity.Wallet, error) { return s, nil }

func newTestRouter(portfolios port.PortfolioFetcher, wallets port.WalletProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPortfolioHandler(stubReports{}, portfolios, stubPrices{}, wallets, logger.FromZap(zap.NewNop(), ""))
	return SetupRouter(h, zap.NewNop())
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetReportHandler(t *testing.T) {
	r := newTestRouter(stubPortfolios{}, nil)

	w := serve(r, "/api/v1/wallets/"+goodWallet+"/report")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "report for "+goodWallet, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = serve(r, "/api/v1/wallets/"+failWallet+"/report")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, service.FallbackReport, w.Body.String())

	w = serve(r, "/api/v1/wallets/0xdeadbeef/report")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPortfolioHandler(t *testing.T) {
	w := serve(newTestRouter(stubPortfolios{}, nil), "/api/v1/wallets/"+goodWallet+"/portfolio")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, goodWallet, body["wallet"])
	assert.Equal(t, "100", body["totalUsd"])

	noData := &entity.UpstreamDataError{Source: "birdeye", Err: entity.ErrNoPortfolioData}
	w = serve(newTestRouter(stubPortfolios{err: noData}, nil), "/api/v1/wallets/"+goodWallet+"/portfolio")
	assert.Equal(t, http.StatusNotFound, w.Code)

	transport := &entity.TransportError{URL: "https://public-api.birdeye.so", Attempts: 3, Err: errors.New("timeout")}
	w = serve(newTestRouter(stubPortfolios{err: transport}, nil), "/api/v1/wallets/"+goodWallet+"/portfolio")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetPricesHandler(t *testing.T) {
	w := serve(newTestRouter(stubPortfolios{}, nil), "/api/v1/prices")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		USD map[string]string `json:"usd"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "150", body.USD["solana"])
	assert.Equal(t, "0", body.USD["bitcoin"])
}

func TestGetReportsHandler(t *testing.T) {
	wallets := stubWallets{{Address: goodWallet}, {Address: failWallet}}
	w := serve(newTestRouter(stubPortfolios{}, wallets), "/api/v1/reports")
	require.Equal(t, http.StatusOK, w.Code)

	var body APIReportsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Reports, 2)
	assert.Equal(t, goodWallet, body.Data.Reports[0].Wallet)
	assert.False(t, body.Data.Reports[0].Failed)
	assert.True(t, body.Data.Reports[1].Failed)
	assert.Equal(t, "Reports produced. Some wallets could not be valued.", body.StatusMessage)

	w = serve(newTestRouter(stubPortfolios{}, nil), "/api/v1/reports")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(stubPortfolios{}, nil)

	w := serve(r, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}
