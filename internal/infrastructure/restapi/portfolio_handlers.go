package restapi

import (
	"errors"
	"net/http"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/app/service"
	"portfolio_reporter/internal/domain/entity"
	"portfolio_reporter/internal/infrastructure/walletloader"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentReports = 4

// APIErrorResponse is returned for any failed request.
type APIErrorResponse struct {
	Error string `json:"error"`
}

// APIWalletReport is a rendered report for one wallet.
type APIWalletReport struct {
	Wallet string `json:"wallet"`
	Report string `json:"report"`
	Failed bool   `json:"failed"`
}

// APIReportsResponse defines the response of the batch reports endpoint.
type APIReportsResponse struct {
	Data struct {
		Reports []APIWalletReport `json:"reports"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

// PortfolioHandler handles HTTP requests for wallet reports and prices.
type PortfolioHandler struct {
	reports    port.ReportService
	portfolios port.PortfolioFetcher
	prices     port.PriceProvider
	wallets    port.WalletProvider
	logger     port.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler. wallets may be nil, which disables batch reports.
func NewPortfolioHandler(
	rs port.ReportService,
	pf port.PortfolioFetcher,
	pp port.PriceProvider,
	wp port.WalletProvider,
	l port.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		reports:    rs,
		portfolios: pf,
		prices:     pp,
		wallets:    wp,
		logger:     l,
	}
}

// GetReportHandler renders the text report of a single wallet.
func (h *PortfolioHandler) GetReportHandler(c *gin.Context) {
	address, ok := h.walletParam(c)
	if !ok {
		return
	}

	report := h.reports.GetFormattedPortfolio(c.Request.Context(), address)
	status := http.StatusOK
	if report == service.FallbackReport {
		status = http.StatusBadGateway
	}
	c.String(status, report)
}

// GetPortfolioHandler returns the valuation snapshot of a single wallet as JSON.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	address, ok := h.walletParam(c)
	if !ok {
		return
	}

	portfolio, err := h.portfolios.FetchPortfolio(c.Request.Context(), address)
	if err != nil {
		h.logger.Error("Failed to fetch portfolio", "wallet", address, "error", err)
		c.JSON(statusForError(err), APIErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, portfolio)
}

// GetPricesHandler returns the reference asset prices.
func (h *PortfolioHandler) GetPricesHandler(c *gin.Context) {
	prices, err := h.prices.FetchPrices(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch prices", "error", err)
		c.JSON(statusForError(err), APIErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, prices)
}

// GetReportsHandler renders a report for every wallet in the wallet list.
func (h *PortfolioHandler) GetReportsHandler(c *gin.Context) {
	if h.wallets == nil {
		c.JSON(http.StatusNotFound, APIErrorResponse{Error: "no wallet list configured"})
		return
	}
	wallets, err := h.wallets.GetWallets()
	if err != nil {
		h.logger.Error("Failed to load wallets", "error", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	reports := make([]APIWalletReport, len(wallets))
	var g errgroup.Group
	g.SetLimit(maxConcurrentReports)
	for i, wallet := range wallets {
		i, wallet := i, wallet
		g.Go(func() error {
			report := h.reports.GetFormattedPortfolio(ctx, wallet.Address)
			reports[i] = APIWalletReport{
				Wallet: wallet.Address,
				Report: report,
				Failed: report == service.FallbackReport,
			}
			return nil
		})
	}
	_ = g.Wait()

	var response APIReportsResponse
	response.Data.Reports = reports

	failed := 0
	for _, r := range reports {
		if r.Failed {
			failed++
		}
	}
	switch {
	case len(reports) == 0:
		response.StatusMessage = "No wallets found. Check the wallet list."
	case failed == len(reports):
		response.StatusMessage = "Failed to produce any report."
	case failed > 0:
		response.StatusMessage = "Reports produced. Some wallets could not be valued."
	default:
		response.StatusMessage = "Reports produced successfully."
	}
	c.JSON(http.StatusOK, response)
}

func (h *PortfolioHandler) walletParam(c *gin.Context) (string, bool) {
	address := c.Param("address")
	if !walletloader.IsValidAddress(address) {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "invalid wallet address"})
		return "", false
	}
	return address, true
}

func statusForError(err error) int {
	var cfgErr *entity.ConfigurationError
	switch {
	case errors.Is(err, entity.ErrNoPortfolioData):
		return http.StatusNotFound
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
