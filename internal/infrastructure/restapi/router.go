package restapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter configures and returns the gin engine serving the report API.
func SetupRouter(portfolioHandler *PortfolioHandler, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/wallets/:address/report", portfolioHandler.GetReportHandler)
		v1.GET("/wallets/:address/portfolio", portfolioHandler.GetPortfolioHandler)
		v1.GET("/prices", portfolioHandler.GetPricesHandler)
		v1.GET("/reports", portfolioHandler.GetReportsHandler)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// ZapLoggerMiddleware logs every request with zap once it has been served.
func ZapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("HTTP")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String(), fields...)
			return
		}
		logger.Info("Request served", fields...)
	}
}
