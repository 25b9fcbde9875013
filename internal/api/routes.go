package api

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/michaelcoll/card-collection-price-tracker/internal/api/handlers"
	"github.com/michaelcoll/card-collection-price-tracker/internal/metrics"
	"github.com/michaelcoll/card-collection-price-tracker/internal/services"
)

// Services bundles what the router exposes.
type Services struct {
	Imports        *services.ImportService
	Prices         *services.PriceImportService
	ProductIDs     *services.ProductIDService
	Valuations     *services.ValuationScheduler
	CardInfo       handlers.CardInfoSource
	Worker         *services.Worker
	MaxImportBytes int64
	AllowedOrigins []string
}

func SetupRouter(s Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestMetrics())

	// CORS configuration
	config := cors.DefaultConfig()
	if len(s.AllowedOrigins) > 0 {
		config.AllowOrigins = s.AllowedOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	// Initialize handlers
	collectionHandler := handlers.NewCollectionHandler(s.Imports, s.MaxImportBytes)
	priceHandler := handlers.NewPriceHandler(s.Prices, s.ProductIDs, s.Worker)
	valuationHandler := handlers.NewValuationHandler(s.Valuations)
	cardHandler := handlers.NewCardHandler(s.CardInfo)

	// API routes
	api := router.Group("/api")
	{
		users := api.Group("/users/:user")
		{
			users.POST("/collection/import", collectionHandler.ImportCollection)
			users.GET("/collection", collectionHandler.GetCollection)
			users.GET("/valuations", valuationHandler.GetHistory)
		}

		prices := api.Group("/prices")
		{
			prices.POST("/import", priceHandler.ImportPrices)
			prices.GET("/status", priceHandler.GetWorkerStatus)
		}

		cards := api.Group("/cards")
		{
			cards.POST("/resolve-ids", priceHandler.ResolveProductIDs)
			cards.GET("/info", cardHandler.GetCardInfo)
		}

		api.POST("/valuations/run", valuationHandler.RunValuations)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestMetrics records request counts and latency per route template.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
