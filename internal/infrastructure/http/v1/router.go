// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fruitmandi/internal/domain/changereq"
	"fruitmandi/internal/domain/reports"
	"fruitmandi/internal/domain/stock"
	"fruitmandi/internal/domain/trade"
	"fruitmandi/internal/domain/vendor"
	"fruitmandi/internal/infrastructure/http/v1/handlers"
	"fruitmandi/internal/infrastructure/http/v1/middleware"
	"fruitmandi/internal/infrastructure/storage/postgres"
	"fruitmandi/internal/infrastructure/storage/postgres/changereq_repo"
	"fruitmandi/internal/infrastructure/storage/postgres/stock_repo"
	"fruitmandi/internal/infrastructure/storage/postgres/trade_repo"
	"fruitmandi/internal/infrastructure/storage/postgres/vendor_repo"
	"fruitmandi/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (used by health checks).
	Pool *postgres.Pool

	// TxManager drives transactions for all repositories.
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Verifier for token validation
	Verifier middleware.TokenVerifier

	// Version is the build version reported by /health/info.
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	healthHandler.RegisterRoutes(router.Group("/health"))

	// Repositories and services share one TxManager; transactions are
	// carried in request context.
	vendorRepo := vendor_repo.NewVendorRepo(cfg.TxManager)
	lotRepo := stock_repo.NewLotRepo(cfg.TxManager)
	tradeRepo := trade_repo.NewTradeRepo(cfg.TxManager)
	requestRepo := changereq_repo.NewRequestRepo(cfg.TxManager)

	auditStore, err := postgres.NewAuditStore(cfg.TxManager)
	if err != nil {
		return nil, err
	}

	engine := stock.NewEngine(lotRepo)
	vendorService := vendor.NewService(vendorRepo)
	tradeService := trade.NewService(vendorRepo, tradeRepo, engine, cfg.TxManager, auditStore)
	changereqService := changereq.NewService(requestRepo, tradeRepo, cfg.TxManager, auditStore)
	reportsService := reports.NewService(vendorRepo, tradeRepo, engine)

	base := handlers.NewBaseHandler()
	vendorHandler := handlers.NewVendorHandler(base, vendorService)
	stockHandler := handlers.NewStockHandler(base, engine)
	tradeHandler := handlers.NewTradeHandler(base, tradeService)
	crHandler := handlers.NewChangeRequestHandler(base, changereqService)
	reportsHandler := handlers.NewReportsHandler(base, reportsService)

	// API v1 - everything behind token auth
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Verifier))
	{
		vendorHandler.RegisterRoutes(api.Group("/vendors"))
		stockHandler.RegisterRoutes(api.Group("/stock"))
		reportsHandler.RegisterRoutes(api.Group("/reports"))

		sales := api.Group("/sales")
		{
			sales.POST("", tradeHandler.CreateSale)
			sales.GET("", tradeHandler.ListSales)
			sales.GET("/:id", tradeHandler.GetSale)
			sales.PUT("/:id", middleware.RequireAdmin(), tradeHandler.EditSale)
		}

		returns := api.Group("/returns")
		{
			returns.POST("", tradeHandler.CreateReturn)
			returns.GET("", tradeHandler.ListReturns)
		}

		payments := api.Group("/payments")
		{
			payments.POST("", tradeHandler.CreatePayment)
			payments.GET("", tradeHandler.ListPayments)
		}

		cr := api.Group("/change-requests")
		{
			cr.POST("", crHandler.Submit)
			cr.GET("/mine", crHandler.ListMine)
			cr.GET("/counts", crHandler.Counts)
			cr.GET("/:id", crHandler.Get)
			cr.GET("", middleware.RequireAdmin(), crHandler.ListByStatus)
			cr.POST("/:id/approve", middleware.RequireAdmin(), crHandler.Approve)
			cr.POST("/:id/reject", middleware.RequireAdmin(), crHandler.Reject)
		}
	}

	return router, nil
}
