// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/core/clock"
	"stockledger/internal/domain/catalog"
	"stockledger/internal/domain/movement"
	"stockledger/internal/domain/reports"
	"stockledger/internal/domain/valuation"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/pkg/logger"
)

// RouterConfig holds the services the API is served from.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Store backs the readiness probe; Storage names it.
	Store   handlers.Pinger
	Storage string

	// Clock supplies the default posting time of new stock entries.
	Clock clock.Clock

	Catalog   *catalog.Service
	Movements *movement.Service
	Settings  *valuation.SettingsService
	Reports   *reports.Service

	// JWTValidator protects /api/v1 when set. Nil leaves the API open.
	JWTValidator middleware.JWTValidator

	// Debug keeps gin in debug mode.
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem(nil)
	}

	router := gin.New()

	// Recovery sits inside ErrorHandler so a recovered panic is rendered.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.Storage)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	if cfg.JWTValidator != nil {
		v1.Use(middleware.Auth(cfg.JWTValidator))
	}

	base := handlers.NewBaseHandler()
	registerCatalogRoutes(v1, base, cfg)
	registerStockEntryRoutes(v1, base, cfg)
	registerSettingsRoutes(v1, base, cfg)
	registerReportRoutes(v1, base, cfg)

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCatalogHandler(base, cfg.Catalog)

	warehouses := rg.Group("/warehouses")
	warehouses.POST("", h.CreateWarehouse)
	warehouses.GET("", h.ListWarehouses)

	items := rg.Group("/items")
	items.POST("", h.CreateItem)
	items.GET("", h.ListItems)
	items.GET("/:code", h.GetItem)
	items.GET("/:code/rate", h.GetItemRate)
}

func registerStockEntryRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewStockEntryHandler(base, cfg.Movements, cfg.Clock)
	RegisterDocumentRoutes(rg.Group("/stock-entries"), h)
}

func registerSettingsRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewSettingsHandler(base, cfg.Settings)
	rg.GET("/settings/stock", h.Get)
	rg.PUT("/settings/stock", h.Update)
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewReportsHandler(base, cfg.Reports)
	reportsGroup := rg.Group("/reports")
	reportsGroup.GET("/stock-balance", h.GetStockBalance)
	reportsGroup.GET("/stock-ledger", h.GetStockLedger)
}
