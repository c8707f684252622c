package router

import (
	"time"

	"bakepos/internal/config"
	"bakepos/internal/handler"
	"bakepos/internal/middleware"
	"bakepos/internal/model"
	"bakepos/internal/repository"
	"bakepos/internal/service"
	"bakepos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	loc := cfg.Location()

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	stockCache := service.NewStockCache(rdb, time.Duration(cfg.StockCacheTTLSecs)*time.Second)

	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, rdb)
	ledgerSvc := service.NewLedgerService(ledgerRepo, saleRepo, productRepo, userRepo, dispatcher, stockCache, loc)
	reportSvc := service.NewReportService(ledgerRepo, stockCache, rdb, loc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	productionH := handler.NewProductionHandler(ledgerSvc, loc)
	salesH := handler.NewSalesHandler(ledgerSvc)
	reportsH := handler.NewReportsHandler(reportSvc, loc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Batch ingestion from the production-floor devices. Unauthenticated by
	// design of the devices; kept off /v1 and behind its own tighter limit.
	r.POST("/production", middleware.RateLimiter(120, time.Minute), productionH.Report)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyStaff := middleware.RequireRole(model.RoleOwner, model.RoleCashier)
	ownerOnly := middleware.RequireRole(model.RoleOwner)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/sales", anyStaff, salesH.Checkout)
		v1.GET("/stock", anyStaff, reportsH.Stock)

		reports := v1.Group("/reports", ownerOnly)
		{
			reports.GET("/production", reportsH.Production)
			reports.GET("/chart-data", reportsH.ChartData)
			reports.GET("/alerts", reportsH.Alerts)
		}

		// Catalog reads for the register; writes are owner only
		v1.GET("/products", anyStaff, productsH.List)
		products := v1.Group("/products", ownerOnly)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}

		users := v1.Group("/users", ownerOnly)
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
		}
	}

	return r
}
