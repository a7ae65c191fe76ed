package router

import (
	"time"

	"poultryops/internal/config"
	"poultryops/internal/handler"
	"poultryops/internal/middleware"
	"poultryops/internal/repository"
	"poultryops/internal/service"
	"poultryops/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// points service, which cmd/server also hands to the background sweep.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) (*gin.Engine, service.PointsService) {
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

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	skuRepo := repository.NewSKURepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	stockRepo := repository.NewStockRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	processingRepo := repository.NewProcessingRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	varianceRepo := repository.NewVarianceRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	configRepo := repository.NewConfigRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	clock := service.NewStoreClock(cfg.DefaultTimezone)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	catalogSvc := service.NewCatalogService(storeRepo, supplierRepo, skuRepo, userRepo, cfg.DefaultTimezone)
	ledgerSvc := service.NewLedgerService(ledgerRepo, stockRepo, rdb)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, storeRepo, ledgerSvc)
	processingSvc := service.NewProcessingService(processingRepo, storeRepo, ledgerSvc)
	saleSvc := service.NewSaleService(saleRepo, skuRepo, storeRepo, ledgerSvc, clock)
	transferSvc := service.NewTransferService(transferRepo, storeRepo, ledgerSvc)
	pointsSvc := service.NewPointsService(pointsRepo, configRepo, storeRepo, saleRepo, settlementRepo, userRepo, clock)
	settlementSvc := service.NewSettlementService(settlementRepo, varianceRepo, ledgerRepo, saleRepo, storeRepo, pointsSvc, dispatcher, clock)
	varianceSvc := service.NewVarianceService(varianceRepo, ledgerSvc, pointsSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	stockH := handler.NewStockHandler(ledgerSvc)
	purchasesH := handler.NewPurchasesHandler(purchaseSvc)
	processingH := handler.NewProcessingHandler(processingSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	transfersH := handler.NewTransfersHandler(transferSvc)
	settlementsH := handler.NewSettlementsHandler(settlementSvc)
	varianceH := handler.NewVarianceHandler(varianceSvc)
	pointsH := handler.NewPointsHandler(pointsSvc)
	scheduledH := handler.NewScheduledHandler(pointsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Scheduled tasks, guarded by shared secret instead of JWT
	sched := r.Group("/v1/scheduled", middleware.CronSecret(cfg.CronSecret))
	{
		sched.POST("/missed-settlements", scheduledH.MissedSettlements)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole("admin", "manager", "staff")
	managerUp := middleware.RequireRole("admin", "manager")
	adminOnly := middleware.RequireRole("admin")

	v1 := r.Group("/v1", jwtMW)
	{
		// Stock: everyone reads, corrections and rebuilds are privileged
		v1.GET("/stock/:store_id/summary", anyRole, stockH.Summary)
		v1.GET("/stock/ledger", managerUp, stockH.Ledger)
		v1.POST("/stock/adjust", adminOnly, stockH.ManualAdjust)
		v1.POST("/stock/opening", adminOnly, stockH.OpeningBalance)
		v1.POST("/stock/rebuild", adminOnly, stockH.Rebuild)

		purchases := v1.Group("/purchases", managerUp)
		{
			purchases.POST("", purchasesH.Create)
			purchases.GET("", purchasesH.List)
			purchases.GET("/:id", purchasesH.Get)
			purchases.PUT("/:id", purchasesH.Update)
			purchases.POST("/:id/commit", purchasesH.Commit)
			purchases.DELETE("/:id", purchasesH.Cancel)
		}

		processing := v1.Group("/processing")
		{
			processing.POST("", managerUp, processingH.Create)
			processing.POST("/yield", anyRole, processingH.Yield)
			processing.GET("", anyRole, processingH.List)
			processing.GET("/wastage", managerUp, processingH.ListWastage)
			processing.PUT("/wastage", adminOnly, processingH.UpsertWastage)
			processing.GET("/:id", anyRole, processingH.Get)
		}

		sales := v1.Group("/sales", anyRole)
		{
			sales.POST("", salesH.Create)
			sales.GET("", salesH.List)
			sales.GET("/summary", salesH.DailySummary)
			sales.GET("/:id", salesH.Get)
		}

		transfers := v1.Group("/transfers", managerUp)
		{
			transfers.POST("", transfersH.Create)
			transfers.GET("", transfersH.List)
			transfers.GET("/:id", transfersH.Get)
			transfers.POST("/:id/receive", transfersH.Receive)
			transfers.POST("/:id/approve", middleware.RequireRole("admin"), transfersH.Approve)
			transfers.POST("/:id/reject", middleware.RequireRole("admin"), transfersH.Reject)
		}

		settlements := v1.Group("/settlements")
		{
			settlements.POST("", managerUp, settlementsH.Submit)
			settlements.GET("", managerUp, settlementsH.List)
			settlements.GET("/expected", adminOnly, settlementsH.Expected)
			settlements.GET("/:id", managerUp, settlementsH.Get)
			settlements.GET("/:id/variances", managerUp, varianceH.ListBySettlement)
			settlements.POST("/:id/recompute", adminOnly, settlementsH.Recompute)
			settlements.POST("/:id/approve", adminOnly, settlementsH.Approve)
			settlements.POST("/:id/lock", adminOnly, settlementsH.Lock)
		}

		variance := v1.Group("/variance", adminOnly)
		{
			variance.GET("", varianceH.List)
			variance.GET("/:id", varianceH.Get)
			variance.POST("/:id/resolve", varianceH.Resolve)
		}

		points := v1.Group("/points")
		{
			points.GET("", managerUp, pointsH.List)
			points.GET("/leaderboard", anyRole, pointsH.Leaderboard)
			points.POST("/manual", adminOnly, pointsH.ManualGrant)
			points.GET("/monthly", managerUp, pointsH.ListMonthly)
			points.POST("/monthly/generate", adminOnly, pointsH.GenerateMonthly)
			points.POST("/monthly/lock", adminOnly, pointsH.LockMonthly)
			points.GET("/config", adminOnly, pointsH.ListConfig)
			points.PUT("/config", adminOnly, pointsH.UpsertConfig)
			points.GET("/grading-config", adminOnly, pointsH.ListGradingConfig)
			points.PUT("/grading-config", adminOnly, pointsH.UpsertGradingConfig)
		}

		// Catalog
		stores := v1.Group("/stores")
		{
			stores.GET("", anyRole, catalogH.ListStores)
			stores.GET("/:id", anyRole, catalogH.GetStore)
			stores.POST("", adminOnly, catalogH.CreateStore)
			stores.PUT("/:id", adminOnly, catalogH.UpdateStore)
			stores.POST("/:id/staff", adminOnly, catalogH.AssignStaff)
			stores.DELETE("/:id/staff/:user_id", adminOnly, catalogH.RemoveStaff)
		}

		v1.GET("/suppliers", managerUp, catalogH.ListSuppliers)
		v1.POST("/suppliers", adminOnly, catalogH.CreateSupplier)

		v1.GET("/skus", anyRole, catalogH.ListSKUs)
		v1.POST("/skus", adminOnly, catalogH.CreateSKU)
		v1.PUT("/skus/:id", adminOnly, catalogH.UpdateSKU)

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, pointsSvc
}
