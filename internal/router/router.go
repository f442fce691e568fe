package router

import (
	"time"

	"github.com/DanielShofela/Stock/internal/config"
	"github.com/DanielShofela/Stock/internal/handler"
	"github.com/DanielShofela/Stock/internal/infra"
	"github.com/DanielShofela/Stock/internal/middleware"
	"github.com/DanielShofela/Stock/internal/repository"
	"github.com/DanielShofela/Stock/internal/service"
	"github.com/DanielShofela/Stock/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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

	// ── Infrastructure ───────────────────────────────────────────────────────
	events := infra.NewEventBus(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, stockRepo, warehouseRepo, rdb, events, cfg.DefaultWarehouse)
	inventorySvc := service.NewInventoryService(stockRepo, productRepo, warehouseRepo, events, cfg.DefaultWarehouse)
	orderSvc := service.NewOrderService(orderRepo, customerRepo, productRepo, stockRepo, warehouseRepo, events, cfg.DefaultWarehouse)
	warehouseSvc := service.NewWarehouseService(warehouseRepo, events)
	dashboardSvc := service.NewDashboardService(dashboardRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)
	reportSvc := service.NewReportService(stockRepo, dispatcher, infra.GenerateMovementReportPDF, cfg.ReportStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	warehousesH := handler.NewWarehousesHandler(warehouseSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	priceH := handler.NewPriceLookupHandler(productSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/price/:barcode", priceH.ByBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: viewer, seller, manager, admin — declared per-endpoint
		readAll := middleware.RequireRole("viewer", "seller", "manager", "admin")
		sellers := middleware.RequireRole("seller", "manager", "admin")
		managers := middleware.RequireRole("manager", "admin")

		v1.GET("/dashboard", readAll, dashboardH.Summary)

		// Catalog — everyone authenticated can read
		v1.GET("/products", readAll, productsH.List)
		v1.GET("/products/:id", readAll, productsH.GetByID)
		// Write operations — manager or admin
		prods := v1.Group("/products", managers)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
			prods.POST("/:id/variants", productsH.AddVariant)
			prods.PUT("/:id/variants/:variantId", productsH.UpdateVariant)
			prods.DELETE("/:id/variants/:variantId", productsH.DeleteVariant)
		}

		// Stock ledger
		v1.GET("/stock/movements", readAll, inventoryH.ListMovements)
		v1.POST("/stock/movements", sellers, inventoryH.RecordMovement)
		v1.GET("/stock/variants/:variantId/stats", readAll, inventoryH.VariantStats)
		v1.GET("/stock/variants/:variantId/levels", readAll, inventoryH.StockLevels)
		v1.PATCH("/stock/variants/:variantId/safety-stock", managers, inventoryH.UpdateSafetyStock)

		// Orders
		orders := v1.Group("/orders")
		{
			orders.POST("", sellers, ordersH.Create)
			orders.GET("", readAll, ordersH.List)
			orders.GET("/:id", readAll, ordersH.GetByID)
			orders.DELETE("/:id", sellers, ordersH.Cancel)
			orders.PATCH("/:id/payment", sellers, ordersH.UpdatePayment)
		}

		// Warehouses
		v1.GET("/customers", readAll, ordersH.ListCustomers)

		v1.GET("/warehouses", readAll, warehousesH.List)
		warehouses := v1.Group("/warehouses", managers)
		{
			warehouses.POST("", warehousesH.Create)
			warehouses.PUT("/:id", warehousesH.Update)
		}

		// Reports — manager or admin
		reports := v1.Group("/reports", managers)
		{
			reports.GET("/movements.csv", reportsH.DownloadCSV)
			reports.GET("/movements.pdf", reportsH.DownloadPDF)
			reports.POST("/email", reportsH.EmailExport)
		}

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
