package main

import (
	"log"
	"time"

	"retail-backoffice/internal/ai"
	"retail-backoffice/internal/auth"
	"retail-backoffice/internal/catalog"
	"retail-backoffice/internal/config"
	"retail-backoffice/internal/customers"
	"retail-backoffice/internal/database"
	"retail-backoffice/internal/handlers"
	"retail-backoffice/internal/logger"
	"retail-backoffice/internal/middleware"
	"retail-backoffice/internal/reports"
	"retail-backoffice/internal/sales"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer appLog.Sync()

	db, err := database.Connect(cfg.DBDSN, appLog)
	if err != nil {
		appLog.Fatal("database", "error", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	saleEngine := sales.NewEngine(db, appLog)
	reportEngine := reports.NewEngine(db, appLog)
	customerSvc := customers.NewService(db, appLog)
	catalogSvc := catalog.NewService(db, appLog)
	agent := ai.NewAgent(reportEngine, catalogSvc, cfg.GeminiAPIKey, appLog)

	authHandler := handlers.NewAuthHandler(db, tokens, appLog)
	saleHandler := handlers.NewSaleHandler(saleEngine, catalogSvc)
	reportHandler := handlers.NewReportHandler(reportEngine)
	customerHandler := handlers.NewCustomerHandler(customerSvc)
	productHandler := handlers.NewProductHandler(catalogSvc)
	aiHandler := handlers.NewAIHandler(agent)

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "online"})
	})
	r.POST("/login", authHandler.Login)

	if cfg.AllowRegistration {
		r.POST("/register", authHandler.Register)
		appLog.Warn("registration route is OPEN; disable ALLOW_REGISTRATION in production")
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(tokens))
	{
		// Staff and admin
		api.POST("/checkout", saleHandler.Checkout)
		api.GET("/sales", saleHandler.ListSales)
		api.GET("/sales/recent", saleHandler.RecentSales)
		api.GET("/sales/:id", saleHandler.GetSale)

		api.GET("/products", productHandler.List)
		api.GET("/products/scan/:barcode", productHandler.Scan)
		api.GET("/products/:id", productHandler.Get)
		api.GET("/categories", productHandler.ListCategories)

		api.GET("/customers", customerHandler.List)
		api.GET("/customers/:id", customerHandler.Get)
		api.GET("/customers/:id/sales", saleHandler.ListSalesByCustomer)
		api.POST("/customers", customerHandler.Create)
		api.POST("/customers/:id/loyalty", customerHandler.AddLoyaltyPoints)

		// Admin only
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.DELETE("/sales/:id", saleHandler.DeleteSale)

			admin.POST("/products", productHandler.Create)
			admin.PUT("/products/:id", productHandler.Update)
			admin.POST("/products/:id/restock", productHandler.Restock)
			admin.DELETE("/products/:id", productHandler.Delete)
			admin.POST("/categories", productHandler.CreateCategory)
			admin.PUT("/categories/:id", productHandler.UpdateCategory)

			admin.PUT("/customers/:id", customerHandler.Update)
			admin.PUT("/customers/:id/discount", customerHandler.SetDiscountRate)
			admin.DELETE("/customers/:id", customerHandler.Delete)

			admin.GET("/reports/summary", reportHandler.Summary)
			admin.GET("/reports/daily", reportHandler.SalesSummaryByDay)
			admin.GET("/reports/customers/totals", reportHandler.TotalSalesPerCustomer)
			admin.GET("/reports/customers/top", reportHandler.TopCustomersBySales)
			admin.GET("/reports/customers/frequency", reportHandler.CustomerPurchaseFrequency)
			admin.GET("/reports/customers/summary", reportHandler.SalesSummaryByCustomer)
			admin.GET("/reports/products/top", reportHandler.TopProductsByQuantity)

			admin.POST("/ask", aiHandler.Ask)
		}
	}

	appLog.Info("server starting", "url", cfg.BaseURL, "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		appLog.Fatal("server failed", "error", err)
	}
}
