package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"centavo/internal/amqp"
	"centavo/internal/clock"
	"centavo/internal/config"
	"centavo/internal/database"
	"centavo/internal/handlers"
	"centavo/internal/logger"
	"centavo/internal/middleware"
	"centavo/internal/services"
	"centavo/internal/validator"

	_ "centavo/internal/docs" // Import swagger docs
)

// @title           Centavo API
// @version         1.0
// @description     Centavo tracks recurring and installment transactions, credit-card invoice lifecycles, and shared-expense settlement.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Notification publisher; falls back to a no-op when AMQP is not configured
	notifier := services.NewNopNotifier()
	if appConfig.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			log.Warnw("AMQP unavailable, notifications disabled", "error", err)
		} else {
			defer amqpClient.Close()
			notifier = services.NewAMQPNotifier(amqpClient)
		}
	}

	// Initialize services
	db := dbManager.DB()
	clk := clock.System()
	cardService := services.NewCardService(db)
	auditService := services.NewAuditService(db)
	invoiceService := services.NewInvoiceService(db, clk, notifier)
	recurringService := services.NewRecurringService(db, clk)
	transactionService := services.NewTransactionService(db, cardService, invoiceService, recurringService, notifier, clk)
	settlementService := services.NewSettlementService(db, notifier)

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(cardService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	recurringHandler := handlers.NewRecurringHandler(recurringService, auditService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, auditService)
	settlementHandler := handlers.NewSettlementHandler(settlementService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RateLimit(appConfig.RateLimitRPS, appConfig.RateLimitBurst))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Internal scheduler endpoints
	internal := router.Group("/internal", middleware.JobAuthMiddleware(appConfig.JobAPIKey))
	internal.POST("/invoices/close-due", invoiceHandler.CloseDue)

	// API v1 group
	v1 := router.Group("/api/v1")

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Card routes
	cards := protected.Group("/cards")
	cards.POST("", cardHandler.CreateCard)
	cards.GET("", cardHandler.GetCards)
	cards.GET("/:id", cardHandler.GetCard)
	cards.PUT("/:id", cardHandler.UpdateCard)
	cards.DELETE("/:id", cardHandler.DeactivateCard)
	cards.GET("/:id/invoices", invoiceHandler.ListInvoices)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetMonthlyLedger)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.GET("/:id/installments", transactionHandler.GetInstallments)
	transactions.PATCH("/:id/paid", transactionHandler.MarkPaid)
	transactions.POST("/:id/invoice", transactionHandler.AttachToInvoice)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Recurring template routes
	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateTemplate)
	recurring.GET("", recurringHandler.GetTemplates)
	recurring.GET("/:id", recurringHandler.GetTemplate)
	recurring.POST("/:id/deactivate", recurringHandler.DeactivateTemplate)
	recurring.POST("/generate", recurringHandler.Generate)

	// Invoice routes
	invoices := protected.Group("/invoices")
	invoices.GET("/:id", invoiceHandler.GetInvoice)
	invoices.POST("/:id/payments", invoiceHandler.PayInvoice)

	// Settlement routes
	protected.POST("/shared", settlementHandler.CreateShared)
	protected.GET("/splits/:id", settlementHandler.GetSplit)
	protected.POST("/splits/:id/payments", settlementHandler.RegisterPayment)
	protected.GET("/balances", settlementHandler.ListBalances)
	protected.POST("/balances/:id/settle", settlementHandler.SettleBalance)

	log.Infof("Starting Centavo backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
