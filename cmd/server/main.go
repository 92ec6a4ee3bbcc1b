package main

import (
	"log"
	"time"

	"handcraft_market/internal/config"
	"handcraft_market/internal/database"
	"handcraft_market/internal/handlers"
	"handcraft_market/internal/redis"
	"handcraft_market/internal/repository"
	"handcraft_market/internal/services"
	"handcraft_market/pkg/bank"
	"handcraft_market/pkg/keyedlock"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis
	cache, err := redis.Initialize(cfg.RedisURL, time.Duration(cfg.CacheTTL)*time.Second)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize bank payout client
	bankClient := bank.NewClient(cfg.BankAPIURL, cfg.BankUsername, cfg.BankPassword)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	withdrawRepo := repository.NewWithdrawRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Initialize services. The lock set is shared so order transitions and
	// wallet operations serialize on the same per-artist keys.
	locks := keyedlock.New()
	userService := services.NewUserService(userRepo)
	orderService := services.NewOrderService(db, orderRepo, productRepo, commissionRepo, settingRepo, cache, locks, cfg.CommissionRate)
	walletService := services.NewWalletService(db, commissionRepo, transactionRepo, withdrawRepo, cache, bankClient, locks)
	timeoutService := services.NewTimeoutService(orderService, time.Duration(cfg.PaymentTimeoutHours)*time.Hour)

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(userService, orderService, walletService)
	paymentHandler := handlers.NewPaymentHandler(orderService, cfg.PaymentWebhookSecret)

	// Sweep unpaid orders past the payment timeout
	timeoutService.Start(15 * time.Minute)
	defer timeoutService.Stop()

	// Setup routes
	router := gin.Default()

	// Payment provider webhook
	router.POST("/api/payments/webhook", paymentHandler.HandleWebhook)

	// API endpoints
	api := router.Group("/api")
	{
		api.POST("/users", apiHandler.CreateUser)
		api.POST("/login", apiHandler.Login)

		api.POST("/orders", apiHandler.CreateOrder)
		api.GET("/orders", apiHandler.ListOrders)
		api.GET("/orders/:id", apiHandler.GetOrder)
		api.GET("/orders/:id/status", apiHandler.GetOrderStatus)
		api.POST("/orders/:id/transition", apiHandler.RequestTransition)

		api.GET("/artists/:artist_id/wallet", apiHandler.GetWallet)
		api.GET("/artists/:artist_id/products", apiHandler.GetArtistProducts)
		api.GET("/artists/:artist_id/withdrawals", apiHandler.GetArtistWithdrawals)
		api.POST("/withdrawals", apiHandler.RequestWithdrawal)
		api.GET("/withdrawals", apiHandler.ListWithdrawals)
		api.PUT("/withdrawals/:id/approve", apiHandler.ApproveWithdrawal)
		api.PUT("/withdrawals/:id/reject", apiHandler.RejectWithdrawal)

		api.GET("/transactions", apiHandler.ListTransactions)
		api.GET("/admin/statistics", apiHandler.GetStatistics)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
