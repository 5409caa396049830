package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/command"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/config"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/db"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/events"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/handler"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/middleware"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/notify"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/query"
	vcredis "github.com/Bhaskar-scientist/Valut-Craft/internal/redis"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/repository"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	middleware.MustInitJWTSecret()

	// Database connection (write store)
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Redis connection (read model store + event streaming)
	redis, err := vcredis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client)

	orgRepo := repository.NewOrganizationRepository(database)
	userRepo := repository.NewUserRepository(database)
	walletRepo := repository.NewWalletRepository(database)
	walletReadRepo := repository.NewWalletReadRepository(database, redis.Client)
	txnWriteRepo := repository.NewTransactionWriteRepository(database)
	txnReadRepo := repository.NewTransactionReadRepository(database, redis.Client)
	ledgerRepo := repository.NewLedgerRepository(database)

	userCommands := command.NewUserCommandService(database, orgRepo, userRepo, publisher)
	walletCommands := command.NewWalletCommandService(walletRepo, walletReadRepo, publisher)
	transferCommands := command.NewTransferCommandService(
		database, walletRepo, walletReadRepo, txnWriteRepo, txnReadRepo, ledgerRepo, publisher)

	authQueries := query.NewAuthQueryService(userRepo, orgRepo, cfg.TokenTTL)
	walletQueries := query.NewWalletQueryService(walletRepo, walletReadRepo)
	txnQueries := query.NewTransactionQueryService(txnReadRepo, walletReadRepo, ledgerRepo)

	notifier := notify.NewNotifier()

	authHandler := handler.NewAuthHandler(userCommands, authQueries)
	walletHandler := handler.NewWalletHandler(walletCommands, walletQueries, txnQueries)
	transactionHandler := handler.NewTransactionHandler(transferCommands, txnQueries, walletQueries)
	wsHandler := handler.NewWSHandler(notifier)

	// Setup router
	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/v1/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.GET("/me", middleware.AuthMiddleware(), authHandler.Me)
	}

	wallets := router.Group("/v1/wallets", middleware.AuthMiddleware())
	{
		wallets.POST("", walletHandler.CreateWallet)
		wallets.GET("", walletHandler.ListWallets)
		wallets.GET("/summary", walletHandler.OrgSummary)
		wallets.GET("/:walletId", walletHandler.GetWallet)
		wallets.GET("/:walletId/balance", walletHandler.GetBalance)
		wallets.GET("/:walletId/transactions", walletHandler.WalletTransactions)
		wallets.GET("/:walletId/ledger", walletHandler.WalletLedger)
		wallets.PATCH("/:walletId/status", walletHandler.UpdateStatus)
	}

	transactions := router.Group("/v1/transactions", middleware.AuthMiddleware())
	{
		transactions.POST("/transfer", transactionHandler.Transfer)
		transactions.GET("", transactionHandler.ListTransactions)
		transactions.GET("/summary", transactionHandler.Summary)
		transactions.GET("/:transactionId", transactionHandler.GetTransaction)
		transactions.GET("/:transactionId/ledger", transactionHandler.GetLedger)
		transactions.POST("/:transactionId/cancel", transactionHandler.CancelTransaction)
	}

	router.GET("/v1/ws", middleware.AuthMiddleware(), wsHandler.Subscribe)

	// Start event subscribers feeding the websocket notifier
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    "vaultcraft-notify",
			Consumer: "notify-consumer-1",
			Stream:   events.TransactionEventsStream,
			Handler:  notifier.HandleTransactionEvent,
		})
		if err := subscriber.Start(ctx); err != nil {
			logrus.Warnf("Transaction subscriber stopped: %v", err)
		}
	}()

	go func() {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    "vaultcraft-notify",
			Consumer: "notify-consumer-2",
			Stream:   events.WalletEventsStream,
			Handler:  notifier.HandleWalletEvent,
		})
		if err := subscriber.Start(ctx); err != nil {
			logrus.Warnf("Wallet subscriber stopped: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logrus.Info("Shutting down...")
		cancel()
	}()

	logrus.Infof("VaultCraft starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
