package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-payments/config"
	httpHandler "marketplace-payments/internal/adapter/http/handler"
	"marketplace-payments/internal/adapter/razorpay"
	pgStorage "marketplace-payments/internal/adapter/storage/postgres"
	redisStorage "marketplace-payments/internal/adapter/storage/redis"
	"marketplace-payments/internal/core/ports"
	"marketplace-payments/internal/service"
	"marketplace-payments/pkg/logger"
)

func main() {
	// Load configuration. Load validates: a missing webhook secret outside
	// debug mode aborts startup here.
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Marketplace Payments")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)
	processedCache := redisStorage.NewProcessedEventCache(rdb)

	// Initialize core services
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	walletSvc := service.NewWalletService(walletRepo, txRepo, transactor, cfg.Wallet.DefaultCurrency, log)

	// Gateway client
	gateway := razorpay.NewClient(cfg.Razorpay, &http.Client{Timeout: cfg.Razorpay.Timeout})

	// Webhook event pipeline: processor behind a bounded queue with a single
	// worker, started before the server accepts traffic.
	processor := service.NewPaymentEventProcessor(walletSvc, txRepo, processedCache, log)
	queue := service.NewWebhookEventQueue(cfg.Wallet.QueueSize, processor, log)
	queue.Start(ctx)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Gateway:        gateway,
		WalletSvc:      walletSvc,
		SigSvc:         sigSvc,
		TokenSvc:       tokenSvc,
		Queue:          queue,
		Razorpay:       cfg.Razorpay,
		AdminKey:       cfg.Auth.AdminKey,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop taking requests first, then drain the event queue so buffered
	// webhook events land in the ledger before exit.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Event queue drain interrupted")
	}

	log.Info().Msg("Server exited")
}
