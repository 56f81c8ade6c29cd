package handler

import (
	"marketplace-payments/config"
	"marketplace-payments/internal/adapter/http/middleware"
	"marketplace-payments/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Gateway        ports.GatewayClient
	WalletSvc      ports.WalletService
	SigSvc         ports.SignatureService
	TokenSvc       ports.TokenService
	Queue          ports.EventQueue
	Razorpay       config.RazorpayConfig
	AdminKey       string
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	// --- Gateway routes ---
	orderHandler := NewOrderHandler(deps.Gateway, deps.Razorpay.KeyID)
	webhookHandler := NewWebhookHandler(deps.SigSvc, deps.Queue, deps.Razorpay, deps.Logger)
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	razorpay := v1.Group("/payments/razorpay")
	{
		razorpay.POST("/orders", jwtAuth, orderHandler.CreateOrder)
		razorpay.POST("/verify", jwtAuth, orderHandler.VerifyPayment)
		razorpay.POST("/capture", jwtAuth, orderHandler.CapturePayment)
		// The webhook authenticates by signature, not by session.
		razorpay.POST("/webhook", webhookHandler.Receive)
	}

	// --- Wallet routes ---
	walletHandler := NewWalletHandler(deps.WalletSvc)
	adminAuth := middleware.AdminKeyAuth(deps.AdminKey, deps.Logger)

	wallet := v1.Group("/wallet")
	{
		wallet.GET("", jwtAuth, walletHandler.GetStatement)
		wallet.POST("/credit", adminAuth, walletHandler.Credit)
		wallet.POST("/debit", adminAuth, walletHandler.Debit)
	}

	return r
}
