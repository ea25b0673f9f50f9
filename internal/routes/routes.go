// Package routes defines the API routing configuration.
// It wires repositories, services and handlers in dependency order and
// groups routes by the authentication they require.
package routes

import (
	"log"

	"datasub/internal/config"
	"datasub/internal/handlers"
	"datasub/internal/metrics"
	"datasub/internal/middleware"
	"datasub/internal/repositories"
	"datasub/internal/repositories/cache"
	"datasub/internal/services/audit"
	"datasub/internal/services/auth"
	"datasub/internal/services/dispute"
	"datasub/internal/services/funding"
	"datasub/internal/services/gateway"
	"datasub/internal/services/ledger"
	"datasub/internal/services/plans"
	"datasub/internal/services/purchase"
	"datasub/internal/services/user"
	"datasub/internal/services/vendor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes. External clients (vendor,
// payment gateway) are constructed here from the environment; missing
// credentials for a required client abort startup.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheService *cache.CacheService) error {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	fundingRepo := repositories.NewWalletFundingRepository(db)
	overrideRepo := repositories.NewPlanOverrideRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	// External clients
	vendorClient, err := vendor.NewClient(vendor.Config{
		BaseURL: config.VendorBaseURL(),
		Token:   config.VendorToken(),
	})
	if err != nil {
		return err
	}
	gatewayClient, err := gateway.NewClient(gateway.Config{
		BaseURL:   config.PaystackBaseURL(),
		SecretKey: config.PaystackSecretKey(),
	})
	if err != nil {
		return err
	}

	// The card channel is optional; without a Stripe key the funding
	// service reports it as disabled.
	var cardCharger funding.CardCharger
	if charger, err := gateway.NewStripeCharger(config.StripeSecretKey()); err == nil {
		cardCharger = charger
	} else {
		log.Println("card funding channel disabled: no Stripe key configured")
	}

	// Services
	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo, txRepo, fundingRepo)
	auditService := audit.NewService(auditRepo)
	ledgerService := ledger.NewService(db)
	planService := plans.NewService(overrideRepo, vendorClient, cacheService, auditService)
	purchaseService := purchase.NewService(txRepo, ledgerService, vendorClient)
	fundingService := funding.NewService(fundingRepo, gatewayClient, cardCharger,
		config.GetEnv("PAYSTACK_CALLBACK_URL", ""))
	disputeService := dispute.NewService(txRepo, auditService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	planHandler := handlers.NewPlanHandler(planService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService, planService)
	fundingHandler := handlers.NewFundingHandler(fundingService, authService)
	webhookHandler := handlers.NewWebhookHandler(fundingService, gatewayClient)
	disputeHandler := handlers.NewDisputeHandler(disputeService)
	adminHandler := handlers.NewAdminHandler(userRepo, txRepo, ledgerService, auditService, planService)
	healthHandler := handlers.NewHealthHandler(db, cacheService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the Datasub API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)
	api.Get("/plans", planHandler.List)
	api.Post("/webhooks/paystack", webhookHandler.Paystack)

	// Protected routes with auth middleware
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/logout", authHandler.Logout)
	protected.Get("/profile", userHandler.GetProfile)
	protected.Get("/wallet", userHandler.GetWallet)
	protected.Get("/transactions", userHandler.GetTransactions)

	protected.Post("/purchase/data", purchaseHandler.PurchaseData)

	wallet := protected.Group("/wallet")
	wallet.Post("/fund", fundingHandler.Initialize)
	wallet.Post("/fund/card", fundingHandler.FundWithCard)
	wallet.Get("/fund/:reference/verify", fundingHandler.Verify)
	wallet.Get("/fundings", userHandler.GetFundings)

	disputes := protected.Group("/disputes")
	disputes.Post("/", disputeHandler.File)

	setupAdminRoutes(api, authMiddleware, adminHandler, disputeHandler, fundingHandler)

	return nil
}

func setupAdminRoutes(api fiber.Router, authMiddleware *middleware.AuthMiddleware, adminHandler *handlers.AdminHandler, disputeHandler *handlers.DisputeHandler, fundingHandler *handlers.FundingHandler) {
	admin := api.Group("/admin", authMiddleware.Handler, middleware.AdminOnly)

	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/ban", adminHandler.SetUserBan)
	admin.Post("/users/:id/wallet", adminHandler.AdjustWallet)

	admin.Get("/transactions", adminHandler.ListTransactions)
	admin.Get("/disputes", adminHandler.ListDisputes)
	admin.Post("/disputes/:id/resolve", disputeHandler.Resolve)

	admin.Get("/fundings/:reference/verify", fundingHandler.Verify)

	admin.Get("/plans", adminHandler.AdminPlans)
	admin.Post("/plans/override", adminHandler.SavePlanOverride)

	admin.Get("/audit-logs", adminHandler.ListAuditLogs)
	admin.Get("/stats", adminHandler.Stats)
}
