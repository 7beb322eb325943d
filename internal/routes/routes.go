// Package routes defines the API routing configuration.
package routes

import (
	"spark/internal/handlers"
	"spark/internal/middleware"
	"spark/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services the HTTP layer is wired to.
type Dependencies struct {
	WalletService wallet.Service
	JWTSecret     string
	Version       string
	HealthChecks  map[string]handlers.HealthCheckFunc
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	health := handlers.NewHealthHandler(deps.Version, deps.HealthChecks)
	walletHandler := handlers.NewWalletHandler(deps.WalletService)
	giftHandler := handlers.NewGiftHandler(deps.WalletService)
	adminHandler := handlers.NewAdminHandler(deps.WalletService)
	authMiddleware := middleware.NewAuthMiddleware(deps.JWTSecret)

	app.Get("/health", health.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api", authMiddleware.Handler)

	walletRoutes := api.Group("/wallet")
	walletRoutes.Get("/", walletHandler.GetBalance)
	walletRoutes.Get("/transactions", walletHandler.GetTransactions)
	walletRoutes.Post("/deposit", walletHandler.Deposit)
	walletRoutes.Post("/transfer", walletHandler.Transfer)
	walletRoutes.Post("/super-like", walletHandler.SuperLike)

	api.Post("/gifts", giftHandler.SendGift)

	admin := api.Group("/admin", middleware.AdminAuthMiddleware)
	admin.Post("/wallets/:userId/deposit", adminHandler.Deposit)
	admin.Post("/transfers", adminHandler.Transfer)
}
