// Package main is the entry point for the wallet API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spark/internal/config"
	"spark/internal/handlers"
	"spark/internal/logging"
	"spark/internal/money"
	"spark/internal/repositories"
	"spark/internal/repositories/cache"
	"spark/internal/repositories/memory"
	"spark/internal/routes"
	"spark/internal/services/deposit"
	"spark/internal/services/gift"
	"spark/internal/services/notification"
	"spark/internal/services/payment"
	"spark/internal/services/transfer"
	"spark/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

func main() {
	config.LoadEnv()
	cfg := config.Load()
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

type ledgerStore interface {
	repositories.WalletRepository
	repositories.UserRepository
}

type gormStore struct {
	repositories.WalletRepository
	repositories.UserRepository
}

func run(cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	checks := map[string]handlers.HealthCheckFunc{}

	var store ledgerStore
	if cfg.Database.Driver == "memory" {
		logrus.Warn("using in-memory ledger store, balances are lost on exit")
		store = memory.NewStore(cfg.Ledger.LockTimeout)
	} else {
		db, err := repositories.OpenDB(cfg.Database)
		if err != nil {
			return err
		}
		defer repositories.CloseDB(db)

		store = gormStore{
			WalletRepository: repositories.NewWalletRepository(db, cfg.Ledger.LockTimeout),
			UserRepository:   repositories.NewUserRepository(db),
		}
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	var (
		redisClient  *redis.Client
		balanceCache wallet.BalanceCache
	)
	if cfg.Redis.Enabled {
		redisClient = cache.NewRedisClient(&cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheService := cache.NewCacheService(redisClient, cfg.Redis.BalanceCacheTTL)
		defer cacheService.Close()

		balanceCache = cacheService
		checks["redis"] = cacheService.HealthCheck
	}

	publisher, err := newPublisher(cfg.Notify, redisClient)
	if err != nil {
		return err
	}
	dispatcher := notification.NewDispatcher(publisher, cfg.Notify.Workers, cfg.Notify.Buffer)
	defer dispatcher.Close()

	gateway, err := newGateway(cfg.Payment)
	if err != nil {
		return err
	}

	transfers := transfer.NewService(store, store)
	deposits := deposit.NewService(store, store, gateway, cfg.Ledger.Currency)
	gifts := gift.NewService(store, store, transfers, dispatcher)
	walletService := wallet.NewService(
		store,
		store,
		transfers,
		deposits,
		gifts,
		balanceCache,
		dispatcher,
		wallet.NewPrometheusMetrics(prometheus.DefaultRegisterer),
	)

	app := fiber.New(fiber.Config{
		AppName:      "spark-wallet " + version,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		AllowMethods: "GET,POST,HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	// Deposits call the payment provider synchronously.
	app.Use("/api/wallet/deposit", limiter.New(limiter.Config{
		Max:        config.GetIntEnv("DEPOSIT_RATE_LIMIT", 10),
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		WalletService: walletService,
		JWTSecret:     cfg.JWTSecret,
		Version:       version,
		HealthChecks:  checks,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"driver":  cfg.Database.Driver,
			"gateway": cfg.Payment.Gateway,
			"notify":  cfg.Notify.Backend,
		}).Info("wallet API listening")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newPublisher(cfg config.NotifyConfig, redisClient *redis.Client) (notification.Publisher, error) {
	switch cfg.Backend {
	case "redis":
		if redisClient == nil {
			return nil, errors.New("NOTIFY_BACKEND=redis requires REDIS_ENABLED")
		}
		return notification.NewRedisPublisher(redisClient, cfg.Channel), nil
	case "rabbitmq":
		return notification.NewAMQPPublisher(cfg.RabbitMQURL, cfg.Exchange)
	case "log", "":
		return notification.NewLogPublisher(logrus.StandardLogger()), nil
	default:
		return nil, fmt.Errorf("unknown NOTIFY_BACKEND %q", cfg.Backend)
	}
}

func newGateway(cfg config.PaymentConfig) (payment.Gateway, error) {
	switch cfg.Gateway {
	case "stripe":
		if cfg.StripeSecretKey == "" {
			return nil, errors.New("PAYMENT_GATEWAY=stripe requires STRIPE_SECRET_KEY")
		}
		return payment.NewStripeGateway(cfg.StripeSecretKey), nil
	case "sandbox", "":
		limit, err := money.Parse(cfg.SandboxLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid SANDBOX_CHARGE_LIMIT: %w", err)
		}
		return payment.NewSandboxGateway(limit), nil
	default:
		return nil, fmt.Errorf("unknown PAYMENT_GATEWAY %q", cfg.Gateway)
	}
}
