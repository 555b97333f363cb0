package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/estate/backend/internal/application/finance"
	"github.com/estate/backend/internal/application/sale"
	"github.com/estate/backend/internal/infrastructure/cache"
	"github.com/estate/backend/internal/infrastructure/config"
	"github.com/estate/backend/internal/infrastructure/event"
	"github.com/estate/backend/internal/infrastructure/lock"
	"github.com/estate/backend/internal/infrastructure/logger"
	"github.com/estate/backend/internal/infrastructure/notification"
	"github.com/estate/backend/internal/infrastructure/persistence"
	"github.com/estate/backend/internal/infrastructure/telemetry"
	"github.com/estate/backend/internal/interfaces/http/handler"
	"github.com/estate/backend/internal/interfaces/http/middleware"
	"github.com/estate/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting estate backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		ServiceName:   cfg.Telemetry.ServiceName,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	})
	if err != nil {
		log.Fatal("Failed to set up telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	plotRepo := persistence.NewGormPlotRepository(db.DB)
	sellerPaymentRepo := persistence.NewGormSellerPaymentRepository(db.DB)
	planRepo := persistence.NewGormInstallmentRepository(db.DB)
	ruleRepo := persistence.NewGormCommissionRuleRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)
	entryRepo := persistence.NewGormLedgerRepository(db.DB)
	partnerRepo := persistence.NewGormPartnerRepository(db.DB)
	bankRepo := persistence.NewGormBankRepository(db.DB)

	// Shared infrastructure
	eventBus := event.NewInMemoryEventBus(log)
	locks := lock.NewKeyedMutex()
	ruleCache := newRuleCache(ctx, cfg, log)
	dispatcher := notification.NewLogDispatcher(log)

	// Application services
	ledgerService := finance.NewLedgerService(entryRepo, eventBus, log)
	commissionService := finance.NewCommissionService(ruleRepo, commissionRepo, entryRepo, ruleCache, eventBus, log)
	installmentService := finance.NewInstallmentService(planRepo, entryRepo, locks, eventBus, log)
	partnerService := finance.NewPartnerService(partnerRepo, entryRepo, eventBus, log)
	reconciliationService := finance.NewReconciliationService(bankRepo, entryRepo, eventBus, log)
	saleService := sale.NewService(
		plotRepo, planRepo, commissionRepo, sellerPaymentRepo, entryRepo,
		commissionService, dispatcher, locks, eventBus, log,
		cfg.Sale.NotificationTimeout,
	)

	// HTTP engine
	middleware.SetupValidator()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		}),
	)

	router.NewRouter(engine).
		Register(handler.NewPlotHandler(plotRepo)).
		Register(handler.NewSaleHandler(saleService)).
		Register(handler.NewLedgerHandler(ledgerService)).
		Register(handler.NewCommissionHandler(commissionService)).
		Register(handler.NewInstallmentHandler(installmentService)).
		Register(handler.NewPartnerHandler(partnerService)).
		Register(handler.NewReconciliationHandler(reconciliationService)).
		Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		log.Fatal("HTTP server failed", zap.Error(err))
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}

// newRuleCache prefers Redis and falls back to the in-process cache when
// Redis is unreachable at startup.
func newRuleCache(ctx context.Context, cfg *config.Config, log *zap.Logger) cache.RuleCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, using in-memory rule cache",
			zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		_ = client.Close()
		return cache.NewInMemoryRuleCache(cfg.Sale.RuleCacheTTL)
	}

	log.Info("Redis connected, using Redis rule cache", zap.String("addr", cfg.Redis.Addr()))
	return cache.NewRedisRuleCache(client, cfg.Sale.RuleCacheTTL)
}
