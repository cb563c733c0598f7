package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/database"
	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/repository/memstore"
	"github.com/iliyamo/restaurant-pos/internal/router"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, catalog, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		publisher = queue.NewAMQPPublisher(cfg.RabbitMQURL, logger)
	}
	if cfg.EventsConsumerEnabled {
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, LogDir: cfg.LogDir, Logger: logger}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("order log consumer stopped", zap.Error(err))
			}
		}()
	}

	svc := service.New(store, catalog, pricing.NewEngine(cfg.TaxRate), logger, service.WithPublisher(publisher))

	rdb := config.NewRedisClient(logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Register(e, router.Handlers{
		Health:   &handler.HealthHandler{Svc: svc},
		Catalog:  &handler.CatalogHandler{Svc: svc},
		Orders:   handler.NewOrderHandler(svc, cfg.ManagerPINHash),
		Tables:   &handler.TableHandler{Svc: svc},
		Payments: &handler.PaymentHandler{Svc: svc},
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Logger:    logger,
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}

func newLogger(cfg config.Config) *zap.Logger {
	build := zap.NewProduction
	if cfg.Dev() {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStore returns the configured store and catalog together with a
// cleanup function.  The memory driver seeds a demo floor and menu.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.Store, repository.Catalog, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		store := memstore.New()
		catalog := memstore.SeedDemo(store, time.Now().UTC())
		logger.Warn("using in-memory store; data is lost on restart")
		return store, catalog, func() {}
	}
	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(ctx, db, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	return repository.NewMySQLStore(db), repository.NewCatalogRepo(db), func() { _ = db.Close() }
}
