package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/greenleaf-garden/storefront/internal/config"
	"github.com/greenleaf-garden/storefront/internal/event"
	handler "github.com/greenleaf-garden/storefront/internal/handler/http"
	"github.com/greenleaf-garden/storefront/internal/provider/mailinglist"
	"github.com/greenleaf-garden/storefront/internal/provider/payment"
	"github.com/greenleaf-garden/storefront/internal/repository"
	"github.com/greenleaf-garden/storefront/internal/repository/memory"
	redisrepo "github.com/greenleaf-garden/storefront/internal/repository/redis"
	"github.com/greenleaf-garden/storefront/internal/service"
	"github.com/greenleaf-garden/storefront/pkg/database"
	"github.com/greenleaf-garden/storefront/pkg/health"
	pkgkafka "github.com/greenleaf-garden/storefront/pkg/kafka"
	"github.com/greenleaf-garden/storefront/pkg/tracing"
)

const serviceName = "storefront"

// initTracing is replaced in tests.
var initTracing = tracing.Init

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// ctx bounds background work such as the rate limiter's sweeper.
// A failure after tracing is up flushes the tracer before returning.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	shutdown, err := initTracing(initCtx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracerShutdown = shutdown
	defer func() {
		if err == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := shutdown(shutdownCtx); serr != nil {
			logger.Error("tracer shutdown error", slog.String("error", serr.Error()))
		}
	}()

	healthHandler := health.NewHandler()

	// Catalog.
	var catalogRepo *memory.ProductRepository
	if cfg.CatalogPath != "" {
		catalogRepo, err = memory.LoadProductRepositoryFile(cfg.CatalogPath)
	} else {
		catalogRepo, err = memory.NewProductRepository()
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	// Cart and wishlist storage.
	var (
		cartRepo     repository.CartRepository
		wishlistRepo repository.WishlistRepository
	)
	switch cfg.StoreBackend {
	case config.StoreRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPassword
		redisCfg.DB = cfg.RedisDB

		rdb, rerr := database.NewRedisClient(initCtx, redisCfg, logger)
		if rerr != nil {
			return nil, fmt.Errorf("connect to redis: %w", rerr)
		}
		a.rdb = rdb
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)

		if merr := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, rdb, serviceName); merr != nil {
			logger.Warn("redis pool metrics not registered", slog.String("error", merr.Error()))
		}
		healthHandler.Register("redis", database.RedisCheck(rdb))

		cartRepo = redisrepo.NewCartRepository(rdb, cfg.CartTTL())
		wishlistRepo = redisrepo.NewWishlistRepository(rdb, cfg.CartTTL())
	default:
		cartRepo = memory.NewCartRepository()
		wishlistRepo = memory.NewWishlistRepository()
		logger.Info("using in-memory cart storage")
	}

	// Events.
	var publisher event.Publisher = event.Noop{}
	if cfg.EventsEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(a.producer)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("event publishing disabled, no kafka brokers configured")
	}

	// External collaborators.
	var payments payment.Provider
	switch cfg.PaymentProvider {
	case config.ProviderRemote:
		payments = payment.NewRemote(cfg.PaymentGatewayURL, cfg.PaymentGatewayKey, logger)
	case config.ProviderNone:
		payments = payment.Unavailable{}
	default:
		payments = payment.NewMock()
	}

	var mailing mailinglist.Provider
	switch cfg.MailingProvider {
	case config.ProviderRemote:
		mailing = mailinglist.NewRemote(cfg.MailingAPIURL, cfg.MailingListID, cfg.MailingAPIKey, logger)
	case config.ProviderNone:
		mailing = mailinglist.Unavailable{}
	default:
		mailing = mailinglist.NewMock(logger)
	}
	logger.Info("providers configured",
		slog.String("payment", payments.Name()),
		slog.String("mailing_list", mailing.Name()),
		slog.Any("promo_codes", cfg.PromoCodes.Codes()),
	)

	// Build the dependency graph.
	orderRepo := memory.NewOrderRepository()
	catalogService := service.NewCatalogService(catalogRepo, logger)
	cartService := service.NewCartService(cartRepo, catalogRepo, publisher, logger, cfg.Currency)
	checkoutService := service.NewCheckoutService(cartService, cfg.Pricing(), cfg.PromoCodes)

	services := handler.Services{
		Cart:       cartService,
		Catalog:    catalogService,
		Checkout:   checkoutService,
		Orders:     service.NewOrderService(orderRepo, cartService, checkoutService, publisher, logger),
		Payments:   service.NewPaymentService(memory.NewPaymentRepository(), orderRepo, payments, publisher, logger),
		Newsletter: service.NewNewsletterService(memory.NewSubscriberRepository(), mailing, publisher, logger),
		Wishlist:   service.NewWishlistService(wishlistRepo, catalogService, logger),
	}

	// HTTP router.
	router := handler.NewRouter(ctx, services, healthHandler, logger, handler.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
