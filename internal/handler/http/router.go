package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenleaf-garden/storefront/internal/service"
	"github.com/greenleaf-garden/storefront/pkg/health"
	"github.com/greenleaf-garden/storefront/pkg/middleware"
)

// catalogMaxAge is how long clients may cache catalog reads, in seconds.
const catalogMaxAge = 60

// Services are the use cases the router exposes.
type Services struct {
	Cart       *service.CartService
	Catalog    *service.CatalogService
	Checkout   *service.CheckoutService
	Orders     *service.OrderService
	Payments   *service.PaymentService
	Newsletter *service.NewsletterService
	Wishlist   *service.WishlistService
}

// RouterConfig holds the edge settings of the router.
type RouterConfig struct {
	AllowedOrigins []string
	PprofCIDRs     []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered. The
// rate limiter's background sweeper stops when ctx is done.
func NewRouter(
	ctx context.Context,
	svc Services,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	cors := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		cors.AllowedOrigins = cfg.AllowedOrigins
	}

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cors))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	limit := middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	cartHandler := NewCartHandler(svc.Cart, logger)
	catalogHandler := NewCatalogHandler(svc.Catalog, logger)
	checkoutHandler := NewCheckoutHandler(svc.Checkout, logger)
	orderHandler := NewOrderHandler(svc.Orders, logger)
	paymentHandler := NewPaymentHandler(svc.Payments, logger)
	newsletterHandler := NewNewsletterHandler(svc.Newsletter, logger)
	wishlistHandler := NewWishlistHandler(svc.Wishlist, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Catalog: public and cacheable.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogMaxAge))
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{ref}", catalogHandler.GetProduct)
			r.Get("/categories", catalogHandler.ListCategories)
		})

		r.With(limit).Post("/newsletter/subscribe", newsletterHandler.Subscribe)

		// Per-shopper routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCartKey)
			r.Use(middleware.NoStore)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.With(limit).Delete("/", cartHandler.ClearCart)
				r.With(limit).Post("/items", cartHandler.AddItem)
				r.With(limit).Put("/items/{itemId}", cartHandler.UpdateQuantity)
				r.With(limit).Delete("/items/{itemId}", cartHandler.RemoveItem)
			})

			r.With(limit).Post("/checkout/quote", checkoutHandler.Quote)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.With(limit).Post("/", orderHandler.PlaceOrder)
				r.Get("/{orderId}", orderHandler.GetOrder)
			})

			r.Route("/payments", func(r chi.Router) {
				r.With(limit).Post("/", paymentHandler.Pay)
				r.Get("/{paymentId}", paymentHandler.GetPayment)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.GetWishlist)
				r.With(limit).Post("/{productId}", wishlistHandler.AddItem)
				r.With(limit).Delete("/{productId}", wishlistHandler.RemoveItem)
			})
		})
	})

	return r
}
