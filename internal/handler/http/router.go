package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartflow/storefront/internal/service"
	"github.com/cartflow/storefront/pkg/health"
	"github.com/cartflow/storefront/pkg/middleware"
)

const serviceName = "storefront"

// publicCacheMaxAge is how long anonymous clients may cache catalog reads.
const publicCacheMaxAge = 30 * time.Second

// RouterConfig holds the HTTP-level settings of the router.
type RouterConfig struct {
	JWTSecret       string
	CORSOrigins     []string
	PprofCIDRs      []string
	DefaultPageSize int
	MaxPageSize     int
	RateLimit       middleware.RateLimitConfig
}

// Services bundles the business services the handlers delegate to.
type Services struct {
	Products *service.ProductService
	Reviews  *service.ReviewService
	Orders   *service.OrderService
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svcs Services,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	// One limiter shared by all API routes.
	rateLimit := middleware.RateLimit(cfg.RateLimit, logger)
	authenticate := middleware.Auth(middleware.NewJWTValidator(cfg.JWTSecret))
	adminOnly := middleware.RequireRole(middleware.RoleAdmin)

	// Product API endpoints
	productHandler := NewProductHandler(svcs.Products, cfg.DefaultPageSize, cfg.MaxPageSize, logger)

	r.Route("/api/products", func(r chi.Router) {
		r.Use(rateLimit, ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(publicCacheMaxAge))
			r.Get("/", productHandler.ListProducts)
			r.Get("/related/{id}", productHandler.RelatedProducts)
			r.Get("/{id}", productHandler.GetProduct)
		})

		r.With(authenticate).Post("/create-product", productHandler.CreateProduct)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Patch("/update-product/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})
	})

	// Review API endpoints
	reviewHandler := NewReviewHandler(svcs.Reviews, logger)

	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(rateLimit, ContentTypeJSON)

		r.Get("/total-reviews", reviewHandler.CountReviews)
		r.Get("/user/{userId}", reviewHandler.ListUserReviews)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", reviewHandler.CreateReview)
			r.Patch("/{id}", reviewHandler.UpdateReview)
			r.Delete("/{id}", reviewHandler.DeleteReview)
		})
	})

	// Order API endpoints
	orderHandler := NewOrderHandler(svcs.Orders, logger)

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(rateLimit, ContentTypeJSON)
		r.Use(authenticate)

		r.Post("/", orderHandler.CreateOrder)
		r.Get("/user/{userId}", orderHandler.ListUserOrders)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", orderHandler.ListOrders)
			r.Put("/{id}", orderHandler.UpdateOrderStatus)
		})
	})

	return r
}
