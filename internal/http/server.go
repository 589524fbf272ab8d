// Package http exposes the point-of-sale services as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cassa/internal/log"
	"cassa/internal/metrics"
	"cassa/internal/middleware/ratelimit"
	"cassa/internal/middleware/security"
	"cassa/internal/services"
)

// Services bundles what the handlers call into.
type Services struct {
	Catalog  *services.CatalogService
	Checkout *services.CheckoutService
	Expenses *services.ExpenseService
	Reports  *services.ReportService
	// Ready reports backend health for /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	RequestTimeout time.Duration
	RateLimitRPM   int
	Logger         *log.Logger
	Now            func() time.Time
}

type Server struct {
	http.Server
	svc     Services
	limiter *ratelimit.Limiter
	now     func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 7 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		svc:     svc,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		now:     opts.Now,
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(opts),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))
		r.Use(s.limiter.Middleware(clientIP, isRead, s.handleRateLimited))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleListProducts)
			r.Post("/", s.handleCreateProduct)
			r.Get("/{id}", s.handleGetProduct)
			r.Put("/{id}", s.handleUpdateProduct)
			r.Delete("/{id}", s.handleDeleteProduct)
		})

		r.Route("/terminals/{terminal}", func(r chi.Router) {
			r.Get("/cart", s.handleGetCart)
			r.Delete("/cart", s.handleClearCart)
			r.Post("/cart/items", s.handleAddCartItem)
			r.Patch("/cart/items/{productId}", s.handleUpdateCartItem)
			r.Delete("/cart/items/{productId}", s.handleRemoveCartItem)
			r.Post("/checkout", s.handleCheckout)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", s.handleListSales)
			r.Post("/", s.handleImportSale)
			r.Delete("/{id}", s.handleDeleteSale)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Get("/reports/monthly", s.handleMonthlyReport)
	})
	return r
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RateLimited.Inc()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, clientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
