package product

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ProductCRUD/pkg/kit"
)

const (
	DefaultPrefix = "/products"

	readyTimeout = 1 * time.Second
	gaugeTimeout = 2 * time.Second
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry
	Prefix   string

	MetricsEnabled bool
	MetricsToken   string

	// optional guards on create, update and delete
	Tokens       *TokenMaker
	WriteLimiter *kit.IPRateLimiter
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Prefix == "" {
		deps.Prefix = DefaultPrefix
	}

	r := chi.NewRouter()
	r.NotFound(kit.NotFound)
	r.MethodNotAllowed(kit.MethodNotAllowed)

	setupMiddleware(r, deps)
	setupMetrics(r, s, deps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.readyz)

	r.Route(deps.Prefix, func(pr chi.Router) {
		s.routes(pr, writeGuards(deps)...)
	})

	return r
}

// routes registers the action-style paths and their resource-style aliases.
func (s *Server) routes(r chi.Router, guards ...func(http.Handler) http.Handler) {
	r.Get("/", s.list)
	r.Get("/get-products", s.list)
	r.Get("/get-product-details/{id}", s.get)
	r.Get("/{id}", s.get)

	r.Group(func(wr chi.Router) {
		wr.Use(guards...)

		wr.Post("/", s.create)
		wr.Post("/create-product", s.create)
		wr.Put("/update-product/{id}", s.update)
		wr.Put("/{id}", s.update)
		wr.Delete("/delete-product/{id}", s.delete)
		wr.Delete("/{id}", s.delete)
	})
}

func writeGuards(deps HTTPDeps) []func(http.Handler) http.Handler {
	var guards []func(http.Handler) http.Handler
	if deps.WriteLimiter != nil {
		guards = append(guards, deps.WriteLimiter.Middleware)
	}
	if deps.Tokens != nil {
		guards = append(guards, RequireWriter(deps.Tokens))
	}
	return guards
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, s *Server, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePattern))

	deps.Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "product_store_size",
			Help: "Number of products currently held by the store",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), gaugeTimeout)
			defer cancel()

			n, err := s.Store.Len(ctx)
			if err != nil {
				deps.Log.Warn("store size probe failed", zap.Error(err))
				return math.NaN()
			}
			return float64(n)
		},
	))

	if !deps.MetricsEnabled {
		return
	}

	h := promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
	if deps.MetricsToken != "" {
		r.With(kit.MetricsAuth(deps.MetricsToken)).Handle("/metrics", h)
		return
	}
	r.Handle("/metrics", h)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, kit.NewHTTPError(http.StatusServiceUnavailable, "Service Unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
}
