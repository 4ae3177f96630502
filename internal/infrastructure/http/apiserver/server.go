// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Services are the application ports served over HTTP
type Services struct {
	Recipes     inbound.RecipeService
	Journal     inbound.JournalService
	Planner     inbound.PlannerService
	Shopping    inbound.ShoppingService
	Ingredients inbound.IngredientService
}

// Options carries the optional collaborators of the server; nil values
// switch the matching feature off
type Options struct {
	Metrics     *monitoring.MetricsCollector
	Telemetry   *monitoring.Telemetry
	Health      *healthcheck.HealthCheck
	RateLimiter *middleware.RateLimiter
}

// APIServer is the JSON API HTTP server
type APIServer struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	router   *chi.Mux
	services Services
	tokens   *security.TokenService
	options  Options
}

// NewAPIServer creates a new API server instance
func NewAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	services Services,
	tokens *security.TokenService,
	options Options,
) *APIServer {
	server := &APIServer{
		config:   cfg,
		logger:   log.Named("api-server"),
		services: services,
		tokens:   tokens,
		options:  options,
	}

	server.router = server.setupRoutes()

	var handler http.Handler = server.router
	if options.Telemetry != nil {
		handler = options.Telemetry.HTTPHandler(handler, "cookbook-api")
	}

	server.server = &http.Server{
		Addr:           net.JoinHostPort(cfg.Server.Host, fmt.Sprintf("%d", cfg.Server.Port)),
		Handler:        handler,
		ReadTimeout:    orDefault(cfg.Server.ReadTimeout, 30*time.Second),
		WriteTimeout:   orDefault(cfg.Server.WriteTimeout, 30*time.Second),
		IdleTimeout:    orDefault(cfg.Server.IdleTimeout, 60*time.Second),
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return server
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// setupRoutes configures the API routes
func (s *APIServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()
	healthPath := s.config.Monitoring.HealthCheckPath
	readyPath := s.config.Monitoring.ReadinessPath
	if healthPath == "" {
		healthPath = "/health"
	}
	if readyPath == "" {
		readyPath = "/ready"
	}

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, healthPath, readyPath, "/metrics"))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server))
	}
	if s.options.Metrics != nil {
		r.Use(s.options.Metrics.HTTPMiddleware)
	}
	r.Use(chimiddleware.Timeout(orDefault(s.config.Server.RequestTimeout, 30*time.Second)))
	r.Use(chimiddleware.Compress(5))

	if s.options.Health != nil {
		r.Get(healthPath, s.options.Health.LivenessHandler())
		r.Get(readyPath, s.options.Health.ReadinessHandler())
	}
	if s.options.Metrics != nil {
		r.Handle("/metrics", s.options.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.MaxBody(s.config.Server.MaxBodyBytes))
		r.Use(middleware.JSONOnly())
		r.Use(middleware.AuthenticateAPI(s.tokens))
		if s.options.RateLimiter != nil {
			r.Use(s.options.RateLimiter.Limit)
		}
		s.setupAPIRoutes(r)
	})

	return r
}

// setupAPIRoutes mounts one handler group per resource
func (s *APIServer) setupAPIRoutes(r chi.Router) {
	validator := security.NewValidator()

	r.Route("/recipes", handlers.NewRecipeHandlers(s.services.Recipes, validator, s.logger).Routes)
	r.Route("/journal", handlers.NewJournalHandlers(s.services.Journal, validator, s.logger).Routes)
	r.Route("/meal-planner", handlers.NewPlannerHandlers(s.services.Planner, validator, s.logger).Routes)
	r.Route("/shopping-list", handlers.NewShoppingHandlers(s.services.Shopping, validator, s.logger).Routes)
	r.Route("/ingredients", handlers.NewIngredientHandlers(s.services.Ingredients, validator, s.logger).Routes)
}

// Handler returns the fully wrapped HTTP handler
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until it stops
func (s *APIServer) Start() error {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the API server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
