// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/cookbook/internal/application/ingredient"
	"github.com/alchemorsel/cookbook/internal/application/journal"
	"github.com/alchemorsel/cookbook/internal/application/planner"
	"github.com/alchemorsel/cookbook/internal/application/recipe"
	"github.com/alchemorsel/cookbook/internal/application/shopping"
	"github.com/alchemorsel/cookbook/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/cookbook/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/events"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/cookbook/internal/infrastructure/nutrition"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/infrastructure/storage"
	"github.com/alchemorsel/cookbook/internal/infrastructure/usda"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Core provides everything except the HTTP server: storage, gateways and
// application services. The CLI uses it for the tool server and batch jobs.
func Core(cfg *config.Config, log *zap.Logger) fx.Option {
	return fx.Options(
		fx.Supply(cfg, log),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		MonitoringModule,
		fx.Provide(NewRepositories),
		CacheModule,
		GatewayModule,
		EventModule,
		ServiceModule,
	)
}

// Server is Core plus the HTTP server and its lifecycle
func Server(cfg *config.Config, log *zap.Logger) fx.Option {
	return fx.Options(
		Core(cfg, log),
		HTTPModule,
		LifecycleModule,
	)
}

// MonitoringModule provides metrics, tracing and health checks
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Version, log)
	},
	func(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*monitoring.Telemetry, error) {
		telemetry, err := monitoring.NewTelemetry(context.Background(), monitoring.TelemetryConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			TracingEnabled: cfg.Monitoring.EnableTracing,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
		}, metrics, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: telemetry.Shutdown})
		return telemetry, nil
	},
)

// CacheModule provides the USDA lookup cache, Redis when enabled
var CacheModule = fx.Provide(
	func(
		lc fx.Lifecycle,
		cfg *config.Config,
		log *zap.Logger,
		metrics *monitoring.MetricsCollector,
		health *healthcheck.HealthCheck,
	) (outbound.CacheRepository, error) {
		if !cfg.Redis.Enabled {
			log.Info("Using in-memory cache")
			cache := memory.NewCacheRepository(time.Minute)
			lc.Append(fx.StopHook(cache.Close))
			return monitoring.InstrumentCache(cache, metrics), nil
		}

		client, err := redis.NewClient(context.Background(), cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		cache := redis.NewCacheRepository(client, cfg.Redis.KeyPrefix, log)
		health.Register("redis", healthcheck.NewPingChecker(cache.Ping, 200*time.Millisecond))
		lc.Append(fx.StopHook(client.Close))
		return monitoring.InstrumentCache(cache, metrics), nil
	},
)

// GatewayModule provides the external service clients
var GatewayModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger, health *healthcheck.HealthCheck) outbound.RecipeStructurer {
		if cfg.AI.Provider == "ollama" {
			client := ollama.NewClient(cfg.AI, log)
			health.RegisterOptional("ollama", healthcheck.NewPingChecker(client.HealthCheck, 2*time.Second))
			return client
		}
		return openai.NewClient(cfg.AI, log)
	},
	func(cfg *config.Config, log *zap.Logger) outbound.USDAClient {
		return usda.NewClient(cfg.USDA, log)
	},
	func() (outbound.NutritionDataset, error) {
		return nutrition.Default()
	},
	func(cfg *config.Config, log *zap.Logger) (outbound.ImageStorage, error) {
		if cfg.Storage.Provider != "s3" {
			log.Info("Image storage disabled", zap.String("provider", cfg.Storage.Provider))
			return storage.Disabled{}, nil
		}
		return storage.NewS3Store(context.Background(), cfg.Storage, log)
	},
)

// EventModule provides the domain event dispatcher
var EventModule = fx.Provide(
	func(metrics *monitoring.MetricsCollector, log *zap.Logger) outbound.EventPublisher {
		dispatcher := events.NewDispatcher(log)
		events.RegisterDefaultHandlers(dispatcher, metrics, log)
		return dispatcher
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	fx.Annotate(
		recipe.NewRecipeService,
		fx.As(new(inbound.RecipeService)),
	),
	fx.Annotate(
		journal.NewJournalService,
		fx.As(new(inbound.JournalService)),
	),
	fx.Annotate(
		planner.NewPlannerService,
		fx.As(new(inbound.PlannerService)),
	),
	func(
		items outbound.ShoppingItemRepository,
		realizations outbound.RealizationRepository,
		meals outbound.PlannedMealRepository,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) inbound.ShoppingService {
		return shopping.NewShoppingService(items, realizations, meals, metrics, log)
	},
	func(
		ingredients outbound.IngredientRepository,
		recipes outbound.RecipeRepository,
		items outbound.ShoppingItemRepository,
		dataset outbound.NutritionDataset,
		usdaClient outbound.USDAClient,
		cache outbound.CacheRepository,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.IngredientService {
		return ingredient.NewIngredientService(ingredients, recipes, items, dataset, usdaClient, cache, log).
			WithUSDACacheTTL(cfg.USDA.CacheTTL)
	},
)

// HTTPModule provides the API server and its collaborators
var HTTPModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *security.TokenService {
		return security.NewTokenService(cfg.Auth, log)
	},
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *middleware.RateLimiter {
		if !cfg.RateLimit.Enable {
			return nil
		}
		limiter := middleware.NewRateLimiter(cfg.RateLimit, log)
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			limiter.Close()
			return nil
		}})
		return limiter
	},
	NewAPIServer,
)

// APIServerParams are the dependencies of the API server
type APIServerParams struct {
	fx.In

	Config      *config.Config
	Logger      *zap.Logger
	Recipes     inbound.RecipeService
	Journal     inbound.JournalService
	Planner     inbound.PlannerService
	Shopping    inbound.ShoppingService
	Ingredients inbound.IngredientService
	Tokens      *security.TokenService
	Metrics     *monitoring.MetricsCollector
	Telemetry   *monitoring.Telemetry
	Health      *healthcheck.HealthCheck
	RateLimiter *middleware.RateLimiter
}

// NewAPIServer assembles the API server from the graph
func NewAPIServer(p APIServerParams) *apiserver.APIServer {
	options := apiserver.Options{
		Telemetry:   p.Telemetry,
		Health:      p.Health,
		RateLimiter: p.RateLimiter,
	}
	if p.Config.Monitoring.EnableMetrics {
		options.Metrics = p.Metrics
	}

	return apiserver.NewAPIServer(p.Config, p.Logger, apiserver.Services{
		Recipes:     p.Recipes,
		Journal:     p.Journal,
		Planner:     p.Planner,
		Shopping:    p.Shopping,
		Ingredients: p.Ingredients,
	}, p.Tokens, options)
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks starts and stops the HTTP server
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	server *apiserver.APIServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting cookbook service",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
			)

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down cookbook service")

			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("failed to shutdown HTTP server: %w", err)
			}
			return nil
		},
	})
}
