package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/cookbook/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/mongo"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/healthcheck"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories are the storage ports of the selected database driver
type Repositories struct {
	fx.Out

	Recipes      outbound.RecipeRepository
	Realizations outbound.RealizationRepository
	Meals        outbound.PlannedMealRepository
	Items        outbound.ShoppingItemRepository
	Ingredients  outbound.IngredientRepository
}

// NewRepositories opens the configured store, registers its health check
// and pool metrics, and closes it when the application stops
func NewRepositories(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	metrics *monitoring.MetricsCollector,
	health *healthcheck.HealthCheck,
) (Repositories, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Database.Driver {
	case "memory":
		log.Warn("Using in-memory storage; data is lost on restart")
		return Repositories{
			Recipes:      memory.NewRecipeRepository(),
			Realizations: memory.NewRealizationRepository(),
			Meals:        memory.NewPlannedMealRepository(),
			Items:        memory.NewShoppingItemRepository(),
			Ingredients:  memory.NewIngredientRepository(),
		}, nil

	case "mongo":
		store, err := mongo.Connect(ctx, cfg.Database.URI, cfg.Database.Database, log)
		if err != nil {
			return Repositories{}, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return Repositories{}, err
		}
		health.Register("mongo", healthcheck.NewPingChecker(store.HealthCheck, time.Second))
		lc.Append(fx.Hook{OnStop: store.Close})

		return Repositories{
			Recipes:      mongo.NewRecipeRepository(store),
			Realizations: mongo.NewRealizationRepository(store),
			Meals:        mongo.NewPlannedMealRepository(store),
			Items:        mongo.NewShoppingItemRepository(store),
			Ingredients:  mongo.NewIngredientRepository(store),
		}, nil

	case "postgres":
		if cfg.Database.AutoMigrate {
			if err := migrate(cfg, log); err != nil {
				return Repositories{}, err
			}
		}
		cm, err := postgres.NewConnectionManager(cfg, log)
		if err != nil {
			return Repositories{}, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return cm.Close() }})
		return gormRepositories(cm.GetDB(), cm.SQLDB(), "postgres", metrics, health)

	default:
		db, err := sqlite.SetupDatabase(sqlite.Options{
			Path:        cfg.Database.Path,
			LogLevel:    cfg.Database.LogLevel,
			AutoMigrate: cfg.Database.AutoMigrate,
		}, log)
		if err != nil {
			return Repositories{}, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return Repositories{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return sqlDB.Close() }})
		return gormRepositories(db, sqlDB, "sqlite", metrics, health)
	}
}

func gormRepositories(
	db *gorm.DB,
	sqlDB *sql.DB,
	name string,
	metrics *monitoring.MetricsCollector,
	health *healthcheck.HealthCheck,
) (Repositories, error) {
	if err := metrics.RegisterDB(name, sqlDB); err != nil {
		return Repositories{}, fmt.Errorf("failed to register database metrics: %w", err)
	}
	health.Register("database", healthcheck.NewPingChecker(sqlDB.PingContext, 500*time.Millisecond))

	return Repositories{
		Recipes:      gormRepo.NewRecipeRepository(db),
		Realizations: gormRepo.NewRealizationRepository(db),
		Meals:        gormRepo.NewPlannedMealRepository(db),
		Items:        gormRepo.NewShoppingItemRepository(db),
		Ingredients:  gormRepo.NewIngredientRepository(db),
	}, nil
}

func migrate(cfg *config.Config, log *zap.Logger) error {
	m, err := migrations.New(cfg.GetMigrationURL(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up(context.Background())
}
