// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"fmt"
	"strings"

	gormModels "github.com/alchemorsel/cookbook/internal/infrastructure/persistence/gorm"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Options configures SetupDatabase
type Options struct {
	// Path of the database file; empty means a private in-memory database
	Path        string
	LogLevel    string
	AutoMigrate bool
}

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(opts Options, log *zap.Logger) (*gorm.DB, error) {
	dsn := opts.Path
	if dsn == "" {
		dsn = "file::memory:"
	}
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormModels.NewLogger(log, opts.LogLevel, 0),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Path == "" {
		// each connection to :memory: opens its own database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if opts.AutoMigrate || opts.Path == "" {
		if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	log.Info("SQLite database ready",
		zap.String("path", opts.Path),
		zap.Bool("auto_migrate", opts.AutoMigrate),
	)

	return db, nil
}
