// Package migrations versions the postgres schema with golang-migrate. The
// SQL files are embedded so the binary carries its own schema.
package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migrator applies the embedded migrations to one database
type Migrator struct {
	migrate *migrate.Migrate
	log     *zap.Logger
}

// New opens a dedicated connection to databaseURL, a postgres:// URL
func New(databaseURL string, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(sqlFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect migrator: %w", err)
	}

	log := logger.Named("migrations")
	m.Log = migrateLogger{log: log}
	return &Migrator{migrate: m, log: log}, nil
}

// Up applies every pending migration. Cancelling ctx stops after the
// migration in progress.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", m.migrate.Up)
}

// Down rolls back the latest migration
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "down", func() error { return m.migrate.Steps(-1) })
}

func (m *Migrator) run(ctx context.Context, direction string, step func() error) error {
	from, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.migrate.GracefulStop <- true
		case <-done:
		}
	}()

	start := time.Now()
	err = step()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info("Schema already up to date", zap.Uint("version", from))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s from version %d: %w", direction, from, err)
	}

	to, _, _ := m.Version()
	m.log.Info("Schema migrated",
		zap.String("direction", direction),
		zap.Uint("from_version", from),
		zap.Uint("to_version", to),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Version returns the applied version, zero before the first migration
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Force marks version as applied and clears the dirty flag without running
// any SQL
func (m *Migrator) Force(version int) error {
	m.log.Warn("Forcing schema version", zap.Int("version", version))
	return m.migrate.Force(version)
}

func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}

// Files lists the embedded migration files in apply order
func Files() ([]string, error) {
	names, err := fs.Glob(sqlFiles, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		names[i] = strings.TrimPrefix(name, "sql/")
	}
	sort.Strings(names)
	return names, nil
}

// migrateLogger routes golang-migrate's own messages to zap at debug level
type migrateLogger struct {
	log *zap.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.log.Core().Enabled(zap.DebugLevel)
}
