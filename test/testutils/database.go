// Package testutils holds fixtures, mocks and database setup shared by the
// unit and integration tests
package testutils

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/sqlite"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupSQLite opens a private in-memory SQLite database with the schema
// migrated. It is closed when the test ends.
func SetupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sqlite.SetupDatabase(sqlite.Options{LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err, "open in-memory sqlite")
	t.Cleanup(func() { closeGorm(db) })
	return db
}

// ContainerSpec describes a single-port service container
type ContainerSpec struct {
	Image string
	Port  nat.Port
	Env   map[string]string
	Cmd   []string
	Tmpfs map[string]string
	// WaitFor is added to the listening-port wait strategy
	WaitFor wait.Strategy
}

// Run starts the container and returns its host:port endpoint. The
// container is terminated when the test ends.
func (s ContainerSpec) Run(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	strategies := []wait.Strategy{wait.ForListeningPort(s.Port)}
	if s.WaitFor != nil {
		strategies = append(strategies, s.WaitFor)
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        s.Image,
			ExposedPorts: []string{string(s.Port)},
			Env:          s.Env,
			Cmd:          s.Cmd,
			Tmpfs:        s.Tmpfs,
			WaitingFor:   wait.ForAll(strategies...).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start %s", s.Image)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate %s: %v", s.Image, err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, s.Port, "")
	require.NoError(t, err)
	return endpoint
}

// StartContainer is ContainerSpec.Run for containers that only need an
// image, a port, environment and a command
func StartContainer(t *testing.T, image string, port nat.Port, env map[string]string, cmd ...string) string {
	return ContainerSpec{Image: image, Port: port, Env: env, Cmd: cmd}.Run(t)
}

// Tables in the order they can be emptied
var cookbookTables = []string{
	"shopping_list_items",
	"planned_meals",
	"realizations",
	"ingredients",
	"recipes",
}

// TestDatabase is a migrated Postgres running in a container
type TestDatabase struct {
	GormDB *gorm.DB
	DSN    string
}

// SetupTestDatabase starts postgres:15-alpine, applies the embedded
// migrations and opens a gorm connection. Everything is released when the
// test ends.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	const (
		name     = "cookbook_test"
		user     = "cookbook"
		password = "cookbook"
	)
	endpoint := ContainerSpec{
		Image: "postgres:15-alpine",
		Port:  "5432/tcp",
		Env: map[string]string{
			"POSTGRES_DB":       name,
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
		},
		Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,noexec,nosuid,size=512m"},
		// postgres restarts once after initdb
		WaitFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}.Run(t)

	db := &TestDatabase{
		DSN: fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", user, password, endpoint, name),
	}

	migrator, err := migrations.New(db.DSN, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up(context.Background()), "apply migrations")
	require.NoError(t, migrator.Close())

	db.GormDB, err = gorm.Open(postgres.Open(db.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { closeGorm(db.GormDB) })
	return db
}

// TruncateAllTables empties every cookbook table and keeps the schema
func (db *TestDatabase) TruncateAllTables() error {
	stmt := "TRUNCATE TABLE " + strings.Join(cookbookTables, ", ") + " CASCADE"
	if err := db.GormDB.Exec(stmt).Error; err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

func closeGorm(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
