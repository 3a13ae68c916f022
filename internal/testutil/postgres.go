// Package testutil provides test helpers for container-backed storage tests.
package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/taleweaver/internal/config"
	"github.com/cory-johannsen/taleweaver/internal/storage/postgres"
)

// PostgresContainer is a disposable PostgreSQL server with a connected pool.
type PostgresContainer struct {
	RawPool *pgxpool.Pool
	Config  config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL container for the duration of t.
//
// Precondition: Docker must be available.
// Postcondition: Returns a container with a connected pool, or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "taleweaver",
				"POSTGRES_PASSWORD": "taleweaver",
				"POSTGRES_DB":       "taleweaver_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "taleweaver",
		Password:        "taleweaver",
		Name:            "taleweaver_test",
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}
	pool, err := postgres.NewPool(ctx, cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(pool.Close)

	t.Logf("postgres container started [%s]", time.Since(start))
	return &PostgresContainer{RawPool: pool.DB(), Config: cfg}
}

// ApplyMigrations runs the repository's migrations directory against the
// container with the same migrator cmd/migrate uses.
//
// Postcondition: The sessions table exists.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	start := time.Now()

	m, err := migrate.New("file://"+migrationsDir(t), pc.Config.DSN())
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("locating testutil source")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
