// Package testutil opens the postgres database used by integration tests.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/xxxsen/docshare/internal/config"
	"github.com/xxxsen/docshare/internal/db"
)

// OpenTestDB connects to TEST_DB_HOST, or starts a throwaway postgres
// container when TEST_USE_CONTAINERS=1. Otherwise the test is skipped.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	var cfg config.DatabaseConfig
	switch {
	case os.Getenv("TEST_DB_HOST") != "":
		cfg = config.DatabaseConfig{
			Host:     os.Getenv("TEST_DB_HOST"),
			Port:     5432,
			User:     "docshare",
			Password: "docshare_pass",
			DBName:   "docshare_test",
			SSLMode:  "disable",
		}
	case os.Getenv("TEST_USE_CONTAINERS") == "1":
		cfg = config.DatabaseConfig{DSN: startPostgres(t)}
	default:
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("docshare_test"),
		postgres.WithUsername("docshare"),
		postgres.WithPassword("docshare_pass"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(ctr)
	})
	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres dsn: %v", err)
	}
	return dsn
}
