package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres"
)

// OpenMigratedPool connects to DATABASE_URL_TEST, creates a throwaway schema, applies the
// migrations inside it and returns a pool pinned to that schema. The schema is dropped on cleanup.
// The test is skipped when DATABASE_URL_TEST is unset.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL_TEST"))
	if dsn == "" {
		t.Skip("DATABASE_URL_TEST not set; skipping postgres tests")
	}
	ctx := context.Background()

	admin, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 2})
	if err != nil {
		t.Fatalf("open admin pool: %v", err)
	}
	t.Cleanup(admin.Close)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{SearchPath: schema})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema))
	})

	if err := postgres.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}
