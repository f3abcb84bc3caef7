package schema

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestCreateThenDrop exercises Create/Drop against a real Postgres
// instance. Skipped unless DATABASE_URL is set.
func TestCreateThenDrop(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("pgxpool.New() error: %v", err)
	}
	defer pool.Close()

	if err := Create(ctx, pool); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := Drop(ctx, pool); err != nil {
		t.Fatalf("Drop() error: %v", err)
	}
}
