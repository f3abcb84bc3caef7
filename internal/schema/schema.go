// Package schema holds the DDL for the retrieval_rows table, shared by
// the create_tables, delete_tables, and reset_tables one-off scripts.
package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS retrieval_rows (
	id BIGSERIAL PRIMARY KEY,
	embedding vector NOT NULL,
	text TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// Create registers the pgvector/pg_trgm extensions and the retrieval_rows
// table, idempotently.
func Create(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector;"); err != nil {
		return fmt.Errorf("schema.Create: vector extension: %w", err)
	}
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS pg_trgm;"); err != nil {
		return fmt.Errorf("schema.Create: pg_trgm extension: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("schema.Create: table: %w", err)
	}
	return nil
}

// Drop removes the retrieval_rows table.
func Drop(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "SET statement_timeout = '30s';"); err != nil {
		return fmt.Errorf("schema.Drop: statement_timeout: %w", err)
	}
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS retrieval_rows CASCADE;"); err != nil {
		return fmt.Errorf("schema.Drop: table: %w", err)
	}
	return nil
}
