// Package vectorstore persists (vector, text) rows in Postgres and serves
// top-k cosine-similarity search via pgvector.
package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/connexus-ai/retrieval-middleware/internal/model"
)

// ErrDimensionMismatch is returned when a write's vector length does not
// match the store's configured dimension. Fatal at write time per spec.
var ErrDimensionMismatch = fmt.Errorf("vectorstore: vector dimension mismatch")

// VectorStore persists (vector, text) rows and serves cosine-similarity
// top-k queries. Implementations must use cosine distance for ordering.
type VectorStore interface {
	Store(ctx context.Context, vector model.Vector, text model.Document) (model.StoredRow, error)
	FindSimilar(ctx context.Context, queryVector model.Vector, limit int) (model.ResultList, error)
}

// PGVectorStore implements VectorStore over Postgres + the pgvector extension.
type PGVectorStore struct {
	pool      *pgxpool.Pool
	dimension int
}

// New creates a PGVectorStore bound to dimension D.
func New(pool *pgxpool.Pool, dimension int) *PGVectorStore {
	return &PGVectorStore{pool: pool, dimension: dimension}
}

// NewPool creates a pgxpool.Pool configured for pgvector, registering the
// vector type on every new connection.
func NewPool(ctx context.Context, databaseURL string, maxConns int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("vectorstore.NewPool: parse config: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.MinConns = 2
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnLifetime = 1 * time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.AfterConnect = pgxvector.RegisterTypes

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("vectorstore.NewPool: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("vectorstore.NewPool: ping: %w", err)
	}

	return pool, nil
}

// Store persists a new row, rejecting foreign-dimensional vectors.
func (s *PGVectorStore) Store(ctx context.Context, vector model.Vector, text model.Document) (model.StoredRow, error) {
	if len(vector) != s.dimension {
		return model.StoredRow{}, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), s.dimension)
	}

	embedding := pgvector.NewVector([]float32(vector))
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO retrieval_rows (embedding, text, created_at) VALUES ($1, $2, $3) RETURNING id`,
		embedding, string(text), time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return model.StoredRow{}, fmt.Errorf("vectorstore.Store: %w", err)
	}

	return model.StoredRow{ID: id, Vector: vector, Text: text}, nil
}

// FindSimilar returns the texts of the limit rows of smallest cosine
// distance to queryVector, nearest first. Length is min(limit, rowCount).
func (s *PGVectorStore) FindSimilar(ctx context.Context, queryVector model.Vector, limit int) (model.ResultList, error) {
	embedding := pgvector.NewVector([]float32(queryVector))

	rows, err := s.pool.Query(ctx,
		`SELECT text FROM retrieval_rows ORDER BY embedding <=> $1 LIMIT $2`,
		embedding, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("vectorstore.FindSimilar: %w", err)
	}
	defer rows.Close()

	var results model.ResultList
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("vectorstore.FindSimilar: scan: %w", err)
		}
		results = append(results, model.Document(text))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore.FindSimilar: %w", err)
	}

	return results, nil
}
