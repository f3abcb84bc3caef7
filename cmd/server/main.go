package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/connexus-ai/retrieval-middleware/internal/cache"
	"github.com/connexus-ai/retrieval-middleware/internal/config"
	"github.com/connexus-ai/retrieval-middleware/internal/embedder"
	"github.com/connexus-ai/retrieval-middleware/internal/handler"
	"github.com/connexus-ai/retrieval-middleware/internal/memory"
	"github.com/connexus-ai/retrieval-middleware/internal/middleware"
	"github.com/connexus-ai/retrieval-middleware/internal/model"
	"github.com/connexus-ai/retrieval-middleware/internal/reranker"
	"github.com/connexus-ai/retrieval-middleware/internal/router"
	"github.com/connexus-ai/retrieval-middleware/internal/vectorstore"
)

const Version = "0.1.0"

// App bundles every long-lived resource the server holds, in the order
// they are acquired; Close tears them down in reverse.
type App struct {
	cfg      *config.Config
	dbPool   *pgxpool.Pool
	redisKV  *cache.RedisKVCache
	pipeline *memory.Pipeline
	server   *http.Server
}

func newApp(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := vectorstore.NewPool(ctx, cfg.DatabaseURL(), cfg.DBPoolSize)
	if err != nil {
		return nil, fmt.Errorf("newApp: vector store: %w", err)
	}

	redisKV, err := cache.NewRedisKVCache(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("newApp: redis: %w", err)
	}

	emb := embedder.New(cfg.GeminiAPIKey, cfg.EmbeddingModel, model.RetrievalQuery)
	store := vectorstore.New(pool, cfg.VectorDimensions)

	var rr reranker.Reranker
	if cfg.RerankerURL != "" {
		rr = reranker.New(cfg.RerankerURL)
	} else {
		rr = noopReranker{}
	}

	l1 := cache.NewExact(cfg.ExactCacheMax)
	l3 := cache.NewSemantic(cfg.SemanticCacheMax, cfg.CosineThreshold)

	pipeline := memory.New(emb, store, rr, l1, redisKV, l3)

	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)

	deps := &router.Dependencies{
		DB:          dbPinger{pool},
		Version:     Version,
		Metrics:     metrics,
		MetricsReg:  reg,
		FrontendURL: "",
		Pipeline: router.PipelineDeps{
			Retriever:      pipeline,
			Storer:         pipeline,
			CacheInspector: pipeline,
			RedisInspector: redisKV,
		},
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{cfg: cfg, dbPool: pool, redisKV: redisKV, pipeline: pipeline, server: srv}, nil
}

// Close releases resources in reverse order of acquisition: server
// (handled by caller's Shutdown), then Redis, then the DB pool.
func (a *App) Close() {
	if err := a.redisKV.Close(); err != nil {
		slog.Warn("app close: redis", "error", err)
	}
	a.dbPool.Close()
}

type dbPinger struct {
	pool *pgxpool.Pool
}

func (d dbPinger) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

type noopReranker struct{}

func (noopReranker) Rerank(ctx context.Context, query string, docs model.ResultList) (model.ResultList, error) {
	return docs, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer app.Close()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "version", Version, "port", cfg.Port)
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run: server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("run: graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
