// Package router wires the HTTP surface: middleware chain plus the five
// retrieval endpoints.
package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/connexus-ai/retrieval-middleware/internal/handler"
	"github.com/connexus-ai/retrieval-middleware/internal/middleware"
)

// Dependencies holds all injected services needed by the router.
type Dependencies struct {
	DB          handler.DBPinger
	Version     string
	Metrics     *middleware.Metrics
	MetricsReg  *prometheus.Registry
	FrontendURL string

	Pipeline PipelineDeps
}

// PipelineDeps groups the pipeline-shaped dependencies the retrieval
// handlers need. Retriever, Storer and CacheInspector are satisfied by a
// single *memory.Pipeline at the call site; RedisInspector by the Redis
// L2 cache.
type PipelineDeps struct {
	Retriever      handler.Retriever
	Storer         handler.Storer
	CacheInspector handler.CacheInspector
	RedisInspector handler.RedisInspector
}

// New creates and configures the Chi router with all routes.
func New(deps *Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Logging)
	if deps.FrontendURL != "" {
		r.Use(middleware.CORS(deps.FrontendURL))
	}
	if deps.Metrics != nil {
		r.Use(middleware.Monitoring(deps.Metrics))
	}

	r.Get("/", handler.Health(deps.DB, deps.Version))
	if deps.MetricsReg != nil {
		r.Handle("/metrics", middleware.MetricsHandler(deps.MetricsReg))
	}

	timeout30s := middleware.Timeout(30 * time.Second)

	r.With(timeout30s).Get("/test/retrieve", handler.Retrieve(deps.Pipeline.Retriever))
	r.With(timeout30s).Post("/test/embed-and-store", handler.EmbedAndStore(deps.Pipeline.Storer))
	r.With(timeout30s).Get("/test/redis-cache", handler.RedisCache(deps.Pipeline.RedisInspector))
	r.With(timeout30s).Post("/test/clear-cache", handler.ClearCache(deps.Pipeline.CacheInspector))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "route not found",
		})
	})

	return r
}
