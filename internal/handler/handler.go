// Package handler implements the HTTP surface of the retrieval service:
// the four endpoints of the retrieve/embed-and-store pipeline plus
// liveness.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/connexus-ai/retrieval-middleware/internal/memory"
	"github.com/connexus-ai/retrieval-middleware/internal/model"
	"github.com/connexus-ai/retrieval-middleware/internal/vectorstore"
)

// Retriever is the subset of the pipeline the retrieve handler needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int, rerank bool) (model.ResultList, error)
}

// Storer is the subset of the pipeline the embed-and-store handler needs.
type Storer interface {
	EmbedAndStore(ctx context.Context, text string) (model.StoredRow, error)
}

// CacheInspector is the subset of the pipeline the clear-cache handler
// needs.
type CacheInspector interface {
	ClearCaches(ctx context.Context) error
}

// errorStatus classifies a pipeline error into an HTTP status, per the
// error-handling policy: invalid input is a 400, cache/store/reranker
// faults are never the client's fault.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, memory.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, vectorstore.ErrDimensionMismatch):
		return http.StatusInternalServerError
	case errors.Is(err, memory.ErrStoreUnavailable), errors.Is(err, memory.ErrRerankerFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("handler: failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
