package handler

import (
	"context"
	"net/http"

	"github.com/connexus-ai/retrieval-middleware/internal/model"
)

// RedisInspector exposes read-only access to the durable L2 cache for the
// cache-inspection endpoint.
type RedisInspector interface {
	Keys(ctx context.Context, pattern string) ([]string, error)
	MGet(ctx context.Context, keys []string) ([]*model.ResultList, error)
}

// RedisCache handles GET /test/redis-cache — lists every key currently
// held in L2 along with its decoded value, for debugging and tests.
func RedisCache(kv RedisInspector) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		keys, err := kv.Keys(req.Context(), "*")
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		values, err := kv.MGet(req.Context(), keys)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		entries := make(map[string]model.ResultList, len(keys))
		for i, key := range keys {
			if values[i] != nil {
				entries[key] = *values[i]
			}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":   len(entries),
			"entries": entries,
		})
	}
}
