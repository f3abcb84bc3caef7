package handler

import (
	"net/http"
	"strconv"
)

// Retrieve handles GET /test/retrieve?query=...&limit=...&rerank=...
// query and limit are required; rerank defaults to true.
func Retrieve(r Retriever) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		query := req.URL.Query().Get("query")
		if query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}

		limitStr := req.URL.Query().Get("limit")
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}

		rerank := true
		if v := req.URL.Query().Get("rerank"); v != "" {
			rerank, err = strconv.ParseBool(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "rerank must be a boolean")
				return
			}
		}

		results, err := r.Retrieve(req.Context(), query, limit, rerank)
		if err != nil {
			writeError(w, errorStatus(err), err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"query":   query,
			"limit":   limit,
			"results": results,
		})
	}
}
