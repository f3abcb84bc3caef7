package handler

import "net/http"

// ClearCache handles POST /test/clear-cache — flushes L1, L2, and L3.
func ClearCache(c CacheInspector) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := c.ClearCaches(req.Context()); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}
