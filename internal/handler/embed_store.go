package handler

import (
	"encoding/json"
	"net/http"
)

type embedStoreRequest struct {
	Text string `json:"text"`
}

// EmbedAndStore handles POST /test/embed-and-store. Body: {"text": "..."}.
func EmbedAndStore(s Storer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body embedStoreRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.Text == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}

		row, err := s.EmbedAndStore(req.Context(), body.Text)
		if err != nil {
			writeError(w, errorStatus(err), err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id":   row.ID,
			"text": row.Text,
		})
	}
}
