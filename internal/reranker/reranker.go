// Package reranker re-orders candidate documents by a learned relevance
// score via a cross-encoder HTTP service.
package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/connexus-ai/retrieval-middleware/internal/model"
)

// ErrRerankerFailure wraps any fault talking to the reranking service.
// Unlike embedding failures, this is always propagated to the caller —
// reranking is part of the contract when the caller enables it.
var ErrRerankerFailure = fmt.Errorf("reranker: request failed")

// Reranker re-orders docs in descending order of relevance to query.
// Pure function of its inputs: length is preserved, and the output is a
// permutation of the input (no docs added, dropped, or duplicated).
type Reranker interface {
	Rerank(ctx context.Context, query string, docs model.ResultList) (model.ResultList, error)
}

// HTTPReranker calls a cross-encoder inference endpoint.
type HTTPReranker struct {
	endpoint   string
	httpClient *http.Client
}

// New creates an HTTPReranker pointed at a cross-encoder scoring endpoint.
func New(endpoint string) *HTTPReranker {
	return &HTTPReranker{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Documents []string `json:"documents"`
}

// Rerank posts (query, docs) to the cross-encoder endpoint and returns its
// permutation. A faulted or malformed response is ErrRerankerFailure.
func (r *HTTPReranker) Rerank(ctx context.Context, query string, docs model.ResultList) (model.ResultList, error) {
	if len(docs) == 0 {
		return docs, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = string(d)
	}

	body, err := json.Marshal(rerankRequest{Query: query, Documents: texts})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %v", ErrRerankerFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: request: %v", ErrRerankerFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: call: %v", ErrRerankerFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrRerankerFailure, resp.StatusCode, respBody)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrRerankerFailure, err)
	}

	if len(parsed.Documents) != len(docs) {
		return nil, fmt.Errorf("%w: got %d documents back, want %d", ErrRerankerFailure, len(parsed.Documents), len(docs))
	}

	remaining := make(map[string]int, len(texts))
	for _, t := range texts {
		remaining[t]++
	}
	for _, d := range parsed.Documents {
		if remaining[d] == 0 {
			return nil, fmt.Errorf("%w: response is not a permutation of the input (unexpected %q)", ErrRerankerFailure, d)
		}
		remaining[d]--
	}

	reranked := make(model.ResultList, len(parsed.Documents))
	for i, d := range parsed.Documents {
		reranked[i] = model.Document(d)
	}
	return reranked, nil
}
