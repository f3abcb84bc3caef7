// Package embedder turns batches of text into fixed-dimensional vectors
// via the Gemini embedding API, specializing the request by task type.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/connexus-ai/retrieval-middleware/internal/model"
)

// Embedder turns a batch of texts into fixed-dimensional vectors,
// specializing by task type. A provider fault or an empty prediction set
// is not an error — it returns (nil, nil); the caller treats an empty
// result as "no results available", never as a failure to propagate.
type Embedder interface {
	Embed(ctx context.Context, texts []string, taskType model.TaskType) ([]model.Vector, error)
}

// geminiBaseURL is the public Gemini API host. Overridden in tests to
// point at an httptest server.
const geminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiEmbedder calls the public Gemini embedding REST API.
type GeminiEmbedder struct {
	apiKey     string
	model      string
	defaultTT  model.TaskType
	baseURL    string
	httpClient *http.Client
}

// New creates a GeminiEmbedder. defaultTaskType is used when a caller
// passes TaskUnspecified or a value outside the enumerated set.
func New(apiKey, embeddingModel string, defaultTaskType model.TaskType) *GeminiEmbedder {
	return &GeminiEmbedder{
		apiKey:     apiKey,
		model:      embeddingModel,
		defaultTT:  defaultTaskType,
		baseURL:    geminiBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
	TaskType string `json:"taskType"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// Embed generates one vector per input text, preserving order. Returns
// (nil, nil) when the provider returns no predictions — this is the
// EmbeddingUnavailable policy of the retrieval pipeline, not an error.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string, taskType model.TaskType) ([]model.Vector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embedder.Embed: no texts provided")
	}

	wireTaskType := taskType.String()
	if wireTaskType == model.TaskUnspecified.String() {
		wireTaskType = e.defaultTT.String()
	}

	reqs := make([]embedRequest, len(texts))
	for i, text := range texts {
		reqs[i] = embedRequest{
			Model:    "models/" + e.model,
			Content:  content{Parts: []part{{Text: text}}},
			TaskType: wireTaskType,
		}
	}

	body, err := json.Marshal(batchEmbedRequest{Requests: reqs})
	if err != nil {
		return nil, fmt.Errorf("embedder.Embed: marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:batchEmbedContents", e.baseURL, e.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedder.Embed: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		slog.Warn("embedder: provider call failed, returning empty", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Warn("embedder: provider returned non-200, returning empty",
			"status", resp.StatusCode, "body", strings.TrimSpace(string(respBody)))
		return nil, nil
	}

	var parsed batchEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		slog.Warn("embedder: decode failed, returning empty", "error", err)
		return nil, nil
	}

	if len(parsed.Embeddings) == 0 {
		return nil, nil
	}

	vectors := make([]model.Vector, len(parsed.Embeddings))
	for i, emb := range parsed.Embeddings {
		vectors[i] = model.Vector(emb.Values)
	}
	return vectors, nil
}
