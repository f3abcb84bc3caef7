package reranker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/connexus-ai/retrieval-middleware/internal/model"
)

func TestHTTPReranker_EmptyDocsNoCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	r := New(srv.URL)
	got, err := r.Rerank(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Rerank() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Rerank() = %v, want empty", got)
	}
	if called {
		t.Error("expected no HTTP call for an empty doc list")
	}
}

func TestHTTPReranker_PermutesByLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rerankRequest
		json.NewDecoder(r.Body).Decode(&req)

		sorted := append([]string(nil), req.Documents...)
		sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

		json.NewEncoder(w).Encode(rerankResponse{Documents: sorted})
	}))
	defer srv.Close()

	r := New(srv.URL)
	docs := model.ResultList{"x", "xxxxx", "xxx"}
	got, err := r.Rerank(context.Background(), "q'", docs)
	if err != nil {
		t.Fatalf("Rerank() error: %v", err)
	}

	want := model.ResultList{"xxxxx", "xxx", "x"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Rerank()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHTTPReranker_IsPermutation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rerankRequest
		json.NewDecoder(r.Body).Decode(&req)
		reversed := make([]string, len(req.Documents))
		for i, d := range req.Documents {
			reversed[len(req.Documents)-1-i] = d
		}
		json.NewEncoder(w).Encode(rerankResponse{Documents: reversed})
	}))
	defer srv.Close()

	r := New(srv.URL)
	docs := model.ResultList{"a", "b", "c", "d"}
	got, err := r.Rerank(context.Background(), "q", docs)
	if err != nil {
		t.Fatalf("Rerank() error: %v", err)
	}

	inSet := make(map[model.Document]bool)
	for _, d := range docs {
		inSet[d] = true
	}
	if len(got) != len(docs) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(docs))
	}
	for _, d := range got {
		if !inSet[d] {
			t.Errorf("Rerank() introduced unknown doc %q", d)
		}
		delete(inSet, d)
	}
	if len(inSet) != 0 {
		t.Errorf("Rerank() dropped docs: %v", inSet)
	}
}

func TestHTTPReranker_FaultPropagatesAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := New(srv.URL)
	_, err := r.Rerank(context.Background(), "q", model.ResultList{"a"})
	if err == nil {
		t.Fatal("expected error on reranker fault")
	}
	if !errors.Is(err, ErrRerankerFailure) {
		t.Errorf("error = %v, want wrapping ErrRerankerFailure", err)
	}
}

func TestHTTPReranker_MismatchedLengthIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rerankResponse{Documents: []string{"only-one"}})
	}))
	defer srv.Close()

	r := New(srv.URL)
	_, err := r.Rerank(context.Background(), "q", model.ResultList{"a", "b"})
	if !errors.Is(err, ErrRerankerFailure) {
		t.Errorf("error = %v, want wrapping ErrRerankerFailure for length mismatch", err)
	}
}
