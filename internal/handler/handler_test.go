package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/connexus-ai/retrieval-middleware/internal/memory"
	"github.com/connexus-ai/retrieval-middleware/internal/model"
	"github.com/connexus-ai/retrieval-middleware/internal/vectorstore"
)

type fakeRetriever struct {
	result model.ResultList
	err    error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, limit int, rerank bool) (model.ResultList, error) {
	return f.result, f.err
}

type fakeStorer struct {
	row model.StoredRow
	err error
}

func (f *fakeStorer) EmbedAndStore(ctx context.Context, text string) (model.StoredRow, error) {
	return f.row, f.err
}

type fakeCacheInspector struct {
	err error
}

func (f *fakeCacheInspector) ClearCaches(ctx context.Context) error {
	return f.err
}

type fakeRedisInspector struct {
	keys []string
	data map[string]model.ResultList
}

func (f *fakeRedisInspector) Keys(ctx context.Context, pattern string) ([]string, error) {
	return f.keys, nil
}

func (f *fakeRedisInspector) MGet(ctx context.Context, keys []string) ([]*model.ResultList, error) {
	out := make([]*model.ResultList, len(keys))
	for i, k := range keys {
		if v, ok := f.data[k]; ok {
			vv := v
			out[i] = &vv
		}
	}
	return out, nil
}

type fakeDBPinger struct {
	err error
}

func (f *fakeDBPinger) Ping(ctx context.Context) error {
	return f.err
}

func TestRetrieve_MissingQuery(t *testing.T) {
	h := Retrieve(&fakeRetriever{})
	req := httptest.NewRequest(http.MethodGet, "/test/retrieve?limit=5", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRetrieve_MissingLimit(t *testing.T) {
	h := Retrieve(&fakeRetriever{})
	req := httptest.NewRequest(http.MethodGet, "/test/retrieve?query=hi", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRetrieve_Success(t *testing.T) {
	h := Retrieve(&fakeRetriever{result: model.ResultList{"a", "b"}})
	req := httptest.NewRequest(http.MethodGet, "/test/retrieve?query=hi&limit=2", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&body)
	if body["query"] != "hi" {
		t.Errorf("query = %v, want hi", body["query"])
	}
}

func TestRetrieve_InvalidInputMapsTo400(t *testing.T) {
	h := Retrieve(&fakeRetriever{err: fmt.Errorf("wrap: %w", memory.ErrInvalidInput)})
	req := httptest.NewRequest(http.MethodGet, "/test/retrieve?query=hi&limit=2", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRetrieve_StoreUnavailableMapsTo502(t *testing.T) {
	h := Retrieve(&fakeRetriever{err: fmt.Errorf("wrap: %w", memory.ErrStoreUnavailable)})
	req := httptest.NewRequest(http.MethodGet, "/test/retrieve?query=hi&limit=2", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestRetrieve_DimensionMismatchMapsTo500(t *testing.T) {
	h := Retrieve(&fakeRetriever{err: fmt.Errorf("wrap: %w", vectorstore.ErrDimensionMismatch)})
	req := httptest.NewRequest(http.MethodGet, "/test/retrieve?query=hi&limit=2", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestEmbedAndStore_MissingText(t *testing.T) {
	h := EmbedAndStore(&fakeStorer{})
	req := httptest.NewRequest(http.MethodPost, "/test/embed-and-store", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEmbedAndStore_Success(t *testing.T) {
	h := EmbedAndStore(&fakeStorer{row: model.StoredRow{ID: 1, Text: "hello"}})
	req := httptest.NewRequest(http.MethodPost, "/test/embed-and-store", strings.NewReader(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestEmbedAndStore_InvalidJSON(t *testing.T) {
	h := EmbedAndStore(&fakeStorer{})
	req := httptest.NewRequest(http.MethodPost, "/test/embed-and-store", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestClearCache_Success(t *testing.T) {
	h := ClearCache(&fakeCacheInspector{})
	req := httptest.NewRequest(http.MethodPost, "/test/clear-cache", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestClearCache_Failure(t *testing.T) {
	h := ClearCache(&fakeCacheInspector{err: errors.New("l2 down")})
	req := httptest.NewRequest(http.MethodPost, "/test/clear-cache", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestRedisCache_ListsEntries(t *testing.T) {
	fr := &fakeRedisInspector{
		keys: []string{"q::5"},
		data: map[string]model.ResultList{"q::5": {"doc-a"}},
	}
	h := RedisCache(fr)
	req := httptest.NewRequest(http.MethodGet, "/test/redis-cache", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&body)
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestHealth_OKWithoutDB(t *testing.T) {
	h := Health(nil, "1.2.3")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHealth_DegradedOnDBFailure(t *testing.T) {
	h := Health(&fakeDBPinger{err: errors.New("down")})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
