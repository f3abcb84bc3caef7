// Package memory implements MemoryInterface: the tiered L1/L2/L3/vector-DB
// /rerank retrieval pipeline that is the core of this service.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/connexus-ai/retrieval-middleware/internal/cache"
	"github.com/connexus-ai/retrieval-middleware/internal/embedder"
	"github.com/connexus-ai/retrieval-middleware/internal/model"
	"github.com/connexus-ai/retrieval-middleware/internal/reranker"
	"github.com/connexus-ai/retrieval-middleware/internal/vectorstore"
)

// Pipeline orchestrates the embedder, vector store, reranker, and the
// three cache tiers behind a single Retrieve call. It enforces cache
// ordering, admission, promotion, and rerank policy.
type Pipeline struct {
	embedder embedder.Embedder
	store    vectorstore.VectorStore
	reranker reranker.Reranker
	l1       *cache.ExactCache
	l2       cache.KVCache
	l3       *cache.SemanticCache
}

// New wires a Pipeline from its collaborators. l1 and l3 are the
// process-local caches created at service start; l2 is the durable,
// externally-shared store.
func New(emb embedder.Embedder, store vectorstore.VectorStore, rr reranker.Reranker, l1 *cache.ExactCache, l2 cache.KVCache, l3 *cache.SemanticCache) *Pipeline {
	return &Pipeline{
		embedder: emb,
		store:    store,
		reranker: rr,
		l1:       l1,
		l2:       l2,
		l3:       l3,
	}
}

// Retrieve embeds query, consults the cache cascade, and returns the
// top-limit documents. rerank controls whether a result taken from L3 or
// fetched from the vector store is re-ordered by the cross-encoder before
// being returned and cached; L1 and L2 hits are returned as cached.
//
// Step order is strict within a single call: L1 -> L2 -> embed -> L3 ->
// DB fetch. The first tier to produce a result returns immediately.
func (p *Pipeline) Retrieve(ctx context.Context, query string, limit int, rerank bool) (model.ResultList, error) {
	if query == "" || limit <= 0 {
		return nil, fmt.Errorf("memory.Retrieve: %w: query=%q limit=%d", ErrInvalidInput, query, limit)
	}

	key := model.CacheKey(query, limit)

	// 1. L1 probe.
	if result, ok := p.l1.Get(key); ok {
		return result, nil
	}

	// 2. L2 probe.
	l2Result, hit, err := p.l2.Get(ctx, key)
	if err != nil && !errors.Is(err, cache.ErrCacheUnavailable) {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	if err == nil && hit {
		p.l1.Set(key, l2Result)
		return l2Result, nil
	}
	if err != nil {
		slog.Warn("memory.Retrieve: L2 read unavailable, treating as miss", "key", key, "error", err)
	}

	// 3. Embed. An empty result here is EmbeddingUnavailable — swallowed,
	// not propagated — and no cache is written.
	vectors, err := p.embedder.Embed(ctx, []string{query}, model.RetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("memory.Retrieve: embed: %w", err)
	}
	if len(vectors) == 0 {
		return model.ResultList{}, nil
	}
	queryVec := vectors[0]

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// 4. L3 probe.
	if result, ok := p.l3.Lookup(queryVec); ok {
		if rerank {
			result, err = p.reranker.Rerank(ctx, query, result)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRerankerFailure, err)
			}
		}
		p.promote(ctx, key, result)
		return result, nil
	}

	// 5. Miss — fetch from the vector store.
	result, err := p.store.FindSimilar(ctx, queryVec, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if rerank {
		result, err = p.reranker.Rerank(ctx, query, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRerankerFailure, err)
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// 6. Admit everywhere: L1, L3, and (best-effort) L2, bounded by ctx
	// and run concurrently since the three writes are independent.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.l1.Set(key, result)
		return nil
	})
	g.Go(func() error {
		p.l3.Append(queryVec, result)
		return nil
	})
	g.Go(func() error {
		if err := p.l2.Set(gctx, key, result); err != nil {
			slog.Warn("memory.Retrieve: L2 admission write failed, result still returned", "key", key, "error", err)
		}
		return nil
	})
	g.Wait()

	return result, nil
}

// promote writes result into L1 and L2 under key, without touching L3.
// Used for L3 hits — the entry is already indexed by similarity, so
// re-inserting into L3 would just displace a younger entry for no benefit.
// (An L2 hit only sets L1 and does not go through promote.)
func (p *Pipeline) promote(ctx context.Context, key string, result model.ResultList) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.l1.Set(key, result)
		return nil
	})
	g.Go(func() error {
		if err := p.l2.Set(gctx, key, result); err != nil {
			slog.Warn("memory.Retrieve: L2 promotion write failed, result still returned", "key", key, "error", err)
		}
		return nil
	})
	g.Wait()
}

// ClearCaches flushes L1, L2, and L3. Used by the admin clear-cache endpoint.
func (p *Pipeline) ClearCaches(ctx context.Context) error {
	p.l1.Flush()
	p.l3.Flush()
	if err := p.l2.Flush(ctx); err != nil {
		return fmt.Errorf("memory.ClearCaches: %w", err)
	}
	return nil
}

// CacheSnapshot reports the current entry count of the in-process tiers —
// used by tests asserting size invariants.
type CacheSnapshot struct {
	L1Entries int
	L3Entries int
}

// Snapshot returns the current L1/L3 sizes.
func (p *Pipeline) Snapshot() CacheSnapshot {
	return CacheSnapshot{L1Entries: p.l1.Len(), L3Entries: p.l3.Len()}
}

// L2 exposes the durable cache the pipeline was built with. The
// redis-cache inspection endpoint is wired to the Redis cache directly,
// not through this accessor.
func (p *Pipeline) L2() cache.KVCache {
	return p.l2
}
