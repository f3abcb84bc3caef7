package cache

import (
	"math"
	"sync"

	"github.com/connexus-ai/retrieval-middleware/internal/model"
)

// DefaultCosineThreshold is the minimum cosine similarity for a semantic
// cache lookup to count as a hit.
const DefaultCosineThreshold = 0.90

// SemanticCache is a bounded FIFO of (vector, result) pairs, looked up by
// approximate cosine similarity rather than exact key. Capacity bounds
// the queue; insertion past the bound evicts the oldest entry.
type SemanticCache struct {
	mu        sync.Mutex
	capacity  int
	threshold float64
	entries   []semanticEntry
}

type semanticEntry struct {
	vector model.Vector
	result model.ResultList
}

// NewSemantic creates a SemanticCache bounded at capacity entries, hitting
// on cosine similarity >= threshold.
func NewSemantic(capacity int, threshold float64) *SemanticCache {
	return &SemanticCache{
		capacity:  capacity,
		threshold: threshold,
		entries:   make([]semanticEntry, 0, capacity),
	}
}

// Lookup scans entries in insertion order and returns the result of the
// first entry whose cosine similarity to vector is >= the configured
// threshold. Returns (nil, false) if none qualify.
func (c *SemanticCache) Lookup(vector model.Vector) (model.ResultList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if CosineSimilarity(vector, e.vector) >= c.threshold {
			return e.result, true
		}
	}
	return nil, false
}

// Append pushes (vector, result) at the tail, dropping the head entry if
// the cache is already at capacity.
func (c *SemanticCache) Append(vector model.Vector, result model.ResultList) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.capacity {
		c.entries = c.entries[1:]
	}
	c.entries = append(c.entries, semanticEntry{vector: vector, result: result})
}

// Len returns the number of entries currently cached.
func (c *SemanticCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Flush empties the cache.
func (c *SemanticCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries[:0]
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||). If either vector
// has zero norm, similarity is defined as 0 rather than NaN — a zero
// vector can never produce a semantic cache hit.
func CosineSimilarity(a, b model.Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
