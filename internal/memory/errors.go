package memory

import "fmt"

// Error kinds the pipeline distinguishes, per the error-handling policy:
// EmbeddingUnavailable never reaches here as an error (it's the
// DONE_EMPTY path) — everything else propagates to the HTTP layer.
var (
	ErrStoreUnavailable = fmt.Errorf("memory: vector store unavailable")
	ErrCacheUnavailable = fmt.Errorf("memory: L2 cache unavailable")
	ErrRerankerFailure  = fmt.Errorf("memory: reranker failure")
	ErrInvalidInput     = fmt.Errorf("memory: invalid input")
)
