package memory

import (
	"context"
	"fmt"

	"github.com/connexus-ai/retrieval-middleware/internal/model"
)

// EmbedAndStore embeds text for indexing (RETRIEVAL_DOCUMENT, not
// RETRIEVAL_QUERY) and persists the resulting row in the vector store. It
// does not touch any cache tier: a freshly stored row is not assumed to
// answer any previously-cached query.
func (p *Pipeline) EmbedAndStore(ctx context.Context, text string) (model.StoredRow, error) {
	if text == "" {
		return model.StoredRow{}, fmt.Errorf("memory.EmbedAndStore: %w: empty text", ErrInvalidInput)
	}

	vectors, err := p.embedder.Embed(ctx, []string{text}, model.RetrievalDocument)
	if err != nil {
		return model.StoredRow{}, fmt.Errorf("memory.EmbedAndStore: embed: %w", err)
	}
	if len(vectors) == 0 {
		return model.StoredRow{}, fmt.Errorf("memory.EmbedAndStore: embedding unavailable for %q", text)
	}

	row, err := p.store.Store(ctx, vectors[0], text)
	if err != nil {
		return model.StoredRow{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return row, nil
}
