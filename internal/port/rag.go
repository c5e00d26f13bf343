package port

import (
	"context"

	"rentacheck/internal/domain"
)

// RagSearcher performs a similarity lookup over the normative-passage
// store. Results come back sorted by similarity descending, already
// filtered to similarity >= threshold and truncated to topK.
type RagSearcher interface {
	Match(ctx context.Context, embedding []float32, threshold float64, topK int) ([]domain.RagMatch, error)
}

// RagIndexer inserts passages with their embeddings into the store.
type RagIndexer interface {
	Insert(ctx context.Context, content, source string, embedding []float32) error
}
