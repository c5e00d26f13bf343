package rag

import (
	"context"
	"fmt"

	"rentacheck/internal/port"
)

// Indexer embeds passages and writes them into the section store.
type Indexer struct {
	embedder port.Embedder
	store    port.RagIndexer
}

// NewIndexer creates an Indexer.
func NewIndexer(embedder port.Embedder, store port.RagIndexer) *Indexer {
	return &Indexer{embedder: embedder, store: store}
}

// IndexPassage embeds one passage and inserts it. Unlike Search this is
// not best-effort: seeding must fail loudly.
func (i *Indexer) IndexPassage(ctx context.Context, content, source string) error {
	if content == "" {
		return fmt.Errorf("empty passage content")
	}
	embedding, err := i.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embedding passage: %w", err)
	}
	if err := i.store.Insert(ctx, content, source, embedding); err != nil {
		return fmt.Errorf("storing passage: %w", err)
	}
	return nil
}
