// Package rag provides retrieval-augmented grounding: embedding a
// query and looking up the closest normative passages.
package rag

import (
	"context"
	"log"
	"unicode/utf8"

	"rentacheck/internal/config"
	"rentacheck/internal/domain"
	"rentacheck/internal/port"
)

// The search layer never returns more than this many passages,
// whatever the caller asks for.
const maxTopK = 20

// Client embeds queries and performs similarity lookups. Retrieval
// failures surface as an empty match list so an enclosing model
// conversation never dies on a degraded search.
type Client struct {
	embedder port.Embedder
	searcher port.RagSearcher
	defaults config.RAGConfig
}

// NewClient creates a retrieval client with the given defaults.
func NewClient(embedder port.Embedder, searcher port.RagSearcher, defaults config.RAGConfig) *Client {
	return &Client{embedder: embedder, searcher: searcher, defaults: defaults}
}

// Search embeds the query and returns matches sorted by similarity
// descending. topK is clamped to [1, 20]; threshold to [0, 1]. Zero
// values take the configured defaults.
func (c *Client) Search(ctx context.Context, query string, topK int, threshold float64) []domain.RagMatch {
	if topK <= 0 {
		topK = c.defaults.TopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}
	if threshold <= 0 {
		threshold = c.defaults.Threshold
	}
	if threshold > 1 {
		threshold = 1
	}

	embedding, err := c.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("rag.Search: embedding failed for %q: %v", head(query, 120), err)
		return nil
	}

	matches, err := c.searcher.Match(ctx, embedding, threshold, topK)
	if err != nil {
		log.Printf("rag.Search: similarity lookup failed for %q: %v", head(query, 120), err)
		return nil
	}

	best := 0.0
	if len(matches) > 0 {
		best = matches[0].Similarity
	}
	log.Printf("rag.Search: query=%q top_k=%d threshold=%.2f matches=%d best=%.3f",
		head(query, 120), topK, threshold, len(matches), best)
	return matches
}

// head truncates log text at a rune boundary.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
