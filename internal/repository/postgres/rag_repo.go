package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"rentacheck/internal/domain"
	"rentacheck/internal/port"
)

type ragRepo struct {
	db *sqlx.DB
}

// NewRagRepo creates a PostgreSQL-backed similarity search over the
// rag_sections table. Requires the pgvector extension.
func NewRagRepo(db *sqlx.DB) port.RagSearcher {
	return &ragRepo{db: db}
}

// NewRagIndexer returns the same store through its indexing interface.
func NewRagIndexer(db *sqlx.DB) port.RagIndexer {
	return &ragRepo{db: db}
}

type ragRow struct {
	Content    string  `db:"content"`
	Source     string  `db:"source"`
	Similarity float64 `db:"similarity"`
}

// Match runs a cosine-similarity lookup. Filtering to the threshold and
// truncation to topK happen inside SQL; the ordering from the database
// is authoritative.
func (r *ragRepo) Match(ctx context.Context, embedding []float32, threshold float64, topK int) ([]domain.RagMatch, error) {
	vec := pgvector.NewVector(embedding)

	var rows []ragRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT content, source, 1 - (embedding <=> $1) AS similarity
		 FROM rag_sections
		 WHERE 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("matching rag sections: %w", err)
	}

	matches := make([]domain.RagMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, domain.RagMatch{
			Content:    row.Content,
			Source:     row.Source,
			Similarity: row.Similarity,
		})
	}
	return matches, nil
}

// Insert stores one passage with its embedding.
func (r *ragRepo) Insert(ctx context.Context, content, source string, embedding []float32) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rag_sections (id, content, source, embedding)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New(), content, source, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("inserting rag section: %w", err)
	}
	return nil
}
