package port

import (
	"context"

	"rentacheck/internal/domain"
)

// FileResolver turns opaque storage paths into time-limited fetch
// locations and normalizes image formats for model consumption.
type FileResolver interface {
	// ResolveReadable presigns every path. Paths that fail to presign
	// are returned with an empty URL rather than dropped.
	ResolveReadable(ctx context.Context, paths []string, ttlSeconds int64) ([]domain.ResolvedFile, error)

	// NormalizeImages converts images to a model-friendly format where
	// possible. Best-effort: on any failure the original path is kept.
	NormalizeImages(ctx context.Context, paths []string) []string
}
