package port

import (
	"context"

	"rentacheck/internal/domain"
)

// TabularExtractor pulls text and structure out of a spreadsheet at a
// fetchable URL. Callers treat every method as best-effort context
// enrichment: an error means "no data", never a failed request.
type TabularExtractor interface {
	// ExtractText renders sheets as comma-separated rows, truncated to
	// maxChars.
	ExtractText(ctx context.Context, url string, maxChars int) (string, error)

	// ExtractHTML renders sheets as HTML tables, movements sheets
	// first, truncated to maxChars.
	ExtractHTML(ctx context.Context, url string, maxChars int) (string, error)

	// SumNumericCells aggregates every numeric cell on movements-style
	// sheets.
	SumNumericCells(ctx context.Context, url string) (domain.MovimientosSummary, error)
}
