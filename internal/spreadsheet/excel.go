// Package spreadsheet extracts model-ready context out of exógena
// workbooks. Everything here is best-effort enrichment: callers degrade
// errors to empty segments.
package spreadsheet

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"rentacheck/internal/domain"
)

// Workbooks can carry dozens of sheets; only the first few matter for
// the decision context.
const maxSheets = 5

var movSheetRe = regexp.MustCompile(`(?i)mov`)
var nonNumericRe = regexp.MustCompile(`[^\d.\-]`)

// Extractor implements port.TabularExtractor by fetching the workbook
// over HTTP and reading it with excelize.
type Extractor struct {
	client *http.Client
}

// NewExtractor creates an Extractor. A nil client gets a default with a
// 30s timeout.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Extractor{client: client}
}

// ExtractText renders up to maxSheets sheets as comma-separated rows,
// truncated to maxChars.
func (e *Extractor) ExtractText(ctx context.Context, url string, maxChars int) (string, error) {
	f, err := e.open(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, name := range limitSheets(f.GetSheetList(), maxSheets) {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		b.WriteString("\n# Hoja: " + name + "\n")
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			b.WriteString(strings.Join(row, ","))
			b.WriteByte('\n')
		}
		if b.Len() > maxChars {
			break
		}
	}
	return truncate(b.String(), maxChars), nil
}

// ExtractHTML renders sheets as HTML tables, movements sheets first so
// their structure survives truncation, truncated to maxChars.
func (e *Extractor) ExtractHTML(ctx context.Context, url string, maxChars int) (string, error) {
	f, err := e.open(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	sheets := append([]string(nil), f.GetSheetList()...)
	sort.SliceStable(sheets, func(i, j int) bool {
		return movSheetRe.MatchString(sheets[i]) && !movSheetRe.MatchString(sheets[j])
	})

	var b strings.Builder
	for _, name := range limitSheets(sheets, maxSheets) {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		b.WriteString("\n<!-- Hoja: " + name + " -->\n<table>\n")
		for _, row := range rows {
			b.WriteString("<tr>")
			for _, cell := range row {
				b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</table>\n")
		if b.Len() > maxChars {
			break
		}
	}
	return truncate(b.String(), maxChars), nil
}

// SumNumericCells aggregates every numeric cell across sheets whose
// name mentions movements. String cells are coerced after stripping
// currency formatting.
func (e *Extractor) SumNumericCells(ctx context.Context, url string) (domain.MovimientosSummary, error) {
	f, err := e.open(ctx, url)
	if err != nil {
		return domain.MovimientosSummary{}, err
	}
	defer func() { _ = f.Close() }()

	var summary domain.MovimientosSummary
	for _, name := range f.GetSheetList() {
		if !movSheetRe.MatchString(name) {
			continue
		}
		summary.SheetName = name
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, cell := range row {
				cleaned := nonNumericRe.ReplaceAllString(cell, "")
				if cleaned == "" || cleaned == "-" || cleaned == "." {
					continue
				}
				if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
					summary.SumCOP += v
				}
			}
		}
	}
	return summary, nil
}

func (e *Extractor) open(ctx context.Context, url string) (*excelize.File, error) {
	if url == "" {
		return nil, fmt.Errorf("empty workbook url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching workbook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching workbook: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading workbook body: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return f, nil
}

func limitSheets(sheets []string, n int) []string {
	if len(sheets) > n {
		return sheets[:n]
	}
	return sheets
}

// truncate cuts s to at most maxChars bytes without splitting a UTF-8
// sequence.
func truncate(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
