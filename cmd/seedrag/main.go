// Command seedrag loads the normative corpus (DIAN resolutions, Estatuto
// Tributario excerpts, UVT tables) into the rag_sections table. It reads
// an Excel workbook with one passage per row, embeds each passage, and
// inserts it.
//
// Expected columns: A=content, B=source. The first row is treated as a
// header and skipped.
//
// Usage: go run ./cmd/seedrag corpus.xlsx
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"rentacheck/internal/config"
	"rentacheck/internal/model/openai"
	"rentacheck/internal/rag"
	"rentacheck/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		fmt.Println("Usage: seedrag <corpus.xlsx>")
		os.Exit(1)
	}
	xlsxPath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	indexer := rag.NewIndexer(openai.NewClient(&cfg.Model), postgres.NewRagIndexer(db))

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ctx := context.Background()
	total := 0
	skipped := 0
	start := time.Now()

	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return fmt.Errorf("read sheet %q: %w", sheetName, err)
		}

		for i := 1; i < len(rows); i++ {
			row := rows[i]
			content := strings.TrimSpace(cellVal(row, 0))
			source := strings.TrimSpace(cellVal(row, 1))
			if content == "" {
				skipped++
				continue
			}
			if source == "" {
				source = sheetName
			}

			if err := indexer.IndexPassage(ctx, content, source); err != nil {
				return fmt.Errorf("sheet %q row %d: %w", sheetName, i+1, err)
			}
			total++
			if total%50 == 0 {
				log.Printf("indexed %d passages...", total)
			}
		}
	}

	log.Printf("indexed %d passages (%d skipped) in %s", total, skipped, time.Since(start).Round(time.Second))
	return nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
