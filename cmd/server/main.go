package main

import (
	"context"
	"fmt"
	"log"

	"rentacheck/internal/config"
	"rentacheck/internal/engine"
	"rentacheck/internal/handler"
	"rentacheck/internal/model/openai"
	"rentacheck/internal/rag"
	"rentacheck/internal/repository/postgres"
	"rentacheck/internal/resolver"
	"rentacheck/internal/router"
	"rentacheck/internal/spreadsheet"
	s3storage "rentacheck/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(context.Background(), &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize collaborators
	modelClient := openai.NewClient(&cfg.Model)
	ragClient := rag.NewClient(modelClient, postgres.NewRagRepo(db), cfg.RAG)
	fileResolver := resolver.New(s3Client, &cfg.S3)
	extractor := spreadsheet.NewExtractor(nil)

	eng := engine.New(
		cfg.Engine,
		cfg.Model.ChatModel,
		modelClient,
		ragClient,
		fileResolver,
		extractor,
		cfg.S3.PresignExpiry,
	)

	// Initialize handlers
	analyzeH := handler.NewAnalyzeHandler(eng)
	ragH := handler.NewRagHandler(ragClient)
	fileH := handler.NewFileHandler(fileResolver)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(analyzeH, ragH, fileH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
