package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saskaita/invoice-pipeline/internal/common"
	"github.com/saskaita/invoice-pipeline/internal/export"
	"github.com/saskaita/invoice-pipeline/internal/llm/openai"
	"github.com/saskaita/invoice-pipeline/internal/ocr"
	"github.com/saskaita/invoice-pipeline/internal/pipeline"
	"github.com/saskaita/invoice-pipeline/internal/raster"
	"github.com/saskaita/invoice-pipeline/internal/repository"
	"github.com/saskaita/invoice-pipeline/internal/server"
	"github.com/saskaita/invoice-pipeline/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	if err := db.HealthCheck(ctx, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	runner := raster.ExecRunner{}
	normalizer := raster.NewNormalizer(raster.Config{
		Pdftoppm:     cfg.Raster.Pdftoppm,
		DPI:          cfg.Raster.DPI,
		MaxDimension: cfg.Raster.MaxDimension,
		JPEGQuality:  cfg.Raster.JPEGQuality,
	}, runner, logger)
	locator := ocr.NewLocator(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, runner, logger)
	pdfText := ocr.NewPDFTextExtractor(cfg.OCR.Pdftotext, runner, logger)
	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	store := storage.NewPublicStore(cfg.Storage.PublicDir, cfg.Storage.BaseURL, logger)

	// the OpenAI client serves both extraction and single-field location
	pipe := pipeline.New(extractor, extractor, normalizer, locator, pdfText, store, logger)
	docs := repository.NewDocumentRepository(db, logger)
	exporter := export.NewService(docs, logger)

	srv := server.New(pipe, docs, exporter, cfg.Storage.PublicDir, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
