package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/saskaita/invoice-pipeline/internal/common"
	"github.com/saskaita/invoice-pipeline/internal/llm/openai"
	"github.com/saskaita/invoice-pipeline/internal/ocr"
	"github.com/saskaita/invoice-pipeline/internal/pipeline"
	"github.com/saskaita/invoice-pipeline/internal/raster"
	"github.com/saskaita/invoice-pipeline/internal/storage"
)

// invoice-cli runs one document through the extraction pipeline and prints the
// Result JSON. Useful for prompt tuning and layout debugging without the
// server.
func main() {
	_ = godotenv.Load()

	var (
		filePath = flag.String("file", "", "path to the PDF or image to process")
		mimeType = flag.String("mime", "", "override the MIME type (default: by extension)")
		timeout  = flag.Duration("timeout", 2*time.Minute, "overall processing timeout")
		pretty   = flag.Bool("pretty", true, "indent the output JSON")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: invoice-cli -file <invoice.pdf|photo.jpg>")
		os.Exit(2)
	}
	data, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *filePath, err)
		os.Exit(1)
	}

	mt := *mimeType
	if mt == "" {
		mt = mime.TypeByExtension(filepath.Ext(*filePath))
	}

	cfg := common.LoadConfig()
	runner := raster.ExecRunner{}
	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	pipe := pipeline.New(
		client, client,
		raster.NewNormalizer(raster.Config{
			Pdftoppm:     cfg.Raster.Pdftoppm,
			DPI:          cfg.Raster.DPI,
			MaxDimension: cfg.Raster.MaxDimension,
			JPEGQuality:  cfg.Raster.JPEGQuality,
		}, runner, logger),
		ocr.NewLocator(ocr.Config{
			Tesseract:     cfg.OCR.Tesseract,
			TesseractLang: cfg.OCR.TesseractLang,
			TessdataDir:   cfg.OCR.TessdataDir,
		}, runner, logger),
		ocr.NewPDFTextExtractor(cfg.OCR.Pdftotext, runner, logger),
		storage.NewPublicStore(cfg.Storage.PublicDir, cfg.Storage.BaseURL, logger),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := pipe.Process(ctx, filepath.Base(*filePath), mt, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "processing failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
}
