package ocr

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/saskaita/invoice-pipeline/internal/common"
)

// PDFTextExtractor pulls the text layer out of a PDF with pdftotext. Used for
// PDF uploads, which almost always carry machine text; photos go through the
// vision path instead.
type PDFTextExtractor struct {
	Pdftotext string
	runner    Runner
	logger    *slog.Logger
}

func NewPDFTextExtractor(pdftotext string, runner Runner, logger *slog.Logger) *PDFTextExtractor {
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFTextExtractor{Pdftotext: pdftotext, runner: runner, logger: logger}
}

// Extract returns the PDF's plain text. Failure is a conversion error; the
// caller must not feed raw PDF bytes anywhere downstream.
func (e *PDFTextExtractor) Extract(ctx context.Context, pdfData []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "inv-pdftext-*")
	if err != nil {
		return "", common.NewAppError("PDF_TEXT_FAILED", "could not process PDF", common.ErrConversion)
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	pdfPath := filepath.Join(tmpDir, uuid.New().String()+".pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return "", common.NewAppError("PDF_TEXT_FAILED", "could not process PDF", common.ErrConversion)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, _, err := e.runner.Run(ctx, e.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", pdfPath, "-")
	if err != nil {
		e.logger.Error("pdftext.failed", "error", err)
		return "", common.NewAppError("PDF_TEXT_FAILED", "could not process PDF", common.ErrConversion)
	}
	return string(out), nil
}
