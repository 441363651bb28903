package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/saskaita/invoice-pipeline/constants"
	"github.com/saskaita/invoice-pipeline/internal/common"
)

// Config for the raster normalizer.
type Config struct {
	Pdftoppm     string // binary name or absolute path; if empty -> "pdftoppm"
	DPI          int    // rasterization DPI for PDFs, default 200
	MaxDimension int    // bound on the longest side, default 1200
	JPEGQuality  int    // default 80
}

// Normalizer turns an uploaded document (PDF or image) into a compressed,
// bounded-resolution JPEG suitable for storage and OCR. Output is always JPEG
// and never larger than the input.
type Normalizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewNormalizer(cfg Config, runner Runner, logger *slog.Logger) *Normalizer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = 1200
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = 80
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{cfg: cfg, runner: runner, logger: logger}
}

// Normalize converts data to a compressed JPEG. PDFs are rendered first page
// only; images are decoded directly. Any other mime type is rejected before
// work starts.
func (n *Normalizer) Normalize(ctx context.Context, data []byte, mimeType string) ([]byte, error) {
	switch constants.MapMIMEToFormat(mimeType) {
	case constants.PDF:
		img, err := n.renderFirstPage(ctx, data)
		if err != nil {
			n.logger.Error("raster.pdf_failed", "error", err)
			return nil, common.NewAppError("PDF_CONVERSION_FAILED", "could not convert PDF to image", common.ErrConversion)
		}
		return n.encode(img)
	case constants.IMAGE:
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			n.logger.Error("raster.decode_failed", "error", err)
			return nil, common.NewAppError("IMAGE_DECODE_FAILED", "could not decode image", common.ErrConversion)
		}
		return n.encode(img)
	default:
		return nil, common.NewAppError("UNSUPPORTED_FILE_TYPE", fmt.Sprintf("unsupported file type: %s", mimeType), common.ErrInvalidInput)
	}
}

// renderFirstPage writes the PDF to a per-invocation temp dir, rasterizes page
// one with pdftoppm, and reads the rendered JPEG back. The temp dir is removed
// on every path.
func (n *Normalizer) renderFirstPage(ctx context.Context, data []byte) (image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "inv-raster-*")
	if err != nil {
		return nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			n.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	pdfPath := filepath.Join(tmpDir, uuid.New().String()+".pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 200 -jpeg -f 1 -l 1 -scale-to-x 1200 -scale-to-y 1600 -singlefile <in.pdf> <prefix>
	_, errb, err := n.runner.Run(ctx, n.cfg.Pdftoppm,
		"-r", strconv.Itoa(n.cfg.DPI),
		"-jpeg",
		"-f", "1", "-l", "1",
		"-scale-to-x", strconv.Itoa(n.cfg.MaxDimension),
		"-scale-to-y", strconv.Itoa(n.cfg.MaxDimension*4/3),
		"-singlefile",
		pdfPath, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	rendered, err := os.ReadFile(prefix + ".jpg")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no page: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}

// encode bounds the longest side (never enlarging) and re-encodes as JPEG.
func (n *Normalizer) encode(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() > n.cfg.MaxDimension || b.Dy() > n.cfg.MaxDimension {
		img = imaging.Fit(img, n.cfg.MaxDimension, n.cfg.MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.cfg.JPEGQuality)); err != nil {
		n.logger.Error("raster.encode_failed", "error", err)
		return nil, common.NewAppError("JPEG_ENCODE_FAILED", "could not encode JPEG", common.ErrConversion)
	}
	return buf.Bytes(), nil
}
