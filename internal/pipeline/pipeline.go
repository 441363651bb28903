package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/saskaita/invoice-pipeline/constants"
	"github.com/saskaita/invoice-pipeline/internal/common"
	"github.com/saskaita/invoice-pipeline/internal/coords"
	"github.com/saskaita/invoice-pipeline/internal/llm"
	"github.com/saskaita/invoice-pipeline/internal/ocr"
	"github.com/saskaita/invoice-pipeline/internal/storage"
)

// Normalizer produces the compressed raster of an upload.
type Normalizer interface {
	Normalize(ctx context.Context, data []byte, mimeType string) ([]byte, error)
}

// Locator assigns every search term a box over the raster.
type Locator interface {
	Locate(ctx context.Context, rasterJPEG []byte, terms []string) (string, map[string]coords.Box)
}

// PDFTextExtractor pulls the machine text layer out of a PDF.
type PDFTextExtractor interface {
	Extract(ctx context.Context, pdfData []byte) (string, error)
}

// OriginalFile echoes the upload back to the review UI as an inline data URL
// so the document renders without a second fetch.
type OriginalFile struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	DataURL string `json:"dataUrl"`
}

// Result is the full extraction outcome for one document.
type Result struct {
	Success       bool                  `json:"success"`
	Data          llm.InvoiceFields     `json:"data"`
	Coordinates   map[string]coords.Box `json:"coordinates"`
	OriginalFile  OriginalFile          `json:"originalFile"`
	CompressedURL string                `json:"compressedUrl"`
}

// UpstreamParseError carries a short excerpt of the model's raw output so the
// caller can show what could not be parsed.
type UpstreamParseError struct {
	RawExcerpt string
	Err        error
}

func (e *UpstreamParseError) Error() string {
	return "Nepavyko apdoroti AI atsakymo"
}

func (e *UpstreamParseError) Unwrap() error { return e.Err }

const rawExcerptLimit = 200

// Pipeline wires the five stages together. It persists nothing to the
// database; confirmation is a separate user action.
type Pipeline struct {
	extractor    llm.FieldExtractor
	fieldLocator llm.FieldLocator
	normalizer   Normalizer
	locator      Locator
	pdfText      PDFTextExtractor
	store        storage.Store
	logger       *slog.Logger
}

func New(extractor llm.FieldExtractor, fieldLocator llm.FieldLocator, normalizer Normalizer, locator Locator, pdfText PDFTextExtractor, store storage.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor:    extractor,
		fieldLocator: fieldLocator,
		normalizer:   normalizer,
		locator:      locator,
		pdfText:      pdfText,
		store:        store,
		logger:       logger,
	}
}

// Process runs one upload through extraction, normalization, OCR location and
// coordinate composition. Invalid input, conversion failures and unparseable
// model output surface as errors; OCR and storage failures degrade in place
// and the result still succeeds.
func (p *Pipeline) Process(ctx context.Context, fileName, mimeType string, data []byte) (*Result, error) {
	start := time.Now()
	format := constants.MapMIMEToFormat(mimeType)
	if format == "" {
		return nil, common.NewAppError("UNSUPPORTED_FILE_TYPE",
			"Nepalaikomas failo tipas. Palaikomi PDF ir nuotraukų failai.", common.ErrInvalidInput)
	}
	p.logger.Info("pipeline.start", "file", fileName, "mime", mimeType, "bytes", len(data))

	// Normalization runs first: an undecodable upload fails before any
	// inference spend, and the model only ever sees the bounded raster.
	compressed, err := p.normalizer.Normalize(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	req := llm.ExtractRequest{FileName: fileName}
	switch format {
	case constants.PDF:
		text, err := p.pdfText.Extract(ctx, data)
		if err != nil {
			return nil, common.NewAppError("PDF_TEXT_FAILED",
				"Nepavyko apdoroti PDF failo", common.ErrConversion)
		}
		if strings.TrimSpace(text) == "" {
			return nil, common.NewAppError("EMPTY_TEXT",
				"Nepavyko ištraukti teksto iš failo", common.ErrInvalidInput)
		}
		req.Text = text
	case constants.IMAGE:
		// One multimodal call reads the compressed raster directly; no
		// intermediate OCR text pass for images.
		req.ImageDataURL = storage.DataURL(compressed, "image/jpeg")
	}

	fields, raw, err := p.extractor.ExtractFields(ctx, req)
	if err != nil {
		if errors.Is(err, common.ErrUpstreamParse) {
			return nil, &UpstreamParseError{RawExcerpt: excerpt(raw), Err: err}
		}
		return nil, err
	}

	compressedURL := p.storeCompressed(ctx, fileName, format, compressed)
	if format == constants.PDF {
		p.storeOriginal(ctx, fileName, data)
	}

	terms := ocr.HarvestSearchTerms(fields)
	_, ocrBoxes := p.locator.Locate(ctx, compressed, terms)
	boxes := coords.Compose(fields, ocrBoxes)

	p.logger.Info("pipeline.ok",
		"file", fileName,
		"terms", len(terms),
		"boxes", len(boxes),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &Result{
		Success:     true,
		Data:        fields,
		Coordinates: boxes,
		OriginalFile: OriginalFile{
			Name:    fileName,
			Type:    mimeType,
			DataURL: storage.DataURL(data, mimeType),
		},
		CompressedURL: compressedURL,
	}, nil
}

// LocateField re-locates one reviewed field with a dedicated vision call over
// the normalized raster. Works for PDFs too: the first page is rasterized the
// same way as in Process.
func (p *Pipeline) LocateField(ctx context.Context, fileName, mimeType string, data []byte, fieldName, fieldValue string) (llm.FieldBox, error) {
	if constants.MapMIMEToFormat(mimeType) == "" {
		return llm.FieldBox{}, common.NewAppError("UNSUPPORTED_FILE_TYPE",
			"Nepalaikomas failo tipas. Palaikomi PDF ir nuotraukų failai.", common.ErrInvalidInput)
	}

	compressed, err := p.normalizer.Normalize(ctx, data, mimeType)
	if err != nil {
		return llm.FieldBox{}, err
	}

	box, err := p.fieldLocator.LocateFieldBox(ctx, llm.LocateRequest{
		ImageDataURL: storage.DataURL(compressed, "image/jpeg"),
		FieldName:    fieldName,
		FieldValue:   fieldValue,
		FileName:     fileName,
	})
	if err != nil {
		return llm.FieldBox{}, err
	}
	p.logger.Info("pipeline.locate_field.ok", "file", fileName, "field", fieldName)
	return box, nil
}

// storeCompressed saves the normalized JPEG. Storage failure is a degradation:
// the JPEG is inlined as a data URL and processing continues.
func (p *Pipeline) storeCompressed(ctx context.Context, fileName string, format constants.Format, compressed []byte) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	name := base + ".jpg"
	if format == constants.PDF {
		name = base + "_converted.jpg"
	}
	url, err := p.store.Save(ctx, compressed, name, "uploads")
	if err != nil {
		p.logger.Warn("storage.degraded", "file", name, "error", err)
		return storage.DataURL(compressed, "image/jpeg")
	}
	return url
}

// storeOriginal keeps the source PDF next to its raster, best effort.
func (p *Pipeline) storeOriginal(ctx context.Context, fileName string, data []byte) {
	if _, err := p.store.Save(ctx, data, filepath.Base(fileName), "uploads"); err != nil {
		p.logger.Warn("storage.degraded", "file", fileName, "error", err)
	}
}

// excerpt cuts the raw model output for diagnostics, backing up to a rune
// boundary so Lithuanian text never gets split into invalid UTF-8.
func excerpt(raw []byte) string {
	if len(raw) <= rawExcerptLimit {
		return string(raw)
	}
	cut := rawExcerptLimit
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return string(raw[:cut])
}
