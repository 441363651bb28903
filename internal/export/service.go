package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/saskaita/invoice-pipeline/constants"
	"github.com/saskaita/invoice-pipeline/internal/llm"
	"github.com/saskaita/invoice-pipeline/internal/repository"
)

// Service is a tiny façade over the documents repository that produces XLSX
// bytes for the invoice register export.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportInvoicesXLSX returns an XLSX workbook (as bytes) with one row per
// confirmed document in the date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all confirmed documents for the user.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, userID string, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	docs, err := s.docs.ListConfirmedBetween(ctx, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Sąskaitos"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Išrašymo data",
		"Serija ir numeris",
		"Pardavėjas",
		"Pardavėjo kodas",
		"Pardavėjo PVM kodas",
		"Pirkėjas",
		"Suma be PVM",
		"PVM",
		"Bendra suma",
		"Ar sąskaita",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, d := range docs {
		var fields llm.InvoiceFields
		if err := json.Unmarshal(d.ExtractedData, &fields); err != nil {
			s.logger.Warn("export.skip_unparseable", "id", d.ID, "error", err)
			continue
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		sellerName, sellerCode, sellerVAT := "", "", ""
		if fields.Pardavejas != nil {
			sellerName = fields.Pardavejas.ImonesPavadinimas
			sellerCode = fields.Pardavejas.ImonesKodas
			sellerVAT = fields.Pardavejas.PVMKodas
		}
		buyerName := ""
		if fields.Pirkejas != nil {
			buyerName = fields.Pirkejas.ImonesPavadinimas
		}

		write(1, blankSentinel(fields.IsdavimoData))
		write(2, blankSentinel(fields.SerijaIrNumeris))
		write(3, blankSentinel(sellerName))
		write(4, blankSentinel(sellerCode))
		write(5, blankSentinel(sellerVAT))
		write(6, blankSentinel(buyerName))
		write(7, blankSentinel(fields.Kaina))
		write(8, blankSentinel(fields.PVM))
		write(9, blankSentinel(fields.BendraKaina))
		validity := "Taip"
		if constants.IsNegativeInvoiceFlag(fields.ArDokumentasYraSaskaita) {
			validity = "Ne"
		}
		write(10, validity)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 22) // series/number
	_ = f.SetColWidth(sheet, "C", "C", 34) // seller
	_ = f.SetColWidth(sheet, "D", "E", 18) // codes
	_ = f.SetColWidth(sheet, "F", "F", 34) // buyer
	_ = f.SetColWidth(sheet, "G", "I", 14) // amounts
	_ = f.SetColWidth(sheet, "J", "J", 12) // validity flag

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID,
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// blankSentinel keeps "Nerasta" out of the register; an empty cell reads
// better in a spreadsheet.
func blankSentinel(v string) string {
	if v == constants.NotFoundSentinel {
		return ""
	}
	return v
}
