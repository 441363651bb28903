package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/saskaita/invoice-pipeline/internal/entity"
)

type stubDocs struct {
	docs []*entity.ProcessedDocument
}

func (s *stubDocs) Create(context.Context, *entity.ProcessedDocument) error { return nil }
func (s *stubDocs) GetByID(context.Context, string, uuid.UUID) (*entity.ProcessedDocument, error) {
	return nil, nil
}
func (s *stubDocs) List(context.Context, string) ([]*entity.ProcessedDocument, error) {
	return nil, nil
}
func (s *stubDocs) Delete(context.Context, string, uuid.UUID) error { return nil }
func (s *stubDocs) FindDuplicate(context.Context, string, string, string) (*entity.ProcessedDocument, error) {
	return nil, nil
}
func (s *stubDocs) ListConfirmedBetween(context.Context, string, *time.Time, *time.Time) ([]*entity.ProcessedDocument, error) {
	return s.docs, nil
}

func TestExportInvoicesXLSX(t *testing.T) {
	extracted := map[string]any{
		"ar_dokumentas_yra_saskaita": "Taip",
		"serija_ir_numeris":          "SF-2024-001",
		"isdavimo_data":              "2024-03-15",
		"kaina":                      "100.00",
		"pvm":                        "21.00",
		"bendra_kaina":               "121.00",
		"mokejimo_terminas":          "Nerasta",
		"pardavejas": map[string]any{
			"pardavejo_imones_pavadinimas":          "UAB Testas",
			"pardavejo_imones_kodas":                "123456789",
			"pardavejo_pvm_identifikacijos_numeris": "Nerasta",
		},
		"pirkejas": map[string]any{
			"pirkejo_imones_pavadinimas": "MB Pirkėjas",
		},
	}
	raw, err := json.Marshal(extracted)
	require.NoError(t, err)

	notInvoice, err := json.Marshal(map[string]any{
		"ar_dokumentas_yra_saskaita": "Nerasta",
		"serija_ir_numeris":          "KV-001",
	})
	require.NoError(t, err)

	svc := NewService(&stubDocs{docs: []*entity.ProcessedDocument{
		{ID: uuid.New(), UserID: "user-1", ExtractedData: raw, Status: "CONFIRMED"},
		{ID: uuid.New(), UserID: "user-1", ExtractedData: notInvoice, Status: "CONFIRMED"},
	}}, nil)

	data, err := svc.ExportInvoicesXLSX(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Sąskaitos")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Išrašymo data", rows[0][0])
	assert.Equal(t, "2024-03-15", rows[1][0])
	assert.Equal(t, "SF-2024-001", rows[1][1])
	assert.Equal(t, "UAB Testas", rows[1][2])
	assert.Equal(t, "123456789", rows[1][3])
	assert.Equal(t, "MB Pirkėjas", rows[1][5])
	assert.Equal(t, "121.00", rows[1][8])
	assert.Equal(t, "Taip", rows[1][9])

	// sentinel values export as blank cells
	if len(rows[1]) > 4 {
		assert.Empty(t, rows[1][4])
	}

	// the validity column classifies the free-text flag
	assert.Equal(t, "KV-001", rows[2][1])
	assert.Equal(t, "Ne", rows[2][9])
}

func TestExportSkipsUnparseableDocuments(t *testing.T) {
	svc := NewService(&stubDocs{docs: []*entity.ProcessedDocument{
		{ID: uuid.New(), ExtractedData: json.RawMessage(`not json`), Status: "CONFIRMED"},
	}}, nil)

	data, err := svc.ExportInvoicesXLSX(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Sąskaitos")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
