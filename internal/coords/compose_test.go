package coords

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saskaita/invoice-pipeline/internal/llm"
)

func TestComposeAlwaysCoversEveryFlatField(t *testing.T) {
	out := Compose(llm.InvoiceFields{}, nil)

	require.Len(t, out, 21)
	for _, key := range FlatFieldKeys() {
		assert.Contains(t, out, key, "missing %s", key)
	}
}

func TestComposeDocumentFlagAlwaysFixed(t *testing.T) {
	ocrMap := map[string]Box{
		"Taip": {X: 50, Y: 50, Width: 10, Height: 10},
	}
	out := Compose(llm.InvoiceFields{ArDokumentasYraSaskaita: "Taip"}, ocrMap)
	assert.Equal(t, Box{X: 2, Y: 2, Width: 25, Height: 4}, out["ar_dokumentas_yra_saskaita"])
}

func TestComposePrefersOCRBoxByValue(t *testing.T) {
	fields := llm.InvoiceFields{
		SerijaIrNumeris: "SF-2024-001",
		BendraKaina:     "121.00",
	}
	ocrMap := map[string]Box{
		"SF-2024-001": {X: 65, Y: 8, Width: 25, Height: 3},
	}
	out := Compose(fields, ocrMap)

	assert.Equal(t, Box{X: 65, Y: 8, Width: 25, Height: 3}, out["serija_ir_numeris"])
	// value not in the OCR map falls back to the static layout
	assert.Equal(t, Box{X: 65, Y: 80, Width: 30, Height: 5}, out["bendra_kaina"])
}

func TestComposeTrimsValueBeforeLookup(t *testing.T) {
	// harvested terms are stored trimmed; a padded extracted value must
	// still find its located box
	fields := llm.InvoiceFields{
		SerijaIrNumeris: "  SF-2024-001  ",
		Prekes: []llm.LineItem{
			{Pavadinimas: " Konsultacija ", BendraKaina: " 121.00 "},
		},
	}
	ocrMap := map[string]Box{
		"SF-2024-001":  {X: 65, Y: 8, Width: 25, Height: 3},
		"Konsultacija": {X: 12, Y: 60, Width: 20, Height: 3},
		"121.00":       {X: 80, Y: 60, Width: 12, Height: 3},
	}
	out := Compose(fields, ocrMap)

	assert.Equal(t, Box{X: 65, Y: 8, Width: 25, Height: 3}, out["serija_ir_numeris"])
	assert.Equal(t, Box{X: 12, Y: 60, Width: 20, Height: 3}, out["item_0_pavadinimas"])
	assert.Equal(t, Box{X: 80, Y: 60, Width: 12, Height: 3}, out["item_0_bendra_kaina"])
}

func TestComposeNilBlocksFallBack(t *testing.T) {
	out := Compose(llm.InvoiceFields{}, map[string]Box{})
	assert.Equal(t, Box{X: 5, Y: 22, Width: 40, Height: 4}, out["pardavejo_imones_pavadinimas"])
	assert.Equal(t, Box{X: 50, Y: 22, Width: 45, Height: 4}, out["pirkejo_imones_pavadinimas"])
}

func TestComposeItemRowsStepDown(t *testing.T) {
	fields := llm.InvoiceFields{
		Prekes: []llm.LineItem{
			{Pavadinimas: "Konsultacija", Kiekis: "1", Kaina: "100.00", BendraKaina: "121.00"},
			{Pavadinimas: "Priežiūra", Kiekis: "2", Kaina: "50.00", BendraKaina: "100.00"},
			{Pavadinimas: "Nuoma", Kiekis: "1", Kaina: "30.00", BendraKaina: "36.30"},
		},
	}
	out := Compose(fields, nil)

	require.Len(t, out, 21+4*3)
	for i := 0; i < 3; i++ {
		baseY := float64(58 + i*6)
		assert.Equal(t, Box{X: 5, Y: baseY, Width: 45, Height: 4}, out[fmt.Sprintf("item_%d_pavadinimas", i)])
		assert.Equal(t, Box{X: 52, Y: baseY, Width: 10, Height: 4}, out[fmt.Sprintf("item_%d_kiekis", i)])
		assert.Equal(t, Box{X: 64, Y: baseY, Width: 15, Height: 4}, out[fmt.Sprintf("item_%d_kaina", i)])
		assert.Equal(t, Box{X: 81, Y: baseY, Width: 17, Height: 4}, out[fmt.Sprintf("item_%d_bendra_kaina", i)])
	}
}

func TestComposeItemNameAndTotalUseOCRWhenLocated(t *testing.T) {
	fields := llm.InvoiceFields{
		Prekes: []llm.LineItem{
			{Pavadinimas: "Konsultacija", Kiekis: "1", Kaina: "100.00", BendraKaina: "121.00"},
		},
	}
	ocrMap := map[string]Box{
		"Konsultacija": {X: 12, Y: 60, Width: 20, Height: 3},
		"121.00":       {X: 80, Y: 60, Width: 12, Height: 3},
		"100.00":       {X: 60, Y: 60, Width: 12, Height: 3},
	}
	out := Compose(fields, ocrMap)

	assert.Equal(t, Box{X: 12, Y: 60, Width: 20, Height: 3}, out["item_0_pavadinimas"])
	assert.Equal(t, Box{X: 80, Y: 60, Width: 12, Height: 3}, out["item_0_bendra_kaina"])
	// quantity and unit price columns never follow OCR
	assert.Equal(t, Box{X: 52, Y: 58, Width: 10, Height: 4}, out["item_0_kiekis"])
	assert.Equal(t, Box{X: 64, Y: 58, Width: 15, Height: 4}, out["item_0_kaina"])
}
