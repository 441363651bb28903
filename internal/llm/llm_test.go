package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillMissingFillsEveryLeaf(t *testing.T) {
	f := InvoiceFields{
		SerijaIrNumeris: "SF-001",
		Prekes:          []LineItem{{Pavadinimas: "Paslauga"}},
	}
	FillMissing(&f)

	assert.Equal(t, "SF-001", f.SerijaIrNumeris)
	assert.Equal(t, "Nerasta", f.ArDokumentasYraSaskaita)
	assert.Equal(t, "Nerasta", f.BendraKaina)

	require.NotNil(t, f.Pardavejas)
	assert.Equal(t, "Nerasta", f.Pardavejas.ImonesPavadinimas)
	require.NotNil(t, f.Pirkejas)
	assert.Equal(t, "Nerasta", f.Pirkejas.PastoKodas)

	assert.Equal(t, "Paslauga", f.Prekes[0].Pavadinimas)
	assert.Equal(t, "Nerasta", f.Prekes[0].Kiekis)
	assert.Equal(t, "Nerasta", f.Prekes[0].BendraKaina)
}

func TestFillMissingTreatsWhitespaceAsBlank(t *testing.T) {
	f := InvoiceFields{Kaina: "   "}
	FillMissing(&f)
	assert.Equal(t, "Nerasta", f.Kaina)
}

func TestBuildUserPromptTextVariant(t *testing.T) {
	p := BuildUserPrompt(ExtractRequest{Text: "Sąskaita faktūra"})

	assert.Contains(t, p, "Dokumento tekstas: Sąskaita faktūra")
	assert.Contains(t, p, `"serija_ir_numeris": "SF-2024-001"`)
	assert.Contains(t, p, `SVARBU: Jei informacijos nerandi, rašyk "Nerasta". Grąžink tik JSON formatą.`)
	assert.NotContains(t, p, "nuotrauka")
}

func TestBuildUserPromptTruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", MaxPromptTextLen+500)
	p := BuildUserPrompt(ExtractRequest{Text: long})

	assert.Contains(t, p, strings.Repeat("a", MaxPromptTextLen)+"...")
	assert.NotContains(t, p, strings.Repeat("a", MaxPromptTextLen+1))
}

func TestBuildUserPromptTruncationKeepsValidUTF8(t *testing.T) {
	// a two-byte rune straddles the byte limit; the cut must back up
	long := strings.Repeat("a", MaxPromptTextLen-1) + strings.Repeat("ą", 10)
	p := BuildUserPrompt(ExtractRequest{Text: long})

	assert.True(t, utf8.ValidString(p))
	assert.Contains(t, p, strings.Repeat("a", MaxPromptTextLen-1)+"...")
}

func TestBuildUserPromptImageVariant(t *testing.T) {
	p := BuildUserPrompt(ExtractRequest{ImageDataURL: "data:image/jpeg;base64,xx"})

	assert.Contains(t, p, "Dokumentas pateiktas kaip nuotrauka (prisegta).")
	assert.NotContains(t, p, "Dokumento tekstas")
	// the data URL itself travels as an attachment, never in the prompt text
	assert.NotContains(t, p, "base64")
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildInvoiceJSONSchema()

	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"serija_ir_numeris": "SF-001"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"serija_ir_numeris": 42}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"prekes": [{"kiekis": 1}]}`)))
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"prekes": [{"kiekis": "1"}]}`)))
}
