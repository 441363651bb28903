package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saskaita/invoice-pipeline/internal/llm"
)

func TestHarvestSearchTermsOrderAndFilters(t *testing.T) {
	fields := llm.InvoiceFields{
		SerijaIrNumeris:  "SF-2024-001",
		BendraKaina:      "121.00",
		IsdavimoData:     "2024-03-15",
		MokejimoTerminas: "Nerasta",
		Pardavejas: &llm.SellerInfo{
			ImonesPavadinimas: "UAB Testas",
			ImonesKodas:       "123456789",
		},
		Pirkejas: &llm.BuyerInfo{
			ImonesPavadinimas: "MB Pirkėjas",
			ImonesKodas:       "Nerasta",
		},
		Prekes: []llm.LineItem{
			{Pavadinimas: "Konsultacija", BendraKaina: "100.00"},
			{Pavadinimas: "PVM", BendraKaina: "21.00"},
		},
	}

	terms := HarvestSearchTerms(fields)
	assert.Equal(t, []string{
		"SF-2024-001",
		"121.00",
		"2024-03-15",
		"UAB Testas",
		"123456789",
		"MB Pirkėjas",
		"Konsultacija",
		"100.00",
		"PVM",
		"21.00",
	}, terms)
}

func TestHarvestSearchTermsExcludesSentinelAndShort(t *testing.T) {
	fields := llm.InvoiceFields{
		SerijaIrNumeris: "Nerasta",
		BendraKaina:     "ab",
		IsdavimoData:    "  ",
	}
	assert.Empty(t, HarvestSearchTerms(fields))
}

func TestHarvestSearchTermsDeduplicatesKeepingFirst(t *testing.T) {
	fields := llm.InvoiceFields{
		SerijaIrNumeris: "121.00",
		BendraKaina:     "121.00",
		IsdavimoData:    "2024-03-15",
	}
	terms := HarvestSearchTerms(fields)
	assert.Equal(t, []string{"121.00", "2024-03-15"}, terms)
}

func TestHarvestSearchTermsLimitsItemsToThree(t *testing.T) {
	fields := llm.InvoiceFields{
		Prekes: []llm.LineItem{
			{Pavadinimas: "Prekė viena", BendraKaina: "10.00"},
			{Pavadinimas: "Prekė dvi", BendraKaina: "20.00"},
			{Pavadinimas: "Prekė trys", BendraKaina: "30.00"},
			{Pavadinimas: "Prekė keturi", BendraKaina: "40.00"},
		},
	}
	terms := HarvestSearchTerms(fields)
	assert.Len(t, terms, 6)
	assert.NotContains(t, terms, "Prekė keturi")
	assert.NotContains(t, terms, "40.00")
}

func TestHarvestSearchTermsTrimsWhitespace(t *testing.T) {
	fields := llm.InvoiceFields{SerijaIrNumeris: "  SF-001  "}
	assert.Equal(t, []string{"SF-001"}, HarvestSearchTerms(fields))
}
