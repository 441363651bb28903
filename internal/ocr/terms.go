package ocr

import (
	"strings"

	"github.com/saskaita/invoice-pipeline/constants"
	"github.com/saskaita/invoice-pipeline/internal/llm"
)

// HarvestSearchTerms collects the distinct extracted values worth locating on
// the page: invoice-level fields first, then seller, buyer, and the first
// three line items (name and row total). The sentinel is excluded explicitly
// (it is a non-empty string and would pass the length filter) and duplicates
// keep their first position so bucket stepping stays deterministic.
func HarvestSearchTerms(fields llm.InvoiceFields) []string {
	var candidates []string

	candidates = append(candidates,
		fields.SerijaIrNumeris,
		fields.BendraKaina,
		fields.IsdavimoData,
		fields.MokejimoTerminas,
	)

	if fields.Pardavejas != nil {
		candidates = append(candidates, fields.Pardavejas.ImonesPavadinimas, fields.Pardavejas.ImonesKodas)
	}
	if fields.Pirkejas != nil {
		candidates = append(candidates, fields.Pirkejas.ImonesPavadinimas, fields.Pirkejas.ImonesKodas)
	}

	items := fields.Prekes
	if len(items) > 3 {
		items = items[:3]
	}
	for _, item := range items {
		candidates = append(candidates, item.Pavadinimas, item.BendraKaina)
	}

	seen := make(map[string]struct{}, len(candidates))
	terms := make([]string, 0, len(candidates))
	for _, c := range candidates {
		t := strings.TrimSpace(c)
		if len([]rune(t)) <= 2 {
			continue
		}
		if t == constants.NotFoundSentinel {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}
