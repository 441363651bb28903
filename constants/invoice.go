package constants

import "strings"

// NotFoundSentinel is the literal value the extraction model writes for fields
// it could not locate. Downstream comparisons (duplicate advisory, validity
// flag, term harvesting) are written against this exact string, so it stays a
// string constant rather than a nullable type.
const NotFoundSentinel = "Nerasta"

// AffirmativeInvoiceFlag is what the model answers when the document is an
// invoice.
const AffirmativeInvoiceFlag = "Taip"

// DocStatusConfirmed marks documents the user has reviewed and saved.
const DocStatusConfirmed = "CONFIRMED"

// negativeInvoiceFlags are the exact tokens (lowercased, trimmed) that mark a
// document as "not an invoice". The model answers in free text, so the set
// spans Lithuanian and English spellings of no/false/not-found.
var negativeInvoiceFlags = map[string]struct{}{
	"nerasta":   {},
	"ne":        {},
	"false":     {},
	"no":        {},
	"not found": {},
	"nėra":      {},
	"nera":      {},
}

// IsNegativeInvoiceFlag reports whether the free-text "is this an invoice"
// value classifies the document as not a valid invoice. An empty value means
// the document was not classified yet and is treated as valid.
func IsNegativeInvoiceFlag(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return false
	}
	if _, ok := negativeInvoiceFlags[v]; ok {
		return true
	}
	return strings.Contains(v, "nerasta") || strings.Contains(v, "not found")
}
