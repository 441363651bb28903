package llm

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// invoice object as a generic map. The schema constrains types only (every
// leaf must be a string) and leaves presence to the sentinel-fill step, so a
// model that omits a field is tolerated while one that returns numbers or
// nested garbage is rejected as structurally invalid.
func BuildInvoiceJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}

	sellerProps := map[string]any{
		"pardavejo_imones_pavadinimas":          str,
		"pardavejo_imones_kodas":                str,
		"pardavejo_pvm_identifikacijos_numeris": str,
		"pardavejo_telefono_numeris":            str,
		"pardavejo_el_pastas":                   str,
		"pardavejo_gatve":                       str,
		"pardavejo_miestas":                     str,
		"pardavejo_salies_dvieju_raidziu_kodas": str,
		"pardavejo_pasto_kodas":                 str,
		"pardavejas_fizinis_asmuo":              str,
	}
	buyerProps := map[string]any{
		"pirkejo_imones_pavadinimas":          str,
		"pirkejo_imones_kodas":                str,
		"pirkejo_pvm_identifikacijos_numeris": str,
		"pirkejo_gatve":                       str,
		"pirkejo_miestas":                     str,
		"pirkejo_salies_dvieju_raidziu_kodas": str,
		"pirkejo_pasto_kodas":                 str,
		"pirkejas_fizinis_asmuo":              str,
	}
	itemProps := map[string]any{
		"kiekis":       str,
		"pavadinimas":  str,
		"kaina":        str,
		"pvm":          str,
		"bendra_kaina": str,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ar_dokumentas_yra_saskaita": str,
			"serija_ir_numeris":          str,
			"isdavimo_data":              str,
			"mokejimo_terminas":          str,
			"kaina":                      str,
			"pvm":                        str,
			"bendra_kaina":               str,
			"pardavejas": map[string]any{
				"type":       "object",
				"properties": sellerProps,
			},
			"pirkejas": map[string]any{
				"type":       "object",
				"properties": buyerProps,
			},
			"prekes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": itemProps,
				},
			},
		},
	}
}
