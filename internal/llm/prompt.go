package llm

import (
	"strings"
	"unicode/utf8"
)

// MaxPromptTextLen caps the document text embedded in the prompt so a long
// PDF text layer cannot blow the token budget.
const MaxPromptTextLen = 3000

// SystemPrompt pins the assistant role. The extraction language is Lithuanian
// because the field schema and the documents are.
const SystemPrompt = "Tu esi profesionalus sąskaitų faktūrų analizės asistentas. Pateik tik JSON formatą be papildomo teksto."

const schemaExample = `{
  "ar_dokumentas_yra_saskaita": "Taip",
  "serija_ir_numeris": "SF-2024-001",
  "isdavimo_data": "2024-01-15",
  "mokejimo_terminas": "2024-02-15",
  "kaina": "100.00",
  "pvm": "21.00",
  "bendra_kaina": "121.00",
  "pardavejas": {
    "pardavejo_imones_pavadinimas": "UAB Pavyzdys",
    "pardavejo_imones_kodas": "123456789",
    "pardavejo_pvm_identifikacijos_numeris": "LT123456789",
    "pardavejo_telefono_numeris": "+37060000000",
    "pardavejo_el_pastas": "info@pavyzdys.lt",
    "pardavejo_gatve": "Vilniaus g. 1",
    "pardavejo_miestas": "Vilnius",
    "pardavejo_salies_dvieju_raidziu_kodas": "LT",
    "pardavejo_pasto_kodas": "01234",
    "pardavejas_fizinis_asmuo": "Ne"
  },
  "pirkejas": {
    "pirkejo_imones_pavadinimas": "UAB Klientas",
    "pirkejo_imones_kodas": "987654321",
    "pirkejo_pvm_identifikacijos_numeris": "LT987654321",
    "pirkejo_gatve": "Kauno g. 2",
    "pirkejo_miestas": "Kaunas",
    "pirkejo_salies_dvieju_raidziu_kodas": "LT",
    "pirkejo_pasto_kodas": "44321",
    "pirkejas_fizinis_asmuo": "Ne"
  },
  "prekes": [
    {
      "kiekis": "1",
      "pavadinimas": "Paslaugos",
      "kaina": "100.00",
      "pvm": "21.00",
      "bendra_kaina": "121.00"
    }
  ]
}`

// BuildUserPrompt composes the fixed-structure extraction prompt. For PDFs the
// document text is embedded (truncated); for photos the image travels as an
// attachment and the prompt only points at it.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString("Išanalizuok šį lietuvišką sąskaitos faktūros dokumentą ir pateik informaciją JSON formatu.\n\n")

	if req.ImageDataURL != "" {
		b.WriteString("Dokumentas pateiktas kaip nuotrauka (prisegta).\n\n")
	} else {
		text := req.Text
		if len(text) > MaxPromptTextLen {
			text = cutAtRuneBoundary(text, MaxPromptTextLen) + "..."
		}
		b.WriteString("Dokumento tekstas: ")
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	b.WriteString("Pateik tiksliai tokią JSON struktūrą:\n")
	b.WriteString(schemaExample)
	b.WriteString("\n\nSVARBU: Jei informacijos nerandi, rašyk \"Nerasta\". Grąžink tik JSON formatą.")
	return b.String()
}

// cutAtRuneBoundary truncates s to at most n bytes without splitting a
// multi-byte rune. Lithuanian diacritics are two bytes each, so a plain byte
// slice could leave invalid UTF-8 in the prompt.
func cutAtRuneBoundary(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
