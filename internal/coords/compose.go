package coords

import (
	"fmt"
	"strings"

	"github.com/saskaita/invoice-pipeline/internal/llm"
)

// fallbackLayout is the hand-tuned layout of a typical Lithuanian invoice:
// document info in the header, seller block upper-left, buyer block
// upper-right, totals lower-right. Used whenever OCR located nothing for a
// field's value. The review UI is keyed to these exact boxes.
var fallbackLayout = map[string]Box{
	"ar_dokumentas_yra_saskaita": {X: 2, Y: 2, Width: 25, Height: 4},
	"serija_ir_numeris":          {X: 70, Y: 5, Width: 28, Height: 4},
	"isdavimo_data":              {X: 70, Y: 10, Width: 25, Height: 4},
	"mokejimo_terminas":          {X: 70, Y: 15, Width: 25, Height: 4},
	"kaina":                      {X: 65, Y: 70, Width: 20, Height: 4},
	"pvm":                        {X: 65, Y: 75, Width: 20, Height: 4},
	"bendra_kaina":               {X: 65, Y: 80, Width: 30, Height: 5},

	"pardavejo_imones_pavadinimas":          {X: 5, Y: 22, Width: 40, Height: 4},
	"pardavejo_imones_kodas":                {X: 5, Y: 27, Width: 30, Height: 4},
	"pardavejo_pvm_identifikacijos_numeris": {X: 5, Y: 32, Width: 35, Height: 4},
	"pardavejo_telefono_numeris":            {X: 5, Y: 37, Width: 30, Height: 4},
	"pardavejo_el_pastas":                   {X: 5, Y: 42, Width: 35, Height: 4},
	"pardavejo_gatve":                       {X: 5, Y: 47, Width: 35, Height: 4},
	"pardavejo_miestas":                     {X: 5, Y: 52, Width: 25, Height: 4},
	"pardavejo_pasto_kodas":                 {X: 32, Y: 52, Width: 15, Height: 4},

	"pirkejo_imones_pavadinimas":          {X: 50, Y: 22, Width: 45, Height: 4},
	"pirkejo_imones_kodas":                {X: 50, Y: 27, Width: 30, Height: 4},
	"pirkejo_pvm_identifikacijos_numeris": {X: 50, Y: 32, Width: 35, Height: 4},
	"pirkejo_gatve":                       {X: 50, Y: 37, Width: 35, Height: 4},
	"pirkejo_miestas":                     {X: 50, Y: 42, Width: 25, Height: 4},
	"pirkejo_pasto_kodas":                 {X: 77, Y: 42, Width: 15, Height: 4},
}

// FlatFieldKeys returns the non-item field keys every composed map contains.
func FlatFieldKeys() []string {
	keys := make([]string, 0, len(fallbackLayout))
	for k := range fallbackLayout {
		keys = append(keys, k)
	}
	return keys
}

// Compose merges OCR-located boxes with the static fallback layout so that
// every schema field has a box. Top-level fields are resolved by looking the
// field's extracted value up in the OCR map; the document-type flag is always
// the fixed header box. Line items get four synthesized keys per row, stepped
// down the items table.
func Compose(fields llm.InvoiceFields, ocrMap map[string]Box) map[string]Box {
	out := make(map[string]Box, len(fallbackLayout)+4*len(fields.Prekes))

	// Values are trimmed before lookup because the harvester stores its map
	// keys trimmed; a padded extracted value must still find its located box.
	lookup := func(key, value string) Box {
		if b, ok := ocrMap[strings.TrimSpace(value)]; ok {
			return b
		}
		return fallbackLayout[key]
	}

	out["ar_dokumentas_yra_saskaita"] = fallbackLayout["ar_dokumentas_yra_saskaita"]
	out["serija_ir_numeris"] = lookup("serija_ir_numeris", fields.SerijaIrNumeris)
	out["isdavimo_data"] = lookup("isdavimo_data", fields.IsdavimoData)
	out["mokejimo_terminas"] = lookup("mokejimo_terminas", fields.MokejimoTerminas)
	out["kaina"] = lookup("kaina", fields.Kaina)
	out["pvm"] = lookup("pvm", fields.PVM)
	out["bendra_kaina"] = lookup("bendra_kaina", fields.BendraKaina)

	var seller llm.SellerInfo
	if fields.Pardavejas != nil {
		seller = *fields.Pardavejas
	}
	out["pardavejo_imones_pavadinimas"] = lookup("pardavejo_imones_pavadinimas", seller.ImonesPavadinimas)
	out["pardavejo_imones_kodas"] = lookup("pardavejo_imones_kodas", seller.ImonesKodas)
	out["pardavejo_pvm_identifikacijos_numeris"] = lookup("pardavejo_pvm_identifikacijos_numeris", seller.PVMKodas)
	out["pardavejo_telefono_numeris"] = lookup("pardavejo_telefono_numeris", seller.TelefonoNumeris)
	out["pardavejo_el_pastas"] = lookup("pardavejo_el_pastas", seller.ElPastas)
	out["pardavejo_gatve"] = lookup("pardavejo_gatve", seller.Gatve)
	out["pardavejo_miestas"] = lookup("pardavejo_miestas", seller.Miestas)
	out["pardavejo_pasto_kodas"] = lookup("pardavejo_pasto_kodas", seller.PastoKodas)

	var buyer llm.BuyerInfo
	if fields.Pirkejas != nil {
		buyer = *fields.Pirkejas
	}
	out["pirkejo_imones_pavadinimas"] = lookup("pirkejo_imones_pavadinimas", buyer.ImonesPavadinimas)
	out["pirkejo_imones_kodas"] = lookup("pirkejo_imones_kodas", buyer.ImonesKodas)
	out["pirkejo_pvm_identifikacijos_numeris"] = lookup("pirkejo_pvm_identifikacijos_numeris", buyer.PVMKodas)
	out["pirkejo_gatve"] = lookup("pirkejo_gatve", buyer.Gatve)
	out["pirkejo_miestas"] = lookup("pirkejo_miestas", buyer.Miestas)
	out["pirkejo_pasto_kodas"] = lookup("pirkejo_pasto_kodas", buyer.PastoKodas)

	// Items table starts around 58% from the top, one row every 6%.
	for i, item := range fields.Prekes {
		baseY := float64(58 + i*6)
		name := fmt.Sprintf("item_%d_pavadinimas", i)
		if b, ok := ocrMap[strings.TrimSpace(item.Pavadinimas)]; ok {
			out[name] = b
		} else {
			out[name] = Box{X: 5, Y: baseY, Width: 45, Height: 4}
		}
		out[fmt.Sprintf("item_%d_kiekis", i)] = Box{X: 52, Y: baseY, Width: 10, Height: 4}
		out[fmt.Sprintf("item_%d_kaina", i)] = Box{X: 64, Y: baseY, Width: 15, Height: 4}
		total := fmt.Sprintf("item_%d_bendra_kaina", i)
		if b, ok := ocrMap[strings.TrimSpace(item.BendraKaina)]; ok {
			out[total] = b
		} else {
			out[total] = Box{X: 81, Y: baseY, Width: 17, Height: 4}
		}
	}

	return out
}
