package llm

import (
	"strings"

	"github.com/saskaita/invoice-pipeline/constants"
)

// FillMissing replaces every absent or blank leaf with the "Nerasta" sentinel
// and materializes the nested blocks. The review UI and the duplicate advisory
// compare against the sentinel, so an empty string or a nil block must never
// leak out of the extractor.
func FillMissing(f *InvoiceFields) {
	fill(&f.ArDokumentasYraSaskaita)
	fill(&f.SerijaIrNumeris)
	fill(&f.IsdavimoData)
	fill(&f.MokejimoTerminas)
	fill(&f.Kaina)
	fill(&f.PVM)
	fill(&f.BendraKaina)

	if f.Pardavejas == nil {
		f.Pardavejas = &SellerInfo{}
	}
	s := f.Pardavejas
	fill(&s.ImonesPavadinimas)
	fill(&s.ImonesKodas)
	fill(&s.PVMKodas)
	fill(&s.TelefonoNumeris)
	fill(&s.ElPastas)
	fill(&s.Gatve)
	fill(&s.Miestas)
	fill(&s.SaliesKodas)
	fill(&s.PastoKodas)
	fill(&s.FizinisAsmuo)

	if f.Pirkejas == nil {
		f.Pirkejas = &BuyerInfo{}
	}
	b := f.Pirkejas
	fill(&b.ImonesPavadinimas)
	fill(&b.ImonesKodas)
	fill(&b.PVMKodas)
	fill(&b.Gatve)
	fill(&b.Miestas)
	fill(&b.SaliesKodas)
	fill(&b.PastoKodas)
	fill(&b.FizinisAsmuo)

	for i := range f.Prekes {
		it := &f.Prekes[i]
		fill(&it.Kiekis)
		fill(&it.Pavadinimas)
		fill(&it.Kaina)
		fill(&it.PVM)
		fill(&it.BendraKaina)
	}
}

func fill(s *string) {
	if strings.TrimSpace(*s) == "" {
		*s = constants.NotFoundSentinel
	}
}
