package llm

import "context"

// SellerInfo is the seller block of an extracted invoice. Every leaf is a
// string; "not found" is the literal constants.NotFoundSentinel, never an
// empty string.
type SellerInfo struct {
	ImonesPavadinimas string `json:"pardavejo_imones_pavadinimas"`
	ImonesKodas       string `json:"pardavejo_imones_kodas"`
	PVMKodas          string `json:"pardavejo_pvm_identifikacijos_numeris"`
	TelefonoNumeris   string `json:"pardavejo_telefono_numeris"`
	ElPastas          string `json:"pardavejo_el_pastas"`
	Gatve             string `json:"pardavejo_gatve"`
	Miestas           string `json:"pardavejo_miestas"`
	SaliesKodas       string `json:"pardavejo_salies_dvieju_raidziu_kodas"`
	PastoKodas        string `json:"pardavejo_pasto_kodas"`
	FizinisAsmuo      string `json:"pardavejas_fizinis_asmuo"`
}

// BuyerInfo is the buyer block. Same shape as the seller minus phone/email.
type BuyerInfo struct {
	ImonesPavadinimas string `json:"pirkejo_imones_pavadinimas"`
	ImonesKodas       string `json:"pirkejo_imones_kodas"`
	PVMKodas          string `json:"pirkejo_pvm_identifikacijos_numeris"`
	Gatve             string `json:"pirkejo_gatve"`
	Miestas           string `json:"pirkejo_miestas"`
	SaliesKodas       string `json:"pirkejo_salies_dvieju_raidziu_kodas"`
	PastoKodas        string `json:"pirkejo_pasto_kodas"`
	FizinisAsmuo      string `json:"pirkejas_fizinis_asmuo"`
}

// LineItem is one invoice row.
type LineItem struct {
	Kiekis      string `json:"kiekis"`
	Pavadinimas string `json:"pavadinimas"`
	Kaina       string `json:"kaina"`
	PVM         string `json:"pvm"`
	BendraKaina string `json:"bendra_kaina"`
}

// InvoiceFields is the fixed invoice schema the model fills in. The nested
// blocks are optional in the wire format (the model may omit them); FillMissing
// materializes them with sentinel values so consumers never check for nil.
type InvoiceFields struct {
	ArDokumentasYraSaskaita string      `json:"ar_dokumentas_yra_saskaita"`
	SerijaIrNumeris         string      `json:"serija_ir_numeris"`
	IsdavimoData            string      `json:"isdavimo_data"`
	MokejimoTerminas        string      `json:"mokejimo_terminas"`
	Kaina                   string      `json:"kaina"`
	PVM                     string      `json:"pvm"`
	BendraKaina             string      `json:"bendra_kaina"`
	Pardavejas              *SellerInfo `json:"pardavejas,omitempty"`
	Pirkejas                *BuyerInfo  `json:"pirkejas,omitempty"`
	Prekes                  []LineItem  `json:"prekes,omitempty"`
}

// ExtractRequest carries one document to the extraction model. Exactly one of
// Text (PDF text layer) or ImageDataURL (photo/scan) is set.
type ExtractRequest struct {
	Text         string
	ImageDataURL string
	FileName     string
}

// FieldExtractor is the interface the pipeline depends on. The raw slice is
// the model's JSON output and is returned on both success and parse failure
// so the caller can surface a diagnostic excerpt.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (InvoiceFields, []byte, error)
}
