package llm

import (
	"context"
	"strings"
)

// FieldBox is the single highlight returned by a field re-location call, in
// percentages of page width and height.
type FieldBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LocateRequest asks where one already-extracted value sits on the document
// image. The review UI sends this when a composed box misses its field.
type LocateRequest struct {
	ImageDataURL string
	FieldName    string
	FieldValue   string
	FileName     string
}

// FieldLocator resolves a single field to a box with a dedicated vision call.
type FieldLocator interface {
	LocateFieldBox(ctx context.Context, req LocateRequest) (FieldBox, error)
}

// BuildLocatePrompt composes the single-field location prompt. Same register
// as the extraction prompt: fixed JSON shape, answer in JSON only.
func BuildLocatePrompt(req LocateRequest) string {
	var b strings.Builder
	b.WriteString("Surask šiame lietuviškame sąskaitos faktūros dokumente lauką \"")
	b.WriteString(req.FieldName)
	b.WriteString("\" su reikšme \"")
	b.WriteString(req.FieldValue)
	b.WriteString("\".\n\n")
	b.WriteString("Pateik jo vietą procentais nuo puslapio pločio ir aukščio (0-100) tiksliai tokia JSON struktūra:\n")
	b.WriteString(`{"x": 10.5, "y": 20.0, "width": 25.0, "height": 4.0}`)
	b.WriteString("\n\nSVARBU: Grąžink tik JSON formatą be papildomo teksto.")
	return b.String()
}
