package coords

// Box is an axis-aligned highlight region in percentages of page width and
// height (0–100), top-left origin. The review UI scales these onto whatever
// resolution it renders the document at.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
