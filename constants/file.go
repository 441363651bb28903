package constants

import "strings"

// Format is the coarse input class the pipeline distinguishes.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
)

// MapMIMEToFormat classifies an upload's MIME type. Anything that is not a PDF
// or a decodable raster image is rejected before any external call is made.
func MapMIMEToFormat(mimeType string) Format {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case mt == "application/pdf":
		return PDF
	case strings.HasPrefix(mt, "image/"):
		return IMAGE
	default:
		return ""
	}
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
