package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessedDocument is a confirmed upload: the reviewed extraction result
// tied to its stored asset. Documents only land here after the user confirms
// them in the review UI; the pipeline itself persists nothing.
type ProcessedDocument struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"user_id"`
	OriginalName  string          `json:"original_name"`
	FileType      string          `json:"file_type"`
	CompressedURL string          `json:"compressed_url"`
	OriginalURL   string          `json:"original_url"`
	ExtractedData json.RawMessage `json:"extracted_data"`
	Coordinates   json.RawMessage `json:"coordinates"`
	Status        string          `json:"status"`
	// SellerCode and InvoiceNumber are denormalized out of ExtractedData so
	// the duplicate advisory can query them directly.
	SellerCode    string    `json:"seller_code"`
	InvoiceNumber string    `json:"invoice_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
