package ocr

import "context"

// ParsedItem is a line item recognized on a receipt image.
type ParsedItem struct {
	Name        string  `json:"name"`
	QtyTotal    int     `json:"qty_total"`
	UnitPrice   float64 `json:"unit_price"`
	AmountTotal float64 `json:"amount_total"`
}

// Extractor is the boundary to the external OCR collaborator. Implementations
// return the raw recognized text and the parsed line items for a stored
// receipt image. The engine behind it (tesseract, a vision API, a human) is
// out of scope for this service.
type Extractor interface {
	Extract(ctx context.Context, imagePath string) (string, []ParsedItem, error)
}

// NullExtractor recognizes nothing. It keeps the upload flow working when no
// OCR engine is configured; items are then entered by hand on the draft.
type NullExtractor struct{}

// NewNullExtractor creates an extractor that always returns an empty item list
func NewNullExtractor() *NullExtractor {
	return &NullExtractor{}
}

func (e *NullExtractor) Extract(ctx context.Context, imagePath string) (string, []ParsedItem, error) {
	return "", nil, nil
}
