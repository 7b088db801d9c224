package request

// ItemPayload is one line item in a draft edit. Money arrives as decimal
// amounts and is converted to cents behind the handler.
type ItemPayload struct {
	Name        string  `json:"name" binding:"required,max=255"`
	QtyTotal    int     `json:"qty_total" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
	AmountTotal float64 `json:"amount_total" binding:"gte=0"`
}

// ReplaceItemsRequest swaps the full item list of a draft receipt
type ReplaceItemsRequest struct {
	Items []ItemPayload `json:"items" binding:"required,dive"`
}
