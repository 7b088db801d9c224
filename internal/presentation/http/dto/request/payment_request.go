package request

import "github.com/google/uuid"

// PaymentLine is one line of a payment request. unit_full needs only the
// item; unit_partial additionally names the unit and the amount.
type PaymentLine struct {
	ItemID uuid.UUID  `json:"item_id" binding:"required"`
	Mode   string     `json:"mode" binding:"required,oneof=unit_full unit_partial"`
	UnitID *uuid.UUID `json:"unit_id"`
	Amount *float64   `json:"amount"`
}

// SubmitPaymentRequest is a multi-line payment against one room
type SubmitPaymentRequest struct {
	PayerName string        `json:"payer_name" binding:"required,max=128"`
	Lines     []PaymentLine `json:"lines" binding:"required,min=1,dive"`
}
