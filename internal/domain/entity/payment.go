package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is one row of the append-only ledger: a payer putting an amount
// against one unit. Rows are never edited or deleted; every aggregated
// balance in the system is reconstructable by folding them in insertion order.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	UnitID    uuid.UUID `gorm:"type:uuid;not null;index" json:"unit_id"`
	PayerName string    `gorm:"size:128;not null" json:"payer_name"`
	Amount    int64     `gorm:"not null" json:"-"` // cents
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Receipt Receipt     `gorm:"foreignKey:ReceiptID" json:"-"`
	Item    ReceiptItem `gorm:"foreignKey:ItemID" json:"-"`
	Unit    ItemUnit    `gorm:"foreignKey:UnitID" json:"-"`
}

// MarshalJSON converts the cent amount to a decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before appending a payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
