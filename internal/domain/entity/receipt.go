package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Receipt is an uploaded bill. It owns its items while draft; finalize locks
// the schema, generates units and assigns the shareable room token.
type Receipt struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Token     *string            `gorm:"size:64;uniqueIndex" json:"token,omitempty"`
	Status    enum.ReceiptStatus `gorm:"size:16;not null;default:'draft'" json:"status"`
	ImagePath string             `gorm:"size:512" json:"-"`
	CreatedAt time.Time          `json:"created_at"`

	// Relationships
	Items    []ReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}

// IsDraft reports whether items are still editable
func (r *Receipt) IsDraft() bool {
	return r.Status == enum.ReceiptStatusDraft
}

// ReceiptItem is a single line on a receipt. Amounts are stored in cents and
// marshaled as decimals. Mutable only while the owning receipt is draft.
type ReceiptItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	QtyTotal    int       `gorm:"not null;check:qty_total > 0" json:"qty_total"`
	UnitPrice   int64     `gorm:"not null" json:"-"` // cents
	AmountTotal int64     `gorm:"not null" json:"-"` // cents
	CreatedAt   time.Time `json:"-"`

	// Relationships
	Receipt Receipt    `gorm:"foreignKey:ReceiptID" json:"-"`
	Units   []ItemUnit `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"units,omitempty"`
}

// MarshalJSON converts cent amounts to decimals for API responses
func (i ReceiptItem) MarshalJSON() ([]byte, error) {
	type Alias ReceiptItem
	return json.Marshal(&struct {
		Alias
		UnitPrice   float64 `json:"unit_price"`
		AmountTotal float64 `json:"amount_total"`
	}{
		Alias:       Alias(i),
		UnitPrice:   float64(i.UnitPrice) / 100,
		AmountTotal: float64(i.AmountTotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new item
func (i *ReceiptItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptItem model
func (ReceiptItem) TableName() string {
	return "items"
}

// SplitUnits generates the item's payable units: amount_total is integer-
// divided across qty_total, the remainder cents go to the last unit. The sum
// of unit totals always equals the item total.
func (i *ReceiptItem) SplitUnits() []ItemUnit {
	if i.QtyTotal <= 0 {
		return nil
	}
	per := i.AmountTotal / int64(i.QtyTotal)
	units := make([]ItemUnit, i.QtyTotal)
	for idx := 0; idx < i.QtyTotal; idx++ {
		amount := per
		if idx == i.QtyTotal-1 {
			amount = i.AmountTotal - per*int64(i.QtyTotal-1)
		}
		units[idx] = ItemUnit{
			ItemID:      i.ID,
			UnitIndex:   idx,
			AmountTotal: amount,
			AmountPaid:  0,
			Status:      enum.UnitStatusUnpaid,
		}
	}
	return units
}
