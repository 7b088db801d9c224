package entity

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/enum"
	"gorm.io/gorm"
)

// ItemUnit is the smallest independently payable portion of an item. Units are
// generated exactly once at finalize time; after that only amount_paid moves,
// and only through ledger appends.
type ItemUnit struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_item_unit,unique,priority:1" json:"-"`
	UnitIndex   int             `gorm:"not null;index:idx_item_unit,unique,priority:2" json:"unit_index"`
	AmountTotal int64           `gorm:"not null" json:"-"`                              // cents
	AmountPaid  int64           `gorm:"not null;default:0;check:amount_paid >= 0" json:"-"` // cents, materialized from the ledger
	Status      enum.UnitStatus `gorm:"size:16;not null;default:'unpaid'" json:"status"`

	// Relationships
	Item ReceiptItem `gorm:"foreignKey:ItemID" json:"-"`
}

// MarshalJSON converts cent amounts to decimals for API responses
func (u ItemUnit) MarshalJSON() ([]byte, error) {
	type Alias ItemUnit
	return json.Marshal(&struct {
		Alias
		AmountTotal float64 `json:"amount_total"`
		AmountPaid  float64 `json:"amount_paid"`
	}{
		Alias:       Alias(u),
		AmountTotal: float64(u.AmountTotal) / 100,
		AmountPaid:  float64(u.AmountPaid) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new unit
func (u *ItemUnit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ItemUnit model
func (ItemUnit) TableName() string {
	return "item_units"
}

// Remaining is the unpaid balance in cents
func (u *ItemUnit) Remaining() int64 {
	return u.AmountTotal - u.AmountPaid
}

// Apply adds amount cents to the unit and rederives the status. The caller is
// responsible for having validated amount against Remaining.
func (u *ItemUnit) Apply(amount int64) {
	u.AmountPaid += amount
	u.Status = enum.UnitStatusFor(u.AmountPaid, u.AmountTotal)
}
