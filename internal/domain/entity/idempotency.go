package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores processed payment submissions so a retried request
// replays the original response instead of double-charging.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Key          string    `gorm:"size:255;not null;index:idx_idem_key_room,unique,priority:1"` // client-supplied Idempotency-Key
	RoomToken    string    `gorm:"size:64;not null;index:idx_idem_key_room,unique,priority:2"`  // room the request targeted
	Endpoint     string    `gorm:"size:255;not null"`
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
