package enum

import "database/sql/driver"

// ReceiptStatus represents the lifecycle state of a receipt. A receipt is
// editable while draft, accepts payments while open, and flips to paid once
// every unit is settled.
type ReceiptStatus string

const (
	ReceiptStatusDraft ReceiptStatus = "draft"
	ReceiptStatusOpen  ReceiptStatus = "open"
	ReceiptStatusPaid  ReceiptStatus = "paid"
)

func (s ReceiptStatus) String() string {
	return string(s)
}

// IsPublished reports whether the receipt schema is locked (units exist and
// items are immutable).
func (s ReceiptStatus) IsPublished() bool {
	return s == ReceiptStatusOpen || s == ReceiptStatusPaid
}

func (s ReceiptStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *ReceiptStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReceiptStatusDraft
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = ReceiptStatus(v)
	case []byte:
		*s = ReceiptStatus(v)
	}
	return nil
}
