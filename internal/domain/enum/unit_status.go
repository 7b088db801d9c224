package enum

import "database/sql/driver"

// UnitStatus is the payment state of a single unit, derived from
// amount_paid vs amount_total. It is a materialized view of the ledger and is
// never set independently.
type UnitStatus string

const (
	UnitStatusUnpaid  UnitStatus = "unpaid"
	UnitStatusPartial UnitStatus = "partial"
	UnitStatusPaid    UnitStatus = "paid"
)

func (s UnitStatus) String() string {
	return string(s)
}

// UnitStatusFor derives the status from the paid and total amounts in cents.
func UnitStatusFor(amountPaid, amountTotal int64) UnitStatus {
	switch {
	case amountPaid <= 0:
		return UnitStatusUnpaid
	case amountPaid < amountTotal:
		return UnitStatusPartial
	default:
		return UnitStatusPaid
	}
}

func (s UnitStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *UnitStatus) Scan(value interface{}) error {
	if value == nil {
		*s = UnitStatusUnpaid
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = UnitStatus(v)
	case []byte:
		*s = UnitStatus(v)
	}
	return nil
}
