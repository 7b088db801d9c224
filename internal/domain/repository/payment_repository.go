package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/entity"
)

// PaymentRepository is the append-only payment ledger. Appends carry the
// recomputed unit snapshots so that ledger row and materialized view move in
// one transaction; nothing ever updates or deletes a payment row.
type PaymentRepository interface {
	// AppendAll inserts every payment row and saves the amount_paid/status of
	// the touched units atomically. Either all rows land or none do.
	AppendAll(ctx context.Context, payments []entity.Payment, units []entity.ItemUnit) error
	// ListByReceipt returns the full history in insertion order
	// (created_at, id ascending).
	ListByReceipt(ctx context.Context, receiptID uuid.UUID) ([]entity.Payment, error)
}
