package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/entity"
	"github.com/splitroom/splitroom-api/internal/domain/enum"
	"github.com/splitroom/splitroom-api/pkg/pagination"
)

// ReceiptRepository defines the interface for receipt data operations.
// Get methods return (nil, nil) when the record does not exist.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt, items []entity.ReceiptItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	// GetByToken loads a published receipt with items, units (ordered by
	// unit_index) and nothing else.
	GetByToken(ctx context.Context, token string) (*entity.Receipt, error)
	GetItems(ctx context.Context, receiptID uuid.UUID) ([]entity.ReceiptItem, error)
	// ReplaceItems atomically deletes the current draft items and inserts the
	// new list.
	ReplaceItems(ctx context.Context, receiptID uuid.UUID, items []entity.ReceiptItem) error
	// Finalize atomically assigns token and status on the receipt and creates
	// the generated units.
	Finalize(ctx context.Context, receipt *entity.Receipt, units []entity.ItemUnit) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.ReceiptStatus) error
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Receipt, int64, error)
}
