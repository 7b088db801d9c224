package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/entity"
	"github.com/splitroom/splitroom-api/internal/domain/enum"
	"github.com/splitroom/splitroom-api/internal/domain/repository"
	"github.com/splitroom/splitroom-api/pkg/apperror"
	"github.com/splitroom/splitroom-api/pkg/ocr"
	"github.com/splitroom/splitroom-api/pkg/pagination"
	"github.com/splitroom/splitroom-api/pkg/token"
)

// ReceiptService owns the receipt lifecycle: create a draft from an upload,
// edit the item list while draft, finalize into a payable room.
type ReceiptService struct {
	receiptRepo repository.ReceiptRepository
	extractor   ocr.Extractor
	baseURL     string
}

// NewReceiptService creates a new receipt service
func NewReceiptService(receiptRepo repository.ReceiptRepository, extractor ocr.Extractor, baseURL string) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		extractor:   extractor,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// ItemInput is one draft line item. Money arrives as decimals from the API
// and is converted to cents at this boundary.
type ItemInput struct {
	Name        string
	QtyTotal    int
	UnitPrice   float64
	AmountTotal float64
}

// CreateReceipt stores a new draft receipt. When an image was uploaded the
// configured extractor prefills the item list; extraction problems leave the
// draft empty rather than failing the upload.
func (s *ReceiptService) CreateReceipt(ctx context.Context, imagePath string) (*entity.Receipt, error) {
	var items []entity.ReceiptItem
	if imagePath != "" {
		text, parsed, err := s.extractor.Extract(ctx, imagePath)
		if err != nil {
			return nil, apperror.NewAppError(apperror.KindInternal, 503, "receipt recognition failed: "+err.Error())
		}
		// Engines that only return raw text get the line parser applied here.
		if len(parsed) == 0 && text != "" {
			parsed = ocr.ParseItems(text)
		}
		for _, p := range parsed {
			if p.QtyTotal <= 0 {
				continue
			}
			name := p.Name
			if name == "" {
				name = "Unnamed item"
			}
			items = append(items, entity.ReceiptItem{
				Name:        name,
				QtyTotal:    p.QtyTotal,
				UnitPrice:   Cents(p.UnitPrice),
				AmountTotal: Cents(p.AmountTotal),
			})
		}
	}

	receipt := &entity.Receipt{
		Status:    enum.ReceiptStatusDraft,
		ImagePath: imagePath,
	}
	if err := s.receiptRepo.Create(ctx, receipt, items); err != nil {
		return nil, err
	}
	return receipt, nil
}

// GetItems returns the current item list of a receipt
func (s *ReceiptService) GetItems(ctx context.Context, receiptID uuid.UUID) ([]entity.ReceiptItem, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return s.receiptRepo.GetItems(ctx, receiptID)
}

// ReplaceItems swaps the full item list of a draft receipt and echoes what
// was stored. Fails NotDraft once the receipt is finalized.
func (s *ReceiptService) ReplaceItems(ctx context.Context, receiptID uuid.UUID, inputs []ItemInput) ([]entity.ReceiptItem, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	if !receipt.IsDraft() {
		return nil, apperror.NewNotDraftError("Receipt already finalized")
	}

	items := make([]entity.ReceiptItem, 0, len(inputs))
	for _, in := range inputs {
		if in.QtyTotal <= 0 {
			return nil, apperror.NewValidationError("qty_total must be positive")
		}
		if in.UnitPrice < 0 || in.AmountTotal < 0 {
			return nil, apperror.NewValidationError("amounts must not be negative")
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, apperror.NewValidationError("item name is required")
		}
		items = append(items, entity.ReceiptItem{
			Name:        name,
			QtyTotal:    in.QtyTotal,
			UnitPrice:   Cents(in.UnitPrice),
			AmountTotal: Cents(in.AmountTotal),
		})
	}

	if err := s.receiptRepo.ReplaceItems(ctx, receiptID, items); err != nil {
		return nil, err
	}
	return s.receiptRepo.GetItems(ctx, receiptID)
}

// Finalize locks the receipt schema, generates the payable units and returns
// the shareable room URL. A second call fails with AlreadyFinalized; units
// are never generated twice.
func (s *ReceiptService) Finalize(ctx context.Context, receiptID uuid.UUID) (string, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return "", err
	}
	if receipt == nil {
		return "", apperror.NewNotFoundError("Receipt")
	}
	if !receipt.IsDraft() {
		return "", apperror.NewAlreadyFinalizedError("Receipt already finalized")
	}

	items, err := s.receiptRepo.GetItems(ctx, receiptID)
	if err != nil {
		return "", err
	}

	roomToken, err := token.NewRoomToken()
	if err != nil {
		return "", err
	}

	var units []entity.ItemUnit
	for i := range items {
		units = append(units, items[i].SplitUnits()...)
	}

	receipt.Token = &roomToken
	receipt.Status = enum.ReceiptStatusOpen
	if err := s.receiptRepo.Finalize(ctx, receipt, units); err != nil {
		// The guarded update applied zero rows: someone else finalized first.
		return "", apperror.NewAlreadyFinalizedError("Receipt already finalized")
	}
	return s.RoomURL(roomToken), nil
}

// RoomURL builds the public URL of a room from its token
func (s *ReceiptService) RoomURL(roomToken string) string {
	return s.baseURL + "/room/" + roomToken
}

// ListReceipts returns receipts newest first
func (s *ReceiptService) ListReceipts(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Receipt], error) {
	params.Validate()
	receipts, total, err := s.receiptRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(receipts, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// Cents converts a decimal amount to integer cents
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}
