package service

import (
	"context"
	"time"

	"github.com/splitroom/splitroom-api/internal/domain/entity"
	"github.com/splitroom/splitroom-api/internal/domain/enum"
	"github.com/splitroom/splitroom-api/internal/domain/repository"
	"github.com/splitroom/splitroom-api/pkg/apperror"
)

// RoomService serves the aggregated room snapshot viewers poll after every
// change notification.
type RoomService struct {
	receiptRepo repository.ReceiptRepository
	paymentRepo repository.PaymentRepository
}

// NewRoomService creates a new room query service
func NewRoomService(receiptRepo repository.ReceiptRepository, paymentRepo repository.PaymentRepository) *RoomService {
	return &RoomService{receiptRepo: receiptRepo, paymentRepo: paymentRepo}
}

// RoomView is the consistent snapshot of a room: items with their units and
// the full payment history, oldest first.
type RoomView struct {
	Token     string               `json:"token"`
	Status    enum.ReceiptStatus   `json:"status"`
	Items     []entity.ReceiptItem `json:"items"`
	Payments  []entity.Payment     `json:"payments"`
	CreatedAt time.Time            `json:"created_at"`
}

// GetRoom returns the snapshot for a room token. Per-unit balances are
// rebuilt from the ledger fold, so the view is always consistent with the
// history it ships: a reader can never see a payment row whose amount is
// missing from a unit, or the reverse.
func (s *RoomService) GetRoom(ctx context.Context, roomToken string) (*RoomView, error) {
	receipt, err := s.receiptRepo.GetByToken(ctx, roomToken)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}

	payments, err := s.paymentRepo.ListByReceipt(ctx, receipt.ID)
	if err != nil {
		return nil, err
	}

	paid := FoldPayments(payments)
	for i := range receipt.Items {
		for j := range receipt.Items[i].Units {
			u := &receipt.Items[i].Units[j]
			u.AmountPaid = paid[u.ID]
			u.Status = enum.UnitStatusFor(u.AmountPaid, u.AmountTotal)
		}
	}

	if receipt.Items == nil {
		receipt.Items = []entity.ReceiptItem{}
	}
	if payments == nil {
		payments = []entity.Payment{}
	}

	return &RoomView{
		Token:     roomToken,
		Status:    receipt.Status,
		Items:     receipt.Items,
		Payments:  payments,
		CreatedAt: receipt.CreatedAt,
	}, nil
}
