package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/entity"
	"github.com/splitroom/splitroom-api/internal/domain/enum"
	"github.com/splitroom/splitroom-api/internal/domain/repository"
	"github.com/splitroom/splitroom-api/pkg/apperror"
	"github.com/splitroom/splitroom-api/pkg/roomlock"
)

// Payment line modes accepted at the boundary.
const (
	ModeUnitFull    = "unit_full"
	ModeUnitPartial = "unit_partial"
)

// RoomNotifier pushes a content-free change notification to the subscribers
// of a room. Implementations must never block the caller; delivery is
// best-effort and subscribers re-query for authoritative state.
type RoomNotifier interface {
	NotifyRoom(token string)
}

// PaymentService is the reconciliation engine over the append-only payment
// ledger. It serializes writers per room token, validates every line of a
// request against a replay of the ledger, and applies the whole request
// atomically or not at all.
type PaymentService struct {
	receiptRepo repository.ReceiptRepository
	paymentRepo repository.PaymentRepository
	locks       *roomlock.Keyed
	notifier    RoomNotifier
	lockWait    time.Duration
}

// NewPaymentService creates a new payment service. notifier may be nil.
func NewPaymentService(
	receiptRepo repository.ReceiptRepository,
	paymentRepo repository.PaymentRepository,
	notifier RoomNotifier,
	lockWait time.Duration,
) *PaymentService {
	return &PaymentService{
		receiptRepo: receiptRepo,
		paymentRepo: paymentRepo,
		locks:       roomlock.NewKeyed(),
		notifier:    notifier,
		lockWait:    lockWait,
	}
}

// PaymentLineInput is one line of a payment request
type PaymentLineInput struct {
	ItemID uuid.UUID
	Mode   string
	UnitID *uuid.UUID
	Amount *float64
}

// SubmitPaymentInput is a payment request against one room
type SubmitPaymentInput struct {
	PayerName string
	Lines     []PaymentLineInput
}

// SubmitPayment validates and applies a payment request under the room's
// exclusive lock. On success every line has been appended to the ledger in
// one transaction and subscribers have been notified; on failure nothing was
// applied.
func (s *PaymentService) SubmitPayment(ctx context.Context, roomToken string, input *SubmitPaymentInput) ([]entity.Payment, error) {
	payer := strings.TrimSpace(input.PayerName)
	if payer == "" {
		return nil, apperror.NewValidationError("payer_name is required")
	}
	if len(input.Lines) == 0 {
		return nil, apperror.NewValidationError("at least one payment line is required")
	}

	release, err := s.locks.Acquire(roomToken, s.lockWait)
	if err != nil {
		return nil, apperror.NewBusyError("Room is busy, retry the payment")
	}
	defer release()

	receipt, err := s.receiptRepo.GetByToken(ctx, roomToken)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	if receipt.Status == enum.ReceiptStatusPaid {
		return nil, apperror.NewAlreadyPaidError("Receipt is already fully paid")
	}

	// The ledger, not the materialized unit columns, is the baseline every
	// line is validated against.
	history, err := s.paymentRepo.ListByReceipt(ctx, receipt.ID)
	if err != nil {
		return nil, err
	}
	paid := FoldPayments(history)

	type unitRef struct {
		unit *entity.ItemUnit
		item *entity.ReceiptItem
	}
	unitsByID := make(map[uuid.UUID]unitRef)
	itemsByID := make(map[uuid.UUID]*entity.ReceiptItem)
	for i := range receipt.Items {
		item := &receipt.Items[i]
		itemsByID[item.ID] = item
		for j := range item.Units {
			unitsByID[item.Units[j].ID] = unitRef{unit: &item.Units[j], item: item}
		}
	}

	now := time.Now()
	payments := make([]entity.Payment, 0, len(input.Lines))
	touched := make(map[uuid.UUID]*entity.ItemUnit)

	for _, line := range input.Lines {
		item, ok := itemsByID[line.ItemID]
		if !ok {
			return nil, apperror.NewNotFoundError("Item")
		}

		var target *entity.ItemUnit
		var amount int64

		switch line.Mode {
		case ModeUnitPartial:
			if line.UnitID == nil {
				return nil, apperror.NewValidationError("unit_id is required for partial payments")
			}
			if line.Amount == nil || *line.Amount <= 0 {
				return nil, apperror.NewValidationError("amount is required for partial payments")
			}
			ref, ok := unitsByID[*line.UnitID]
			if !ok || ref.item.ID != item.ID {
				// Never trust a client-supplied item/unit pair; the stored
				// relationship is authoritative.
				return nil, apperror.NewNotFoundError("Unit")
			}
			target = ref.unit
			amount = Cents(*line.Amount)
			if amount <= 0 {
				return nil, apperror.NewValidationError("amount is too small")
			}
			if remaining := target.AmountTotal - paid[target.ID]; amount > remaining {
				return nil, apperror.NewOverpaymentError("Payment exceeds remaining balance")
			}

		case ModeUnitFull:
			// Lowest-index unit of the item with anything left to pay,
			// counting deltas already accepted earlier in this request.
			for j := range item.Units {
				u := &item.Units[j]
				if paid[u.ID] < u.AmountTotal {
					target = u
					break
				}
			}
			if target == nil {
				return nil, apperror.NewAlreadyPaidError("No unpaid units available")
			}
			amount = target.AmountTotal - paid[target.ID]

		default:
			return nil, apperror.NewValidationError("unknown payment mode: " + line.Mode)
		}

		paid[target.ID] += amount
		touched[target.ID] = target
		payments = append(payments, entity.Payment{
			ReceiptID: receipt.ID,
			ItemID:    item.ID,
			UnitID:    target.ID,
			PayerName: payer,
			Amount:    amount,
			CreatedAt: now,
		})
	}

	// Every line validated; apply as one atomic unit.
	units := make([]entity.ItemUnit, 0, len(touched))
	for id, u := range touched {
		snapshot := *u
		snapshot.AmountPaid = paid[id]
		snapshot.Status = enum.UnitStatusFor(snapshot.AmountPaid, snapshot.AmountTotal)
		units = append(units, snapshot)
	}
	if err := s.paymentRepo.AppendAll(ctx, payments, units); err != nil {
		return nil, err
	}

	if s.settled(receipt, paid) {
		if err := s.receiptRepo.UpdateStatus(ctx, receipt.ID, enum.ReceiptStatusPaid); err != nil {
			log.Printf("Warning: failed to mark receipt %s paid: %v", receipt.ID, err)
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyRoom(roomToken)
	}
	return payments, nil
}

// settled reports whether every unit of the receipt is fully paid
func (s *PaymentService) settled(receipt *entity.Receipt, paid map[uuid.UUID]int64) bool {
	if len(receipt.Items) == 0 {
		return false
	}
	for i := range receipt.Items {
		for j := range receipt.Items[i].Units {
			u := &receipt.Items[i].Units[j]
			if paid[u.ID] < u.AmountTotal {
				return false
			}
		}
	}
	return true
}

// Replay folds the full ledger of a room into per-unit paid amounts. The fold
// is deterministic and idempotent; it is the ground truth the materialized
// amount_paid columns must always agree with.
func (s *PaymentService) Replay(ctx context.Context, receiptID uuid.UUID) (map[uuid.UUID]int64, error) {
	history, err := s.paymentRepo.ListByReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	return FoldPayments(history), nil
}

// FoldPayments sums payment rows per unit in insertion order
func FoldPayments(payments []entity.Payment) map[uuid.UUID]int64 {
	paid := make(map[uuid.UUID]int64, len(payments))
	for i := range payments {
		paid[payments[i].UnitID] += payments[i].Amount
	}
	return paid
}
