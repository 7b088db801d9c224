package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/entity"
	domainRepo "github.com/splitroom/splitroom-api/internal/domain/repository"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment ledger repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) AppendAll(ctx context.Context, payments []entity.Payment, units []entity.ItemUnit) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payments).Error; err != nil {
			return err
		}
		for i := range units {
			err := tx.Model(&entity.ItemUnit{}).
				Where("id = ?", units[i].ID).
				Updates(map[string]interface{}{
					"amount_paid": units[i].AmountPaid,
					"status":      units[i].Status,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *paymentRepository) ListByReceipt(ctx context.Context, receiptID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}
