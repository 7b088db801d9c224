package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/entity"
	"github.com/splitroom/splitroom-api/internal/domain/enum"
	domainRepo "github.com/splitroom/splitroom-api/internal/domain/repository"
	"github.com/splitroom/splitroom-api/pkg/pagination"
	"gorm.io/gorm"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt, items []entity.ReceiptItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ReceiptID = receipt.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		receipt.Items = items
		return nil
	})
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) GetByToken(ctx context.Context, token string) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("items.created_at ASC, items.id ASC")
		}).
		Preload("Items.Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_units.unit_index ASC")
		}).
		First(&receipt, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) GetItems(ctx context.Context, receiptID uuid.UUID) ([]entity.ReceiptItem, error) {
	var items []entity.ReceiptItem
	err := r.db.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *receiptRepository) ReplaceItems(ctx context.Context, receiptID uuid.UUID, items []entity.ReceiptItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Draft receipts have no units yet, but clear defensively in the same
		// transaction so a replaced item can never leave orphans behind.
		if err := tx.Where("item_id IN (?)",
			tx.Model(&entity.ReceiptItem{}).Select("id").Where("receipt_id = ?", receiptID),
		).Delete(&entity.ItemUnit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("receipt_id = ?", receiptID).Delete(&entity.ReceiptItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ReceiptID = receiptID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *receiptRepository) Finalize(ctx context.Context, receipt *entity.Receipt, units []entity.ItemUnit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Receipt{}).
			Where("id = ? AND status = ?", receipt.ID, enum.ReceiptStatusDraft).
			Updates(map[string]interface{}{"token": *receipt.Token, "status": receipt.Status})
		if res.Error != nil {
			return res.Error
		}
		// A concurrent finalize already moved the receipt out of draft.
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if len(units) == 0 {
			return nil
		}
		return tx.Create(&units).Error
	})
}

func (r *receiptRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.ReceiptStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Receipt{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *receiptRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Receipt, int64, error) {
	var receipts []entity.Receipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Receipt{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&receipts).Error

	return receipts, total, err
}
