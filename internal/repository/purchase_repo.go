package repository

import (
	"context"
	"time"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(ctx context.Context, p *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	Update(ctx context.Context, p *model.Purchase) error
	// MarkCommittedTx flips DRAFT→COMMITTED inside the ledger transaction and
	// reports whether a row actually changed, so a lost race surfaces as a
	// zero-row update instead of a double commit.
	MarkCommittedTx(tx *gorm.DB, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PurchaseStatus) error
	List(ctx context.Context, filter dto.PurchaseFilter) ([]model.Purchase, int64, error)
	DB() *gorm.DB
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository { return &purchaseRepo{db: db} }

func (r *purchaseRepo) DB() *gorm.DB { return r.db }

func (r *purchaseRepo) Create(ctx context.Context, p *model.Purchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := r.db.WithContext(ctx).Preload("Supplier").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *purchaseRepo) Update(ctx context.Context, p *model.Purchase) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *purchaseRepo) MarkCommittedTx(tx *gorm.DB, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error) {
	res := tx.Model(&model.Purchase{}).
		Where("id = ? AND status = ?", id, model.PurchaseDraft).
		Updates(map[string]interface{}{
			"status":       model.PurchaseCommitted,
			"committed_by": by,
			"committed_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *purchaseRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PurchaseStatus) error {
	return r.db.WithContext(ctx).Model(&model.Purchase{}).Where("id = ?", id).Update("status", status).Error
}

func (r *purchaseRepo) List(ctx context.Context, filter dto.PurchaseFilter) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Purchase{})
	if filter.StoreID > 0 {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		q = q.Where("created_at >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("created_at < ?::date + interval '1 day'", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Supplier").Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&purchases).Error
	return purchases, total, err
}
