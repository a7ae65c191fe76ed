package repository

import (
	"context"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransferRepository interface {
	Create(ctx context.Context, t *model.StockTransfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransfer, error)
	// FindByIDForUpdateTx locks the transfer row so concurrent approvals
	// serialize; the second approver observes APPROVED and no-ops.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.StockTransfer, error)
	Update(ctx context.Context, t *model.StockTransfer) error
	UpdateTx(tx *gorm.DB, t *model.StockTransfer) error
	List(ctx context.Context, filter dto.TransferFilter) ([]model.StockTransfer, int64, error)
	DB() *gorm.DB
}

type transferRepo struct{ db *gorm.DB }

func NewTransferRepository(db *gorm.DB) TransferRepository { return &transferRepo{db: db} }

func (r *transferRepo) DB() *gorm.DB { return r.db }

func (r *transferRepo) Create(ctx context.Context, t *model.StockTransfer) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *transferRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransfer, error) {
	var t model.StockTransfer
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *transferRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.StockTransfer, error) {
	var t model.StockTransfer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *transferRepo) Update(ctx context.Context, t *model.StockTransfer) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *transferRepo) UpdateTx(tx *gorm.DB, t *model.StockTransfer) error {
	return tx.Save(t).Error
}

func (r *transferRepo) List(ctx context.Context, filter dto.TransferFilter) ([]model.StockTransfer, int64, error) {
	var transfers []model.StockTransfer
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StockTransfer{})
	if filter.StoreID > 0 {
		q = q.Where("from_store_id = ? OR to_store_id = ?", filter.StoreID, filter.StoreID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&transfers).Error
	return transfers, total, err
}
