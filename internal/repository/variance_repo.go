package repository

import (
	"context"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VarianceRepository interface {
	CreateTx(tx *gorm.DB, v *model.VarianceLog) error
	// DeletePendingBySettlementTx clears a settlement's unresolved variance
	// rows ahead of a recompute. Resolved rows are never touched.
	DeletePendingBySettlementTx(tx *gorm.DB, settlementID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VarianceLog, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.VarianceLog, error)
	UpdateTx(tx *gorm.DB, v *model.VarianceLog) error
	// CountPendingBySettlementTx counts unresolved rows inside the approval
	// transaction, under the settlement's row lock.
	CountPendingBySettlementTx(tx *gorm.DB, settlementID uuid.UUID) (int64, error)
	ListBySettlement(ctx context.Context, settlementID uuid.UUID) ([]model.VarianceLog, error)
	List(ctx context.Context, filter dto.VarianceFilter) ([]model.VarianceLog, int64, error)
	DB() *gorm.DB
}

type varianceRepo struct{ db *gorm.DB }

func NewVarianceRepository(db *gorm.DB) VarianceRepository { return &varianceRepo{db: db} }

func (r *varianceRepo) DB() *gorm.DB { return r.db }

func (r *varianceRepo) CreateTx(tx *gorm.DB, v *model.VarianceLog) error {
	return tx.Create(v).Error
}

func (r *varianceRepo) DeletePendingBySettlementTx(tx *gorm.DB, settlementID uuid.UUID) error {
	return tx.Where("settlement_id = ? AND status = ?", settlementID, model.VariancePending).
		Delete(&model.VarianceLog{}).Error
}

func (r *varianceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.VarianceLog, error) {
	var v model.VarianceLog
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *varianceRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.VarianceLog, error) {
	var v model.VarianceLog
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *varianceRepo) UpdateTx(tx *gorm.DB, v *model.VarianceLog) error {
	return tx.Save(v).Error
}

func (r *varianceRepo) CountPendingBySettlementTx(tx *gorm.DB, settlementID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.VarianceLog{}).
		Where("settlement_id = ? AND status = ?", settlementID, model.VariancePending).
		Count(&n).Error
	return n, err
}

func (r *varianceRepo) ListBySettlement(ctx context.Context, settlementID uuid.UUID) ([]model.VarianceLog, error) {
	var logs []model.VarianceLog
	err := r.db.WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Order("bird_type, inventory_type").
		Find(&logs).Error
	return logs, err
}

func (r *varianceRepo) List(ctx context.Context, filter dto.VarianceFilter) ([]model.VarianceLog, int64, error) {
	var logs []model.VarianceLog
	var total int64

	q := r.db.WithContext(ctx).Model(&model.VarianceLog{})
	if filter.StoreID > 0 {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&logs).Error
	return logs, total, err
}
