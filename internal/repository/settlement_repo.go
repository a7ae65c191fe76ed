package repository

import (
	"context"
	"time"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettlementRepository interface {
	// CreateTx inserts the settlement inside the submit transaction, alongside
	// its variance rows.
	CreateTx(tx *gorm.DB, s *model.DailySettlement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DailySettlement, error)
	// FindByIDForUpdateTx locks the settlement row for the recompute and
	// approval paths so their variance rewrites serialize.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.DailySettlement, error)
	FindByStoreAndDate(ctx context.Context, storeID int, date time.Time) (*model.DailySettlement, error)
	Update(ctx context.Context, s *model.DailySettlement) error
	UpdateTx(tx *gorm.DB, s *model.DailySettlement) error
	List(ctx context.Context, filter dto.SettlementFilter) ([]model.DailySettlement, int64, error)
	// StoreIDsSettledOn reports which stores have a submitted-or-later
	// settlement row for the business date. An abandoned DRAFT does not count
	// as having settled.
	StoreIDsSettledOn(ctx context.Context, date time.Time) (map[int]bool, error)
	DB() *gorm.DB
}

type settlementRepo struct{ db *gorm.DB }

func NewSettlementRepository(db *gorm.DB) SettlementRepository { return &settlementRepo{db: db} }

func (r *settlementRepo) DB() *gorm.DB { return r.db }

func (r *settlementRepo) CreateTx(tx *gorm.DB, s *model.DailySettlement) error {
	return tx.Create(s).Error
}

func (r *settlementRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.DailySettlement, error) {
	var s model.DailySettlement
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *settlementRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.DailySettlement, error) {
	var s model.DailySettlement
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *settlementRepo) FindByStoreAndDate(ctx context.Context, storeID int, date time.Time) (*model.DailySettlement, error) {
	var s model.DailySettlement
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND settlement_date = ?", storeID, date.Format("2006-01-02")).
		First(&s).Error
	return &s, err
}

func (r *settlementRepo) Update(ctx context.Context, s *model.DailySettlement) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *settlementRepo) UpdateTx(tx *gorm.DB, s *model.DailySettlement) error {
	return tx.Save(s).Error
}

func (r *settlementRepo) List(ctx context.Context, filter dto.SettlementFilter) ([]model.DailySettlement, int64, error) {
	var settlements []model.DailySettlement
	var total int64

	q := r.db.WithContext(ctx).Model(&model.DailySettlement{})
	if filter.StoreID > 0 {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		q = q.Where("settlement_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("settlement_date <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("settlement_date DESC, store_id").Offset(offset).Limit(filter.Limit).Find(&settlements).Error
	return settlements, total, err
}

func (r *settlementRepo) StoreIDsSettledOn(ctx context.Context, date time.Time) (map[int]bool, error) {
	var ids []int
	err := r.db.WithContext(ctx).Model(&model.DailySettlement{}).
		Where("settlement_date = ? AND status <> ?", date.Format("2006-01-02"), model.SettlementDraft).
		Pluck("store_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
