package repository

import (
	"context"
	"time"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProcessingRepository interface {
	CreateTx(tx *gorm.DB, e *model.ProcessingEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProcessingEntry, error)
	FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*model.ProcessingEntry, error)
	List(ctx context.Context, filter dto.ProcessingFilter) ([]model.ProcessingEntry, int64, error)

	// Wastage config lookups take the most recent row effective on or before
	// the processing date, so historical entries keep their original math.
	EffectiveWastage(ctx context.Context, bird model.BirdType, target model.InventoryType, onDate time.Time) (*model.WastageConfig, error)
	CreateWastage(ctx context.Context, w *model.WastageConfig) error
	ListWastage(ctx context.Context) ([]model.WastageConfig, error)

	DB() *gorm.DB
}

type processingRepo struct{ db *gorm.DB }

func NewProcessingRepository(db *gorm.DB) ProcessingRepository { return &processingRepo{db: db} }

func (r *processingRepo) DB() *gorm.DB { return r.db }

func (r *processingRepo) CreateTx(tx *gorm.DB, e *model.ProcessingEntry) error {
	return tx.Create(e).Error
}

func (r *processingRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProcessingEntry, error) {
	var e model.ProcessingEntry
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *processingRepo) FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*model.ProcessingEntry, error) {
	var e model.ProcessingEntry
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&e).Error
	return &e, err
}

func (r *processingRepo) List(ctx context.Context, filter dto.ProcessingFilter) ([]model.ProcessingEntry, int64, error) {
	var entries []model.ProcessingEntry
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ProcessingEntry{})
	if filter.StoreID > 0 {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.From != "" {
		q = q.Where("processing_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("processing_date <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("processing_date DESC, created_at DESC").Offset(offset).Limit(filter.Limit).Find(&entries).Error
	return entries, total, err
}

func (r *processingRepo) EffectiveWastage(ctx context.Context, bird model.BirdType, target model.InventoryType, onDate time.Time) (*model.WastageConfig, error) {
	var w model.WastageConfig
	err := r.db.WithContext(ctx).
		Where("bird_type = ? AND target_inventory_type = ? AND active = true AND effective_date <= ?", bird, target, onDate.Format("2006-01-02")).
		Order("effective_date DESC").
		First(&w).Error
	return &w, err
}

func (r *processingRepo) CreateWastage(ctx context.Context, w *model.WastageConfig) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *processingRepo) ListWastage(ctx context.Context) ([]model.WastageConfig, error) {
	var rows []model.WastageConfig
	err := r.db.WithContext(ctx).Where("active = true").
		Order("bird_type, target_inventory_type, effective_date DESC").
		Find(&rows).Error
	return rows, err
}
