package repository

import (
	"context"
	"time"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"gorm.io/gorm"
)

// LedgerRepository is append-only by contract: there is no update or delete
// method, matching the immutability of the underlying table.
type LedgerRepository interface {
	CreateTx(tx *gorm.DB, e *model.LedgerEntry) error
	List(ctx context.Context, filter dto.LedgerFilter) ([]model.LedgerEntry, int64, error)
	// SumByKey folds the full ledger for a store into per-(bird,stage) totals.
	// Used by projection rebuild and settlement expectation math.
	SumByKey(ctx context.Context, storeID int) ([]model.CurrentStock, error)
	// SumByKeyBefore folds only entries created strictly before cutoff.
	SumByKeyBefore(ctx context.Context, storeID int, cutoff time.Time) ([]model.CurrentStock, error)
	DB() *gorm.DB
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) DB() *gorm.DB { return r.db }

func (r *ledgerRepo) CreateTx(tx *gorm.DB, e *model.LedgerEntry) error {
	return tx.Create(e).Error
}

func (r *ledgerRepo) List(ctx context.Context, filter dto.LedgerFilter) ([]model.LedgerEntry, int64, error) {
	var entries []model.LedgerEntry
	var total int64

	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).Where("store_id = ?", filter.StoreID)

	if filter.BirdType != "" {
		q = q.Where("bird_type = ?", filter.BirdType)
	}
	if filter.InventoryType != "" {
		q = q.Where("inventory_type = ?", filter.InventoryType)
	}
	if filter.ReasonCode != "" {
		q = q.Where("reason_code = ?", filter.ReasonCode)
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
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepo) SumByKey(ctx context.Context, storeID int) ([]model.CurrentStock, error) {
	return r.sumByKey(ctx, storeID, nil)
}

func (r *ledgerRepo) SumByKeyBefore(ctx context.Context, storeID int, cutoff time.Time) ([]model.CurrentStock, error) {
	return r.sumByKey(ctx, storeID, &cutoff)
}

func (r *ledgerRepo) sumByKey(ctx context.Context, storeID int, cutoff *time.Time) ([]model.CurrentStock, error) {
	var rows []model.CurrentStock
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("store_id, bird_type, inventory_type, COALESCE(SUM(quantity_change),0) AS current_qty, COALESCE(SUM(bird_count_change),0) AS current_bird_count").
		Where("store_id = ?", storeID)
	if cutoff != nil {
		q = q.Where("created_at < ?", *cutoff)
	}
	err := q.Group("store_id, bird_type, inventory_type").Scan(&rows).Error
	return rows, err
}
