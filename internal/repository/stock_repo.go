package repository

import (
	"context"
	"errors"

	"poultryops/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository maintains the current_stocks projection. The row-level
// SELECT ... FOR UPDATE taken by LockForUpdateTx is what serializes
// concurrent ledger appends touching the same (store, bird, stage).
type StockRepository interface {
	// LockForUpdateTx locks and returns the projection row, creating a zero
	// row first if none exists yet for the key.
	LockForUpdateTx(tx *gorm.DB, storeID int, bird model.BirdType, stage model.InventoryType) (*model.CurrentStock, error)
	ApplyDeltaTx(tx *gorm.DB, row *model.CurrentStock, e *model.LedgerEntry) error
	GetAll(ctx context.Context, storeID int) ([]model.CurrentStock, error)
	// ReplaceAllTx swaps a store's projection rows wholesale (rebuild path).
	ReplaceAllTx(tx *gorm.DB, storeID int, rows []model.CurrentStock) error
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) LockForUpdateTx(tx *gorm.DB, storeID int, bird model.BirdType, stage model.InventoryType) (*model.CurrentStock, error) {
	var row model.CurrentStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND bird_type = ? AND inventory_type = ?", storeID, bird, stage).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = model.CurrentStock{StoreID: storeID, BirdType: bird, InventoryType: stage}
		// ON CONFLICT DO NOTHING covers the race where two txs insert the
		// seed row at once; the retry then takes the lock normally.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return nil, err
		}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("store_id = ? AND bird_type = ? AND inventory_type = ?", storeID, bird, stage).
			First(&row).Error
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *stockRepo) ApplyDeltaTx(tx *gorm.DB, row *model.CurrentStock, e *model.LedgerEntry) error {
	return tx.Model(&model.CurrentStock{}).
		Where("store_id = ? AND bird_type = ? AND inventory_type = ?", row.StoreID, row.BirdType, row.InventoryType).
		Updates(map[string]interface{}{
			"current_qty":        gorm.Expr("current_qty + ?", e.QuantityChange),
			"current_bird_count": gorm.Expr("current_bird_count + ?", e.BirdCountChange),
		}).Error
}

func (r *stockRepo) GetAll(ctx context.Context, storeID int) ([]model.CurrentStock, error) {
	var rows []model.CurrentStock
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("bird_type, inventory_type").
		Find(&rows).Error
	return rows, err
}

func (r *stockRepo) ReplaceAllTx(tx *gorm.DB, storeID int, rows []model.CurrentStock) error {
	if err := tx.Where("store_id = ?", storeID).Delete(&model.CurrentStock{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
