package repository

import (
	"context"
	"time"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SoldByStage is the per-(bird,stage) weight sold in a window, used by the
// settlement expectation math.
type SoldByStage struct {
	BirdType      model.BirdType
	InventoryType model.InventoryType
	WeightKg      decimal.Decimal
}

// PaymentTotal is the money taken through one method in a window.
type PaymentTotal struct {
	PaymentMethod model.PaymentMethod
	Total         decimal.Decimal
}

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*model.Sale, error)
	NextReceiptNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, filter dto.SaleFilter, dayStart, dayEnd time.Time) ([]model.Sale, int64, error)
	// TotalsByPaymentMethod aggregates the store's sales inside [from,to).
	TotalsByPaymentMethod(ctx context.Context, storeID int, from, to time.Time) ([]PaymentTotal, error)
	// SoldWeightByStage joins sale items to SKUs to attribute sold kilograms
	// back to (bird type, stage) inside [from,to).
	SoldWeightByStage(ctx context.Context, storeID int, from, to time.Time) ([]SoldByStage, error)
	// HasSales reports whether the store recorded at least one sale in [from,to).
	HasSales(ctx context.Context, storeID int, from, to time.Time) (bool, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.SKU").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) FindByIdempotencyKey(ctx context.Context, key uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.SKU").Where("idempotency_key = ?", key).First(&s).Error
	return &s, err
}

func (r *saleRepo) NextReceiptNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	// PostgreSQL sequence keeps receipt numbers gapless enough and atomic.
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('sales_receipt_seq')").Scan(&num).Error
	return num, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter, dayStart, dayEnd time.Time) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("store_id = ? AND created_at >= ? AND created_at < ?", filter.StoreID, dayStart, dayEnd)
	if filter.PaymentMethod != "" {
		q = q.Where("payment_method = ?", filter.PaymentMethod)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.SKU").Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) TotalsByPaymentMethod(ctx context.Context, storeID int, from, to time.Time) ([]PaymentTotal, error) {
	var rows []PaymentTotal
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("payment_method, COALESCE(SUM(total_amount),0) AS total").
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, from, to).
		Group("payment_method").
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) HasSales(ctx context.Context, storeID int, from, to time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("store_id = ? AND created_at >= ? AND created_at < ?", storeID, from, to).
		Count(&n).Error
	return n > 0, err
}

func (r *saleRepo) SoldWeightByStage(ctx context.Context, storeID int, from, to time.Time) ([]SoldByStage, error) {
	var rows []SoldByStage
	err := r.db.WithContext(ctx).Table("sale_items").
		Select("skus.bird_type, skus.inventory_type, COALESCE(SUM(sale_items.weight),0) AS weight_kg").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN skus ON skus.id = sale_items.sku_id").
		Where("sales.store_id = ? AND sales.created_at >= ? AND sales.created_at < ?", storeID, from, to).
		Group("skus.bird_type, skus.inventory_type").
		Scan(&rows).Error
	return rows, err
}
