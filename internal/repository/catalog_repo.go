package repository

import (
	"context"

	"poultryops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SKURepository interface {
	Create(ctx context.Context, s *model.SKU) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SKU, error)
	FindByCode(ctx context.Context, code string) (*model.SKU, error)
	List(ctx context.Context, activeOnly bool) ([]model.SKU, error)
	Update(ctx context.Context, s *model.SKU) error
}

type skuRepo struct{ db *gorm.DB }

func NewSKURepository(db *gorm.DB) SKURepository { return &skuRepo{db: db} }

func (r *skuRepo) Create(ctx context.Context, s *model.SKU) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *skuRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SKU, error) {
	var s model.SKU
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *skuRepo) FindByCode(ctx context.Context, code string) (*model.SKU, error) {
	var s model.SKU
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&s).Error
	return &s, err
}

func (r *skuRepo) List(ctx context.Context, activeOnly bool) ([]model.SKU, error) {
	var skus []model.SKU
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = true")
	}
	err := q.Order("code").Find(&skus).Error
	return skus, err
}

func (r *skuRepo) Update(ctx context.Context, s *model.SKU) error {
	return r.db.WithContext(ctx).Save(s).Error
}

type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context) ([]model.Supplier, error)
	Update(ctx context.Context, s *model.Supplier) error
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *supplierRepo) List(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).Order("name").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}
