package repository

import (
	"context"

	"poultryops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(ctx context.Context, s *model.Store) error
	FindByID(ctx context.Context, id int) (*model.Store, error)
	Update(ctx context.Context, s *model.Store) error
	List(ctx context.Context) ([]model.Store, error)
	ListActive(ctx context.Context) ([]model.Store, error)

	AssignStaff(ctx context.Context, a *model.StoreStaff) error
	RemoveStaff(ctx context.Context, storeID int, userID uuid.UUID) error
	ListStaff(ctx context.Context, storeID int) ([]model.StoreStaff, error)
	// ManagerIDs returns the users assigned to the store with the manager role.
	ManagerIDs(ctx context.Context, storeID int) ([]uuid.UUID, error)
	// StaffIDs returns every user assigned to the store, any role.
	StaffIDs(ctx context.Context, storeID int) ([]uuid.UUID, error)
	IsAssigned(ctx context.Context, storeID int, userID uuid.UUID) (bool, error)
}

type storeRepo struct{ db *gorm.DB }

func NewStoreRepository(db *gorm.DB) StoreRepository { return &storeRepo{db: db} }

func (r *storeRepo) Create(ctx context.Context, s *model.Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *storeRepo) FindByID(ctx context.Context, id int) (*model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *storeRepo) Update(ctx context.Context, s *model.Store) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *storeRepo) List(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Order("id").Find(&stores).Error
	return stores, err
}

func (r *storeRepo) ListActive(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Where("status = ?", model.StoreActive).Order("id").Find(&stores).Error
	return stores, err
}

func (r *storeRepo) AssignStaff(ctx context.Context, a *model.StoreStaff) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *storeRepo) RemoveStaff(ctx context.Context, storeID int, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		Delete(&model.StoreStaff{}).Error
}

func (r *storeRepo) ListStaff(ctx context.Context, storeID int) ([]model.StoreStaff, error) {
	var staff []model.StoreStaff
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Find(&staff).Error
	return staff, err
}

func (r *storeRepo) ManagerIDs(ctx context.Context, storeID int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.StoreStaff{}).
		Where("store_id = ? AND role = ?", storeID, model.RoleManager).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *storeRepo) StaffIDs(ctx context.Context, storeID int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.StoreStaff{}).
		Where("store_id = ?", storeID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *storeRepo) IsAssigned(ctx context.Context, storeID int, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StoreStaff{}).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		Count(&count).Error
	return count > 0, err
}
