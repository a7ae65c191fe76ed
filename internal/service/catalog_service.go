package service

import (
	"context"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/google/uuid"
)

// CatalogService covers the reference data behind the movement flows: stores
// and their staff assignments, suppliers, and sellable SKUs.
type CatalogService interface {
	CreateStore(ctx context.Context, req dto.CreateStoreRequest) (*dto.StoreResponse, error)
	UpdateStore(ctx context.Context, id int, req dto.UpdateStoreRequest) (*dto.StoreResponse, error)
	GetStore(ctx context.Context, id int) (*dto.StoreResponse, error)
	ListStores(ctx context.Context) ([]dto.StoreResponse, error)
	AssignStaff(ctx context.Context, storeID int, req dto.AssignStaffRequest) error
	RemoveStaff(ctx context.Context, storeID int, userID uuid.UUID) error

	CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error)

	CreateSKU(ctx context.Context, req dto.CreateSKURequest) (*dto.SKUResponse, error)
	UpdateSKU(ctx context.Context, id uuid.UUID, req dto.UpdateSKURequest) (*dto.SKUResponse, error)
	ListSKUs(ctx context.Context, activeOnly bool) ([]dto.SKUResponse, error)
}

type catalogService struct {
	storeRepo    repository.StoreRepository
	supplierRepo repository.SupplierRepository
	skuRepo      repository.SKURepository
	userRepo     repository.UserRepository
	defaultTZ    string
}

func NewCatalogService(
	storeRepo repository.StoreRepository,
	supplierRepo repository.SupplierRepository,
	skuRepo repository.SKURepository,
	userRepo repository.UserRepository,
	defaultTZ string,
) CatalogService {
	return &catalogService{
		storeRepo:    storeRepo,
		supplierRepo: supplierRepo,
		skuRepo:      skuRepo,
		userRepo:     userRepo,
		defaultTZ:    defaultTZ,
	}
}

func (s *catalogService) CreateStore(ctx context.Context, req dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	tz := req.Timezone
	if tz == "" {
		tz = s.defaultTZ
	}
	store := &model.Store{
		Name:     req.Name,
		Address:  req.Address,
		Timezone: tz,
		Status:   model.StoreActive,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}
	return storeToResponse(store), nil
}

func (s *catalogService) UpdateStore(ctx context.Context, id int, req dto.UpdateStoreRequest) (*dto.StoreResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("store %d not found", id)
	}
	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Address != nil {
		store.Address = req.Address
	}
	if req.Timezone != nil {
		store.Timezone = *req.Timezone
	}
	if req.Status != nil {
		store.Status = model.StoreStatus(*req.Status)
	}
	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, err
	}
	return storeToResponse(store), nil
}

func (s *catalogService) GetStore(ctx context.Context, id int) (*dto.StoreResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("store %d not found", id)
	}
	return storeToResponse(store), nil
}

func (s *catalogService) ListStores(ctx context.Context) ([]dto.StoreResponse, error) {
	stores, err := s.storeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StoreResponse, 0, len(stores))
	for i := range stores {
		out = append(out, *storeToResponse(&stores[i]))
	}
	return out, nil
}

func (s *catalogService) AssignStaff(ctx context.Context, storeID int, req dto.AssignStaffRequest) error {
	if _, err := s.storeRepo.FindByID(ctx, storeID); err != nil {
		return apierror.NotFound("store %d not found", storeID)
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apierror.Validation("invalid user_id")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return apierror.NotFound("user not found")
	}
	assigned, err := s.storeRepo.IsAssigned(ctx, storeID, userID)
	if err != nil {
		return err
	}
	if assigned {
		return apierror.Conflict("user is already assigned to store %d", storeID)
	}
	return s.storeRepo.AssignStaff(ctx, &model.StoreStaff{
		StoreID: storeID,
		UserID:  userID,
		Role:    req.Role,
	})
}

func (s *catalogService) RemoveStaff(ctx context.Context, storeID int, userID uuid.UUID) error {
	return s.storeRepo.RemoveStaff(ctx, storeID, userID)
}

func (s *catalogService) CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := &model.Supplier{
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  "ACTIVE",
	}
	if err := s.supplierRepo.Create(ctx, sup); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *catalogService) ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.supplierRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, *supplierToResponse(&suppliers[i]))
	}
	return out, nil
}

func (s *catalogService) CreateSKU(ctx context.Context, req dto.CreateSKURequest) (*dto.SKUResponse, error) {
	if !req.PricePerKg.IsPositive() {
		return nil, apierror.Validation("price_per_kg must be positive")
	}
	sku := &model.SKU{
		Code:          req.Code,
		Name:          req.Name,
		BirdType:      model.BirdType(req.BirdType),
		InventoryType: model.InventoryType(req.InventoryType),
		Unit:          "kg",
		PricePerKg:    req.PricePerKg,
		Active:        true,
	}
	if err := s.skuRepo.Create(ctx, sku); err != nil {
		return nil, apierror.Conflict("sku code %s already exists", req.Code)
	}
	return skuToResponse(sku), nil
}

func (s *catalogService) UpdateSKU(ctx context.Context, id uuid.UUID, req dto.UpdateSKURequest) (*dto.SKUResponse, error) {
	sku, err := s.skuRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("sku not found")
	}
	if req.Name != nil {
		sku.Name = *req.Name
	}
	if req.PricePerKg != nil {
		if !req.PricePerKg.IsPositive() {
			return nil, apierror.Validation("price_per_kg must be positive")
		}
		sku.PricePerKg = *req.PricePerKg
	}
	if req.Active != nil {
		sku.Active = *req.Active
	}
	if err := s.skuRepo.Update(ctx, sku); err != nil {
		return nil, err
	}
	return skuToResponse(sku), nil
}

func (s *catalogService) ListSKUs(ctx context.Context, activeOnly bool) ([]dto.SKUResponse, error) {
	skus, err := s.skuRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SKUResponse, 0, len(skus))
	for i := range skus {
		out = append(out, *skuToResponse(&skus[i]))
	}
	return out, nil
}

func storeToResponse(s *model.Store) *dto.StoreResponse {
	return &dto.StoreResponse{
		ID:       s.ID,
		Name:     s.Name,
		Address:  s.Address,
		Timezone: s.Timezone,
		Status:   string(s.Status),
	}
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:      s.ID.String(),
		Name:    s.Name,
		Contact: s.Contact,
		Phone:   s.Phone,
		Address: s.Address,
		Status:  s.Status,
	}
}

func skuToResponse(s *model.SKU) *dto.SKUResponse {
	return &dto.SKUResponse{
		ID:            s.ID.String(),
		Code:          s.Code,
		Name:          s.Name,
		BirdType:      string(s.BirdType),
		InventoryType: string(s.InventoryType),
		Unit:          s.Unit,
		PricePerKg:    s.PricePerKg,
		Active:        s.Active,
	}
}
