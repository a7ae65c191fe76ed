package service

import (
	"context"
	"errors"
	"time"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error)
	Commit(ctx context.Context, id, userID uuid.UUID) (*dto.PurchaseResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error)
	List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error)
}

type purchaseService struct {
	repo      repository.PurchaseRepository
	storeRepo repository.StoreRepository
	ledger    LedgerService
}

func NewPurchaseService(repo repository.PurchaseRepository, storeRepo repository.StoreRepository, ledger LedgerService) PurchaseService {
	return &purchaseService{repo: repo, storeRepo: storeRepo, ledger: ledger}
}

func (s *purchaseService) Create(ctx context.Context, userID uuid.UUID, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, req.StoreID)
	if err != nil {
		return nil, apierror.NotFound("store %d not found", req.StoreID)
	}
	if store.Status != model.StoreActive {
		return nil, apierror.StoreInactive("store %d is under maintenance", store.ID)
	}

	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apierror.Validation("invalid supplier_id")
	}
	if !req.TotalWeight.IsPositive() || !req.PricePerKg.IsPositive() {
		return nil, apierror.Validation("total_weight and price_per_kg must be positive")
	}

	p := &model.Purchase{
		StoreID:       req.StoreID,
		SupplierID:    supplierID,
		BirdType:      model.BirdType(req.BirdType),
		BirdCount:     req.BirdCount,
		TotalWeight:   req.TotalWeight,
		PricePerKg:    req.PricePerKg,
		TotalAmount:   req.TotalWeight.Mul(req.PricePerKg).Round(2),
		InvoiceNumber: req.InvoiceNumber,
		Notes:         req.Notes,
		Status:        model.PurchaseDraft,
		CreatedBy:     userID,
	}
	if req.InvoiceDate != nil {
		d, err := time.Parse("2006-01-02", *req.InvoiceDate)
		if err != nil {
			return nil, apierror.Validation("invalid invoice_date")
		}
		p.InvoiceDate = &d
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return purchaseToResponse(p), nil
}

func (s *purchaseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("purchase not found")
	}
	if p.Status != model.PurchaseDraft {
		return nil, apierror.Conflict("only DRAFT purchases can be edited")
	}

	if req.BirdCount != nil {
		p.BirdCount = *req.BirdCount
	}
	if req.TotalWeight != nil {
		if !req.TotalWeight.IsPositive() {
			return nil, apierror.Validation("total_weight must be positive")
		}
		p.TotalWeight = *req.TotalWeight
	}
	if req.PricePerKg != nil {
		if !req.PricePerKg.IsPositive() {
			return nil, apierror.Validation("price_per_kg must be positive")
		}
		p.PricePerKg = *req.PricePerKg
	}
	p.TotalAmount = p.TotalWeight.Mul(p.PricePerKg).Round(2)
	if req.InvoiceNumber != nil {
		p.InvoiceNumber = req.InvoiceNumber
	}
	if req.InvoiceDate != nil {
		d, err := time.Parse("2006-01-02", *req.InvoiceDate)
		if err != nil {
			return nil, apierror.Validation("invalid invoice_date")
		}
		p.InvoiceDate = &d
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return purchaseToResponse(p), nil
}

// Commit moves DRAFT→COMMITTED and credits live stock, both in one
// transaction. The guarded status flip makes a concurrent double commit
// resolve to exactly one ledger entry.
func (s *purchaseService) Commit(ctx context.Context, id, userID uuid.UUID) (*dto.PurchaseResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("purchase not found")
	}
	switch p.Status {
	case model.PurchaseCommitted:
		return nil, apierror.Conflict("purchase is already committed")
	case model.PurchaseCancelled:
		return nil, apierror.Conflict("purchase is cancelled")
	}

	// The store may have gone into maintenance since the draft was written.
	store, err := s.storeRepo.FindByID(ctx, p.StoreID)
	if err != nil {
		return nil, apierror.NotFound("store %d not found", p.StoreID)
	}
	if store.Status != model.StoreActive {
		return nil, apierror.StoreInactive("store %d is under maintenance", store.ID)
	}

	now := time.Now().UTC()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		flipped, err := s.repo.MarkCommittedTx(tx, id, userID, now)
		if err != nil {
			return err
		}
		if !flipped {
			return apierror.Conflict("purchase is already committed")
		}
		refType := "PURCHASE"
		_, err = s.ledger.AppendTx(tx, AppendInput{
			StoreID:         p.StoreID,
			BirdType:        p.BirdType,
			InventoryType:   model.StageLive,
			QuantityChange:  p.TotalWeight,
			BirdCountChange: p.BirdCount,
			ReasonCode:      model.ReasonPurchaseReceived,
			RefType:         &refType,
			RefID:           &p.ID,
			UserID:          userID,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	p.Status = model.PurchaseCommitted
	p.CommittedBy = &userID
	p.CommittedAt = &now
	return purchaseToResponse(p), nil
}

func (s *purchaseService) Cancel(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("purchase not found")
	}
	if p.Status != model.PurchaseDraft {
		return apierror.Conflict("only DRAFT purchases can be cancelled")
	}
	return s.repo.UpdateStatus(ctx, id, model.PurchaseCancelled)
}

func (s *purchaseService) Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("purchase not found")
		}
		return nil, err
	}
	return purchaseToResponse(p), nil
}

func (s *purchaseService) List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error) {
	purchases, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		items = append(items, *purchaseToResponse(&purchases[i]))
	}
	return &dto.PurchaseListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func purchaseToResponse(p *model.Purchase) *dto.PurchaseResponse {
	resp := &dto.PurchaseResponse{
		ID:            p.ID.String(),
		StoreID:       p.StoreID,
		SupplierID:    p.SupplierID.String(),
		BirdType:      string(p.BirdType),
		BirdCount:     p.BirdCount,
		TotalWeight:   p.TotalWeight,
		PricePerKg:    p.PricePerKg,
		TotalAmount:   p.TotalAmount,
		InvoiceNumber: p.InvoiceNumber,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.Supplier != nil {
		resp.SupplierName = p.Supplier.Name
	}
	if p.InvoiceDate != nil {
		v := p.InvoiceDate.Format("2006-01-02")
		resp.InvoiceDate = &v
	}
	if p.CommittedBy != nil {
		v := p.CommittedBy.String()
		resp.CommittedBy = &v
	}
	if p.CommittedAt != nil {
		v := p.CommittedAt.Format(time.RFC3339)
		resp.CommittedAt = &v
	}
	return resp
}
