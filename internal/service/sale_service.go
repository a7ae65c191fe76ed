package service

import (
	"context"
	"fmt"
	"time"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Create(ctx context.Context, cashierID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	DailySummary(ctx context.Context, filter dto.SaleSummaryFilter) (*dto.SaleDailySummaryResponse, error)
}

type saleService struct {
	repo      repository.SaleRepository
	skuRepo   repository.SKURepository
	storeRepo repository.StoreRepository
	ledger    LedgerService
	clock     *StoreClock
}

func NewSaleService(repo repository.SaleRepository, skuRepo repository.SKURepository, storeRepo repository.StoreRepository, ledger LedgerService, clock *StoreClock) SaleService {
	return &saleService{repo: repo, skuRepo: skuRepo, storeRepo: storeRepo, ledger: ledger, clock: clock}
}

// Create registers a sale and debits stock per line, all in one transaction.
// The sufficiency check inside the ledger append is what rejects a double
// sell: whichever concurrent sale locks the projection row second sees the
// already reduced balance.
func (s *saleService) Create(ctx context.Context, cashierID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, req.StoreID)
	if err != nil {
		return nil, apierror.NotFound("store %d not found", req.StoreID)
	}
	if store.Status != model.StoreActive {
		return nil, apierror.StoreInactive("store %d is under maintenance", store.ID)
	}

	var idemKey *uuid.UUID
	if req.IdempotencyKey != nil {
		k, err := uuid.Parse(*req.IdempotencyKey)
		if err != nil {
			return nil, apierror.Validation("invalid idempotency_key")
		}
		idemKey = &k
		if existing, err := s.repo.FindByIdempotencyKey(ctx, k); err == nil {
			return saleToResponse(existing), nil
		}
	}

	// Resolve SKUs and price lines outside the transaction.
	type resolvedLine struct {
		sku    *model.SKU
		weight decimal.Decimal
		birds  int
		total  decimal.Decimal
	}
	lines := make([]resolvedLine, 0, len(req.Items))
	totalAmount := decimal.Zero
	for _, item := range req.Items {
		skuID, err := uuid.Parse(item.SKUID)
		if err != nil {
			return nil, apierror.Validation("invalid sku_id %q", item.SKUID)
		}
		sku, err := s.skuRepo.FindByID(ctx, skuID)
		if err != nil {
			return nil, apierror.NotFound("sku %s not found", item.SKUID)
		}
		if !sku.Active {
			return nil, apierror.Validation("sku %s is inactive", sku.Code)
		}
		if !item.Weight.IsPositive() {
			return nil, apierror.Validation("item weight must be positive")
		}
		if sku.InventoryType == model.StageLive && item.BirdCount < 1 {
			return nil, apierror.Validation("bird_count is required for live-bird sku %s", sku.Code)
		}
		lineTotal := item.Weight.Mul(sku.PricePerKg).Round(2)
		totalAmount = totalAmount.Add(lineTotal)
		lines = append(lines, resolvedLine{sku: sku, weight: item.Weight, birds: item.BirdCount, total: lineTotal})
	}

	saleType := model.SalePOS
	if req.SaleType != "" {
		saleType = model.SaleType(req.SaleType)
	}

	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		receiptNum, err := s.repo.NextReceiptNumber(ctx, tx)
		if err != nil {
			return err
		}

		sale = model.Sale{
			StoreID:        req.StoreID,
			CashierID:      cashierID,
			ReceiptNumber:  fmt.Sprintf("R%d-%06d", req.StoreID, receiptNum),
			TotalAmount:    totalAmount,
			PaymentMethod:  model.PaymentMethod(req.PaymentMethod),
			SaleType:       saleType,
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			Notes:          req.Notes,
			IdempotencyKey: idemKey,
		}
		for _, l := range lines {
			item := model.SaleItem{
				SKUID:         l.sku.ID,
				Weight:        l.weight,
				PriceSnapshot: l.sku.PricePerKg,
				Total:         l.total,
			}
			if l.sku.InventoryType == model.StageLive {
				item.BirdCount = l.birds
			}
			sale.Items = append(sale.Items, item)
		}
		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}

		refType := "SALE"
		for _, l := range lines {
			birdDebit := 0
			if l.sku.InventoryType == model.StageLive {
				birdDebit = -l.birds
			}
			if _, err := s.ledger.AppendTx(tx, AppendInput{
				StoreID:         req.StoreID,
				BirdType:        l.sku.BirdType,
				InventoryType:   l.sku.InventoryType,
				QuantityChange:  l.weight.Neg(),
				BirdCountChange: birdDebit,
				ReasonCode:      model.ReasonSaleDebit,
				RefType:         &refType,
				RefID:           &sale.ID,
				UserID:          cashierID,
			}); err != nil {
				return fmt.Errorf("debiting stock for sku %s: %w", l.sku.Code, err)
			}
		}
		return nil
	})
	if txErr != nil {
		if idemKey != nil {
			if existing, findErr := s.repo.FindByIdempotencyKey(ctx, *idemKey); findErr == nil {
				return saleToResponse(existing), nil
			}
		}
		return nil, txErr
	}

	resp := saleToResponse(&sale)
	for i, l := range lines {
		resp.Items[i].SKUCode = l.sku.Code
		resp.Items[i].SKUName = l.sku.Name
	}
	return resp, nil
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("sale not found")
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, filter.StoreID)
	if err != nil {
		return nil, apierror.NotFound("store %d not found", filter.StoreID)
	}

	date := s.clock.Today(store)
	if filter.Date != "" {
		date, err = time.Parse("2006-01-02", filter.Date)
		if err != nil {
			return nil, apierror.Validation("invalid date")
		}
	}
	dayStart, dayEnd := s.clock.DayWindow(store, date)

	sales, total, err := s.repo.List(ctx, filter, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// DailySummary totals one store-local day's takings by payment method.
func (s *saleService) DailySummary(ctx context.Context, filter dto.SaleSummaryFilter) (*dto.SaleDailySummaryResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, filter.StoreID)
	if err != nil {
		return nil, apierror.NotFound("store %d not found", filter.StoreID)
	}

	date := s.clock.Today(store)
	if filter.Date != "" {
		date, err = time.Parse("2006-01-02", filter.Date)
		if err != nil {
			return nil, apierror.Validation("invalid date")
		}
	}
	dayStart, dayEnd := s.clock.DayWindow(store, date)

	totals, err := s.repo.TotalsByPaymentMethod(ctx, filter.StoreID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleDailySummaryResponse{
		StoreID:  filter.StoreID,
		Date:     date.Format("2006-01-02"),
		ByMethod: make(map[string]decimal.Decimal, len(totals)),
		Total:    decimal.Zero,
	}
	for _, t := range totals {
		resp.ByMethod[string(t.PaymentMethod)] = t.Total
		resp.Total = resp.Total.Add(t.Total)
	}
	return resp, nil
}

func saleToResponse(v *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		r := dto.SaleItemResponse{
			SKUID:         item.SKUID.String(),
			Weight:        item.Weight,
			BirdCount:     item.BirdCount,
			PriceSnapshot: item.PriceSnapshot,
			Total:         item.Total,
		}
		if item.SKU != nil {
			r.SKUCode = item.SKU.Code
			r.SKUName = item.SKU.Name
		}
		items = append(items, r)
	}
	return &dto.SaleResponse{
		ID:            v.ID.String(),
		StoreID:       v.StoreID,
		ReceiptNumber: v.ReceiptNumber,
		CashierID:     v.CashierID.String(),
		Items:         items,
		TotalAmount:   v.TotalAmount,
		PaymentMethod: string(v.PaymentMethod),
		SaleType:      string(v.SaleType),
		CustomerName:  v.CustomerName,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
}
