package service

import (
	"context"
	"errors"
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

var hundred = decimal.NewFromInt(100)

type ProcessingService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateProcessingRequest) (*dto.ProcessingResponse, error)
	CalculateYield(ctx context.Context, req dto.YieldPreviewRequest) (*dto.YieldPreviewResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProcessingResponse, error)
	List(ctx context.Context, filter dto.ProcessingFilter) (*dto.ProcessingListResponse, error)

	UpsertWastage(ctx context.Context, userID uuid.UUID, req dto.UpsertWastageRequest) (*dto.WastageConfigResponse, error)
	ListWastage(ctx context.Context) ([]dto.WastageConfigResponse, error)
}

type processingService struct {
	repo      repository.ProcessingRepository
	storeRepo repository.StoreRepository
	ledger    LedgerService
}

func NewProcessingService(repo repository.ProcessingRepository, storeRepo repository.StoreRepository, ledger LedgerService) ProcessingService {
	return &processingService{repo: repo, storeRepo: storeRepo, ledger: ledger}
}

// Create converts live birds into a processed stage. Ledger writes: one debit
// on LIVE for the full input, one credit on the output stage for the credited
// weight, and a zero-quantity WASTAGE marker for the gap between the two.
// Wastage never becomes sellable stock.
func (s *processingService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateProcessingRequest) (*dto.ProcessingResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, req.StoreID)
	if err != nil {
		return nil, apierror.NotFound("store %d not found", req.StoreID)
	}
	if store.Status != model.StoreActive {
		return nil, apierror.StoreInactive("store %d is under maintenance", store.ID)
	}
	if !req.InputWeight.IsPositive() {
		return nil, apierror.Validation("input_weight must be positive")
	}

	var idemKey *uuid.UUID
	if req.IdempotencyKey != nil {
		k, err := uuid.Parse(*req.IdempotencyKey)
		if err != nil {
			return nil, apierror.Validation("invalid idempotency_key")
		}
		idemKey = &k
		if existing, err := s.repo.FindByIdempotencyKey(ctx, k); err == nil {
			return processingToResponse(existing), nil
		}
	}

	procDate, err := time.Parse("2006-01-02", req.ProcessingDate)
	if err != nil {
		return nil, apierror.Validation("invalid processing_date")
	}

	bird := model.BirdType(req.InputBirdType)
	output := model.InventoryType(req.OutputType)
	wastage, err := s.repo.EffectiveWastage(ctx, bird, output, procDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Validation("no wastage configuration for %s → %s on %s", bird, output, req.ProcessingDate)
		}
		return nil, err
	}

	wastageWeight := req.InputWeight.Mul(wastage.Percentage).Div(hundred).Round(3)
	plannedOutput := req.InputWeight.Sub(wastageWeight)

	creditedOutput := plannedOutput
	if req.ActualOutputWeight != nil {
		if req.ActualOutputWeight.IsNegative() || req.ActualOutputWeight.GreaterThan(req.InputWeight) {
			return nil, apierror.Validation("actual_output_weight must be between 0 and input_weight")
		}
		creditedOutput = *req.ActualOutputWeight
	}

	entry := &model.ProcessingEntry{
		StoreID:            req.StoreID,
		ProcessingDate:     procDate,
		InputBirdType:      bird,
		OutputType:         output,
		InputWeight:        req.InputWeight,
		InputBirdCount:     req.InputBirdCount,
		WastagePercentage:  wastage.Percentage,
		WastageWeight:      wastageWeight,
		OutputWeight:       plannedOutput,
		ActualOutputWeight: req.ActualOutputWeight,
		IdempotencyKey:     idemKey,
		ProcessedBy:        userID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, entry); err != nil {
			return err
		}
		refType := "PROCESSING"
		if _, err := s.ledger.AppendTx(tx, AppendInput{
			StoreID:         req.StoreID,
			BirdType:        bird,
			InventoryType:   model.StageLive,
			QuantityChange:  req.InputWeight.Neg(),
			BirdCountChange: -req.InputBirdCount,
			ReasonCode:      model.ReasonProcessingDebit,
			RefType:         &refType,
			RefID:           &entry.ID,
			UserID:          userID,
		}); err != nil {
			return err
		}
		if !creditedOutput.IsZero() {
			if _, err := s.ledger.AppendTx(tx, AppendInput{
				StoreID:        req.StoreID,
				BirdType:       bird,
				InventoryType:  output,
				QuantityChange: creditedOutput,
				ReasonCode:     model.ReasonProcessingCredit,
				RefType:        &refType,
				RefID:          &entry.ID,
				UserID:         userID,
			}); err != nil {
				return err
			}
		}
		// Zero-quantity audit marker: wastage never becomes stock, but the
		// ledger still shows where the missing kilograms went.
		wastageNote := fmt.Sprintf("wastage %s kg at %s%%", wastageWeight, wastage.Percentage)
		_, err := s.ledger.AppendTx(tx, AppendInput{
			StoreID:       req.StoreID,
			BirdType:      bird,
			InventoryType: output,
			ReasonCode:    model.ReasonWastage,
			RefType:       &refType,
			RefID:         &entry.ID,
			UserID:        userID,
			Notes:         &wastageNote,
		})
		return err
	})
	if txErr != nil {
		// A concurrent duplicate submit loses the unique race on the
		// idempotency key; return the winner's entry.
		if idemKey != nil {
			if existing, findErr := s.repo.FindByIdempotencyKey(ctx, *idemKey); findErr == nil {
				return processingToResponse(existing), nil
			}
		}
		return nil, txErr
	}
	return processingToResponse(entry), nil
}

// CalculateYield previews the wastage math for the counter before anything is
// recorded. Same formula as Create, no writes.
func (s *processingService) CalculateYield(ctx context.Context, req dto.YieldPreviewRequest) (*dto.YieldPreviewResponse, error) {
	if !req.InputWeight.IsPositive() {
		return nil, apierror.Validation("input_weight must be positive")
	}
	onDate := time.Now().UTC()
	if req.Date != "" {
		var err error
		onDate, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, apierror.Validation("invalid date")
		}
	}

	bird := model.BirdType(req.BirdType)
	output := model.InventoryType(req.OutputType)
	wastage, err := s.repo.EffectiveWastage(ctx, bird, output, onDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Validation("no wastage configuration for %s → %s", bird, output)
		}
		return nil, err
	}

	wastageWeight := req.InputWeight.Mul(wastage.Percentage).Div(hundred).Round(3)
	return &dto.YieldPreviewResponse{
		BirdType:          req.BirdType,
		OutputType:        req.OutputType,
		InputWeight:       req.InputWeight,
		WastagePercentage: wastage.Percentage,
		WastageWeight:     wastageWeight,
		PlannedOutput:     req.InputWeight.Sub(wastageWeight),
	}, nil
}

func (s *processingService) Get(ctx context.Context, id uuid.UUID) (*dto.ProcessingResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("processing entry not found")
	}
	return processingToResponse(e), nil
}

func (s *processingService) List(ctx context.Context, filter dto.ProcessingFilter) (*dto.ProcessingListResponse, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProcessingResponse, 0, len(entries))
	for i := range entries {
		items = append(items, *processingToResponse(&entries[i]))
	}
	return &dto.ProcessingListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *processingService) UpsertWastage(ctx context.Context, userID uuid.UUID, req dto.UpsertWastageRequest) (*dto.WastageConfigResponse, error) {
	pct := req.Percentage
	if pct.IsNegative() || pct.GreaterThanOrEqual(hundred) {
		return nil, apierror.Validation("percentage must be in [0, 100)")
	}
	effDate, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		return nil, apierror.Validation("invalid effective_date")
	}
	w := &model.WastageConfig{
		BirdType:      model.BirdType(req.BirdType),
		TargetType:    model.InventoryType(req.TargetType),
		Percentage:    pct,
		EffectiveDate: effDate,
		Active:        true,
		CreatedBy:     &userID,
	}
	if err := s.repo.CreateWastage(ctx, w); err != nil {
		return nil, err
	}
	return wastageToResponse(w), nil
}

func (s *processingService) ListWastage(ctx context.Context) ([]dto.WastageConfigResponse, error) {
	rows, err := s.repo.ListWastage(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WastageConfigResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *wastageToResponse(&rows[i]))
	}
	return out, nil
}

func processingToResponse(e *model.ProcessingEntry) *dto.ProcessingResponse {
	return &dto.ProcessingResponse{
		ID:                 e.ID.String(),
		StoreID:            e.StoreID,
		ProcessingDate:     e.ProcessingDate.Format("2006-01-02"),
		InputBirdType:      string(e.InputBirdType),
		OutputType:         string(e.OutputType),
		InputWeight:        e.InputWeight,
		InputBirdCount:     e.InputBirdCount,
		WastagePercentage:  e.WastagePercentage,
		WastageWeight:      e.WastageWeight,
		OutputWeight:       e.OutputWeight,
		ActualOutputWeight: e.ActualOutputWeight,
		ProcessedBy:        e.ProcessedBy.String(),
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
	}
}

func wastageToResponse(w *model.WastageConfig) *dto.WastageConfigResponse {
	return &dto.WastageConfigResponse{
		ID:            w.ID.String(),
		BirdType:      string(w.BirdType),
		TargetType:    string(w.TargetType),
		Percentage:    w.Percentage,
		EffectiveDate: w.EffectiveDate.Format("2006-01-02"),
		Active:        w.Active,
	}
}
