package service

import (
	"context"
	"time"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VarianceService interface {
	Resolve(ctx context.Context, id, resolverID uuid.UUID, req dto.ResolveVarianceRequest) (*dto.VarianceLogResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.VarianceLogResponse, error)
	List(ctx context.Context, filter dto.VarianceFilter) (*dto.VarianceListResponse, error)
	ListBySettlement(ctx context.Context, settlementID uuid.UUID) ([]dto.VarianceLogResponse, error)
}

type varianceService struct {
	repo   repository.VarianceRepository
	ledger LedgerService
	points PointsService
}

func NewVarianceService(repo repository.VarianceRepository, ledger LedgerService, points PointsService) VarianceService {
	return &varianceService{repo: repo, ledger: ledger, points: points}
}

// Resolve writes the correcting ledger entry for a settlement discrepancy.
// APPROVE accepts the variance as fact; DEDUCT additionally charges the lost
// weight against a staff member. Resolving an already resolved log is a
// no-op returning the current state, so retries are safe.
func (s *varianceService) Resolve(ctx context.Context, id, resolverID uuid.UUID, req dto.ResolveVarianceRequest) (*dto.VarianceLogResponse, error) {
	var deductFrom *uuid.UUID
	if req.Action == "DEDUCT" {
		if req.DeductFromID == nil {
			return nil, apierror.Validation("deduct_from_id is required for DEDUCT")
		}
		parsed, err := uuid.Parse(*req.DeductFromID)
		if err != nil {
			return nil, apierror.Validation("invalid deduct_from_id")
		}
		deductFrom = &parsed
	}

	var result *model.VarianceLog
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		v, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apierror.NotFound("variance log not found")
		}
		if v.Status != model.VariancePending {
			result = v
			return nil
		}
		if req.Action == "DEDUCT" && v.VarianceType != model.VarianceNegative {
			return apierror.Validation("only negative variances can be deducted")
		}
		if req.Action == "APPROVE" && v.VarianceType != model.VariancePositive {
			return apierror.Validation("only positive variances can be approved")
		}

		refType := "VARIANCE"
		in := AppendInput{
			StoreID:       v.StoreID,
			BirdType:      v.BirdType,
			InventoryType: v.InventoryType,
			RefType:       &refType,
			RefID:         &v.ID,
			UserID:        resolverID,
			Notes:         req.Notes,
		}
		if v.VarianceType == model.VariancePositive {
			in.ReasonCode = model.ReasonVariancePositive
			in.QuantityChange = v.WeightKg.Abs()
			in.BirdCountChange = int(v.BirdCount.Abs().IntPart())
		} else {
			in.ReasonCode = model.ReasonVarianceNegative
			in.QuantityChange = v.WeightKg.Abs().Neg()
			in.BirdCountChange = -int(v.BirdCount.Abs().IntPart())
		}
		if _, err := s.ledger.AppendTx(tx, in); err != nil {
			return err
		}

		now := time.Now().UTC()
		v.ResolvedBy = &resolverID
		v.ResolvedAt = &now
		v.Notes = req.Notes
		if req.Action == "DEDUCT" {
			v.Status = model.VarianceDeducted
			v.DeductedFrom = deductFrom
		} else {
			v.Status = model.VarianceApproved
		}
		result = v
		return s.repo.UpdateTx(tx, v)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Points are awarded after commit and are guarded per variance log, so a
	// replay cannot double-charge.
	if s.points != nil {
		_ = s.points.OnVarianceResolved(ctx, result)
	}
	return varianceToResponse(result), nil
}

func (s *varianceService) Get(ctx context.Context, id uuid.UUID) (*dto.VarianceLogResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("variance log not found")
	}
	return varianceToResponse(v), nil
}

func (s *varianceService) List(ctx context.Context, filter dto.VarianceFilter) (*dto.VarianceListResponse, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VarianceLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, *varianceToResponse(&logs[i]))
	}
	return &dto.VarianceListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *varianceService) ListBySettlement(ctx context.Context, settlementID uuid.UUID) ([]dto.VarianceLogResponse, error) {
	logs, err := s.repo.ListBySettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VarianceLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, *varianceToResponse(&logs[i]))
	}
	return items, nil
}

func varianceToResponse(v *model.VarianceLog) *dto.VarianceLogResponse {
	resp := &dto.VarianceLogResponse{
		ID:            v.ID.String(),
		SettlementID:  v.SettlementID.String(),
		StoreID:       v.StoreID,
		BirdType:      string(v.BirdType),
		InventoryType: string(v.InventoryType),
		VarianceType:  string(v.VarianceType),
		WeightKg:      v.WeightKg,
		BirdCount:     v.BirdCount,
		Status:        string(v.Status),
		Notes:         v.Notes,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
	if v.ResolvedBy != nil {
		s := v.ResolvedBy.String()
		resp.ResolvedBy = &s
	}
	if v.ResolvedAt != nil {
		s := v.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &s
	}
	if v.DeductedFrom != nil {
		s := v.DeductedFrom.String()
		resp.DeductedFrom = &s
	}
	return resp
}
