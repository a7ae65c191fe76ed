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

type TransferService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateTransferRequest) (*dto.TransferResponse, error)
	Receive(ctx context.Context, id, userID uuid.UUID) (*dto.TransferResponse, error)
	Approve(ctx context.Context, id, userID uuid.UUID) (*dto.TransferResponse, error)
	Reject(ctx context.Context, id, userID uuid.UUID, reason string) (*dto.TransferResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error)
	List(ctx context.Context, filter dto.TransferFilter) (*dto.TransferListResponse, error)
}

type transferService struct {
	repo      repository.TransferRepository
	storeRepo repository.StoreRepository
	ledger    LedgerService
}

func NewTransferService(repo repository.TransferRepository, storeRepo repository.StoreRepository, ledger LedgerService) TransferService {
	return &transferService{repo: repo, storeRepo: storeRepo, ledger: ledger}
}

func (s *transferService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if req.FromStoreID == req.ToStoreID {
		return nil, apierror.Validation("source and destination store must differ")
	}
	from, err := s.storeRepo.FindByID(ctx, req.FromStoreID)
	if err != nil {
		return nil, apierror.NotFound("source store %d not found", req.FromStoreID)
	}
	if from.Status != model.StoreActive {
		return nil, apierror.StoreInactive("source store %d is under maintenance", from.ID)
	}
	if _, err := s.storeRepo.FindByID(ctx, req.ToStoreID); err != nil {
		return nil, apierror.NotFound("destination store %d not found", req.ToStoreID)
	}

	stage := model.InventoryType(req.InventoryType)
	if stage == model.StageLive {
		if req.BirdCount < 1 {
			return nil, apierror.Validation("bird_count is required for live transfers")
		}
	} else if !req.WeightKg.IsPositive() {
		return nil, apierror.Validation("weight_kg must be positive")
	}

	transferDate, err := time.Parse("2006-01-02", req.TransferDate)
	if err != nil {
		return nil, apierror.Validation("invalid transfer_date")
	}

	// Unlocked read to fail an obviously overdrawn transfer at the door.
	// Approval re-checks under the row lock before anything moves.
	summary, err := s.ledger.StockSummary(ctx, req.FromStoreID)
	if err != nil {
		return nil, err
	}
	var have dto.StockLevelResponse
	for _, l := range summary.Levels {
		if l.BirdType == req.BirdType && l.InventoryType == req.InventoryType {
			have = l
			break
		}
	}
	if stage == model.StageLive {
		if have.BirdCount < req.BirdCount {
			return nil, apierror.InsufficientStock(
				"insufficient %s LIVE birds at store %d: have %d, need %d",
				req.BirdType, req.FromStoreID, have.BirdCount, req.BirdCount)
		}
	} else if have.WeightKg.LessThan(req.WeightKg) {
		return nil, apierror.InsufficientStock(
			"insufficient %s %s stock at store %d: have %s kg, need %s kg",
			req.BirdType, req.InventoryType, req.FromStoreID, have.WeightKg, req.WeightKg)
	}

	t := &model.StockTransfer{
		FromStoreID:   req.FromStoreID,
		ToStoreID:     req.ToStoreID,
		BirdType:      model.BirdType(req.BirdType),
		InventoryType: stage,
		WeightKg:      req.WeightKg,
		BirdCount:     req.BirdCount,
		TransferDate:  transferDate,
		Status:        model.TransferSent,
		InitiatedBy:   userID,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return transferToResponse(t), nil
}

func (s *transferService) Receive(ctx context.Context, id, userID uuid.UUID) (*dto.TransferResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("transfer not found")
	}
	if t.Status != model.TransferSent {
		return nil, apierror.Conflict("transfer is %s, expected SENT", t.Status)
	}
	now := time.Now().UTC()
	t.Status = model.TransferReceived
	t.ReceivedBy = &userID
	t.ReceivedAt = &now
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return transferToResponse(t), nil
}

// Approve is the only transition that moves stock: source debit and
// destination credit land in the same transaction. The row lock makes a
// double approval read APPROVED and return without writing again.
func (s *transferService) Approve(ctx context.Context, id, userID uuid.UUID) (*dto.TransferResponse, error) {
	var result *model.StockTransfer
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		t, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apierror.NotFound("transfer not found")
		}
		if t.Status == model.TransferApproved {
			result = t // already done, idempotent success
			return nil
		}
		if t.Status != model.TransferReceived {
			return apierror.Conflict("transfer is %s, expected RECEIVED", t.Status)
		}

		refType := "TRANSFER"
		if _, err := s.ledger.AppendTx(tx, AppendInput{
			StoreID:         t.FromStoreID,
			BirdType:        t.BirdType,
			InventoryType:   t.InventoryType,
			QuantityChange:  t.WeightKg.Neg(),
			BirdCountChange: -t.BirdCount,
			ReasonCode:      model.ReasonTransferOut,
			RefType:         &refType,
			RefID:           &t.ID,
			UserID:          userID,
		}); err != nil {
			return err
		}
		if _, err := s.ledger.AppendTx(tx, AppendInput{
			StoreID:         t.ToStoreID,
			BirdType:        t.BirdType,
			InventoryType:   t.InventoryType,
			QuantityChange:  t.WeightKg,
			BirdCountChange: t.BirdCount,
			ReasonCode:      model.ReasonTransferIn,
			RefType:         &refType,
			RefID:           &t.ID,
			UserID:          userID,
		}); err != nil {
			return err
		}

		now := time.Now().UTC()
		t.Status = model.TransferApproved
		t.ApprovedBy = &userID
		t.ApprovedAt = &now
		result = t
		return s.repo.UpdateTx(tx, t)
	})
	if txErr != nil {
		return nil, txErr
	}
	return transferToResponse(result), nil
}

func (s *transferService) Reject(ctx context.Context, id, userID uuid.UUID, reason string) (*dto.TransferResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("transfer not found")
	}
	if t.Status == model.TransferApproved {
		return nil, apierror.Conflict("transfer is already approved")
	}
	if t.Status == model.TransferRejected {
		return transferToResponse(t), nil
	}
	t.Status = model.TransferRejected
	t.RejectionReason = &reason
	t.ApprovedBy = &userID
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return transferToResponse(t), nil
}

func (s *transferService) Get(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("transfer not found")
	}
	return transferToResponse(t), nil
}

func (s *transferService) List(ctx context.Context, filter dto.TransferFilter) (*dto.TransferListResponse, error) {
	transfers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(transfers))
	for i := range transfers {
		items = append(items, *transferToResponse(&transfers[i]))
	}
	return &dto.TransferListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func transferToResponse(t *model.StockTransfer) *dto.TransferResponse {
	resp := &dto.TransferResponse{
		ID:              t.ID.String(),
		FromStoreID:     t.FromStoreID,
		ToStoreID:       t.ToStoreID,
		BirdType:        string(t.BirdType),
		InventoryType:   string(t.InventoryType),
		WeightKg:        t.WeightKg,
		BirdCount:       t.BirdCount,
		TransferDate:    t.TransferDate.Format("2006-01-02"),
		Status:          string(t.Status),
		InitiatedBy:     t.InitiatedBy.String(),
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}
	if t.ReceivedBy != nil {
		v := t.ReceivedBy.String()
		resp.ReceivedBy = &v
	}
	if t.ApprovedBy != nil {
		v := t.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	return resp
}
