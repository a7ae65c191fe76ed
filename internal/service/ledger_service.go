package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tolerances below which a stock debit is allowed to drain a balance to zero
// without tripping the sufficiency check. Scale-level noise, not real stock.
var (
	weightTolerance = decimal.RequireFromString("0.001") // kg
	countTolerance  = 0                                  // birds are integral
)

const stockCacheTTL = 30 * time.Second

// AppendInput is one ledger append. Quantity and bird count carry the sign of
// the movement already resolved against the reason code's direction.
type AppendInput struct {
	StoreID         int
	BirdType        model.BirdType
	InventoryType   model.InventoryType
	QuantityChange  decimal.Decimal
	BirdCountChange int
	ReasonCode      string
	RefType         *string
	RefID           *uuid.UUID
	UserID          uuid.UUID
	Notes           *string
}

type LedgerService interface {
	// Append opens its own transaction. AppendTx joins the caller's.
	Append(ctx context.Context, in AppendInput) (*model.LedgerEntry, error)
	AppendTx(tx *gorm.DB, in AppendInput) (*model.LedgerEntry, error)
	ManualAdjust(ctx context.Context, userID uuid.UUID, req dto.ManualAdjustRequest) (*dto.LedgerEntryResponse, error)
	OpeningBalance(ctx context.Context, userID uuid.UUID, req dto.OpeningBalanceRequest) (*dto.LedgerEntryResponse, error)
	StockSummary(ctx context.Context, storeID int) (*dto.StockSummaryResponse, error)
	ListLedger(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error)
	RebuildProjection(ctx context.Context, storeID int) (*dto.RebuildProjectionResponse, error)
}

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	stockRepo  repository.StockRepository
	rdb        *redis.Client
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, stockRepo repository.StockRepository, rdb *redis.Client) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo, stockRepo: stockRepo, rdb: rdb}
}

func (s *ledgerService) Append(ctx context.Context, in AppendInput) (*model.LedgerEntry, error) {
	var entry *model.LedgerEntry
	err := runTx(ctx, s.ledgerRepo.DB(), func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.AppendTx(tx, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStockCache(ctx, in.StoreID)
	return entry, nil
}

// AppendTx is the single write path into the ledger. It locks the projection
// row for the (store, bird, stage) key, verifies debits will not overdraw,
// then writes the entry and the projection delta together. Everything that
// moves stock anywhere in the system funnels through here.
func (s *ledgerService) AppendTx(tx *gorm.DB, in AppendInput) (*model.LedgerEntry, error) {
	info, ok := model.ReasonCodes[in.ReasonCode]
	if !ok {
		return nil, apierror.Validation("unknown reason code %q", in.ReasonCode)
	}
	if !in.BirdType.Valid() || !in.InventoryType.Valid() {
		return nil, apierror.Validation("invalid bird type or inventory type")
	}
	if info.RequiresRef && (in.RefType == nil || in.RefID == nil) {
		return nil, apierror.Validation("reason code %s requires a reference", in.ReasonCode)
	}
	// WASTAGE rows are audit markers: the weight already left through the
	// processing debit, so they carry zero quantity by construction.
	if in.QuantityChange.IsZero() && in.BirdCountChange == 0 && in.ReasonCode != model.ReasonWastage {
		return nil, apierror.Validation("ledger entry must move weight or bird count")
	}

	// Sign must agree with the registered direction.
	switch info.Direction {
	case model.DirectionCredit:
		if in.QuantityChange.IsNegative() || in.BirdCountChange < 0 {
			return nil, apierror.Validation("reason code %s is a credit, got negative delta", in.ReasonCode)
		}
	case model.DirectionDebit:
		if in.QuantityChange.IsPositive() || in.BirdCountChange > 0 {
			return nil, apierror.Validation("reason code %s is a debit, got positive delta", in.ReasonCode)
		}
	}

	row, err := s.stockRepo.LockForUpdateTx(tx, in.StoreID, in.BirdType, in.InventoryType)
	if err != nil {
		return nil, fmt.Errorf("locking stock row: %w", err)
	}

	if info.Direction == model.DirectionDebit {
		newQty := row.CurrentQty.Add(in.QuantityChange)
		if newQty.LessThan(weightTolerance.Neg()) {
			return nil, apierror.InsufficientStock(
				"insufficient %s %s stock: have %s kg, need %s kg",
				in.BirdType, in.InventoryType, row.CurrentQty, in.QuantityChange.Abs())
		}
		if row.CurrentBirdCount+in.BirdCountChange < -countTolerance {
			return nil, apierror.InsufficientStock(
				"insufficient %s %s birds: have %d, need %d",
				in.BirdType, in.InventoryType, row.CurrentBirdCount, -in.BirdCountChange)
		}
	}

	entry := &model.LedgerEntry{
		StoreID:         in.StoreID,
		BirdType:        in.BirdType,
		InventoryType:   in.InventoryType,
		QuantityChange:  in.QuantityChange,
		BirdCountChange: in.BirdCountChange,
		ReasonCode:      in.ReasonCode,
		RefType:         in.RefType,
		RefID:           in.RefID,
		UserID:          in.UserID,
		Notes:           in.Notes,
	}
	if err := s.ledgerRepo.CreateTx(tx, entry); err != nil {
		return nil, fmt.Errorf("appending ledger entry: %w", err)
	}
	if err := s.stockRepo.ApplyDeltaTx(tx, row, entry); err != nil {
		return nil, fmt.Errorf("updating stock projection: %w", err)
	}
	return entry, nil
}

func (s *ledgerService) ManualAdjust(ctx context.Context, userID uuid.UUID, req dto.ManualAdjustRequest) (*dto.LedgerEntryResponse, error) {
	reason := model.ReasonAdjustmentCredit
	qty := req.WeightKg
	count := req.BirdCount
	if req.Direction == "DEBIT" {
		reason = model.ReasonAdjustmentDebit
		qty = req.WeightKg.Neg()
		count = -req.BirdCount
	}
	entry, err := s.Append(ctx, AppendInput{
		StoreID:         req.StoreID,
		BirdType:        model.BirdType(req.BirdType),
		InventoryType:   model.InventoryType(req.InventoryType),
		QuantityChange:  qty,
		BirdCountChange: count,
		ReasonCode:      reason,
		UserID:          userID,
		Notes:           &req.Reason,
	})
	if err != nil {
		return nil, err
	}
	resp := ledgerEntryToResponse(entry)
	return &resp, nil
}

func (s *ledgerService) OpeningBalance(ctx context.Context, userID uuid.UUID, req dto.OpeningBalanceRequest) (*dto.LedgerEntryResponse, error) {
	entry, err := s.Append(ctx, AppendInput{
		StoreID:         req.StoreID,
		BirdType:        model.BirdType(req.BirdType),
		InventoryType:   model.InventoryType(req.InventoryType),
		QuantityChange:  req.WeightKg,
		BirdCountChange: req.BirdCount,
		ReasonCode:      model.ReasonOpeningBalance,
		UserID:          userID,
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, err
	}
	resp := ledgerEntryToResponse(entry)
	return &resp, nil
}

func (s *ledgerService) StockSummary(ctx context.Context, storeID int) (*dto.StockSummaryResponse, error) {
	if cached := s.cachedStockSummary(ctx, storeID); cached != nil {
		return cached, nil
	}

	rows, err := s.stockRepo.GetAll(ctx, storeID)
	if err != nil {
		return nil, err
	}
	resp := &dto.StockSummaryResponse{StoreID: storeID, Levels: make([]dto.StockLevelResponse, 0, len(rows))}
	for _, r := range rows {
		resp.Levels = append(resp.Levels, dto.StockLevelResponse{
			BirdType:      string(r.BirdType),
			InventoryType: string(r.InventoryType),
			WeightKg:      r.CurrentQty,
			BirdCount:     r.CurrentBirdCount,
			UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
		})
	}
	s.cacheStockSummary(ctx, storeID, resp)
	return resp, nil
}

func (s *ledgerService) ListLedger(ctx context.Context, filter dto.LedgerFilter) (*dto.LedgerListResponse, error) {
	entries, total, err := s.ledgerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, ledgerEntryToResponse(&e))
	}
	return &dto.LedgerListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// RebuildProjection folds the full ledger for a store and swaps the
// projection rows in one transaction. Recovery tool, not a routine path.
func (s *ledgerService) RebuildProjection(ctx context.Context, storeID int) (*dto.RebuildProjectionResponse, error) {
	sums, err := s.ledgerRepo.SumByKey(ctx, storeID)
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, s.ledgerRepo.DB(), func(tx *gorm.DB) error {
		return s.stockRepo.ReplaceAllTx(tx, storeID, sums)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStockCache(ctx, storeID)
	log.Info().Int("store_id", storeID).Int("rows", len(sums)).Msg("stock projection rebuilt")
	return &dto.RebuildProjectionResponse{StoreID: storeID, RowsRebuilt: len(sums)}, nil
}

// ── Redis cache ──────────────────────────────────────────────────────────────

func stockCacheKey(storeID int) string { return fmt.Sprintf("stock:summary:%d", storeID) }

func (s *ledgerService) cachedStockSummary(ctx context.Context, storeID int) *dto.StockSummaryResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, stockCacheKey(storeID)).Result()
	if err != nil {
		return nil
	}
	var resp dto.StockSummaryResponse
	if json.Unmarshal([]byte(raw), &resp) != nil {
		return nil
	}
	return &resp
}

func (s *ledgerService) cacheStockSummary(ctx context.Context, storeID int, resp *dto.StockSummaryResponse) {
	if s.rdb == nil {
		return
	}
	if raw, err := json.Marshal(resp); err == nil {
		_ = s.rdb.Set(ctx, stockCacheKey(storeID), raw, stockCacheTTL).Err()
	}
}

func (s *ledgerService) invalidateStockCache(ctx context.Context, storeID int) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, stockCacheKey(storeID)).Err()
}

func ledgerEntryToResponse(e *model.LedgerEntry) dto.LedgerEntryResponse {
	var refID *string
	if e.RefID != nil {
		v := e.RefID.String()
		refID = &v
	}
	return dto.LedgerEntryResponse{
		ID:              e.ID.String(),
		StoreID:         e.StoreID,
		BirdType:        string(e.BirdType),
		InventoryType:   string(e.InventoryType),
		QuantityChange:  e.QuantityChange,
		BirdCountChange: e.BirdCountChange,
		ReasonCode:      e.ReasonCode,
		RefType:         e.RefType,
		RefID:           refID,
		UserID:          e.UserID.String(),
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
}
