package service

import (
	"context"
	"errors"
	"time"

	"poultryops/internal/apierror"
	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"
	"poultryops/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Variances smaller than these are scale noise and do not open variance logs.
var (
	varianceWeightThreshold = decimal.RequireFromString("0.001") // kg
	varianceCountThreshold  = decimal.RequireFromString("0.1")   // birds
)

type SettlementService interface {
	Submit(ctx context.Context, userID uuid.UUID, req dto.SubmitSettlementRequest) (*dto.SettlementResponse, error)
	Recompute(ctx context.Context, id uuid.UUID) (*dto.SettlementResponse, error)
	Approve(ctx context.Context, id, approverID uuid.UUID, req dto.ApproveSettlementRequest) (*dto.SettlementResponse, error)
	Lock(ctx context.Context, id, userID uuid.UUID) (*dto.SettlementResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SettlementResponse, error)
	List(ctx context.Context, filter dto.SettlementFilter) (*dto.SettlementListResponse, error)
	ExpectedValues(ctx context.Context, filter dto.ExpectedValuesFilter) (*dto.ExpectedValuesResponse, error)
}

type settlementService struct {
	repo         repository.SettlementRepository
	varianceRepo repository.VarianceRepository
	ledgerRepo   repository.LedgerRepository
	saleRepo     repository.SaleRepository
	storeRepo    repository.StoreRepository
	points       PointsService
	dispatcher   *worker.Dispatcher
	clock        *StoreClock
}

func NewSettlementService(
	repo repository.SettlementRepository,
	varianceRepo repository.VarianceRepository,
	ledgerRepo repository.LedgerRepository,
	saleRepo repository.SaleRepository,
	storeRepo repository.StoreRepository,
	points PointsService,
	dispatcher *worker.Dispatcher,
	clock *StoreClock,
) SettlementService {
	return &settlementService{
		repo:         repo,
		varianceRepo: varianceRepo,
		ledgerRepo:   ledgerRepo,
		saleRepo:     saleRepo,
		storeRepo:    storeRepo,
		points:       points,
		dispatcher:   dispatcher,
		clock:        clock,
	}
}

// Submit takes the manager's blind count, computes what the ledger says the
// store should hold, and records the gaps. The declared figures are captured
// before any expected numbers are revealed.
func (s *settlementService) Submit(ctx context.Context, userID uuid.UUID, req dto.SubmitSettlementRequest) (*dto.SettlementResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, req.StoreID)
	if err != nil {
		return nil, apierror.NotFound("store %d not found", req.StoreID)
	}

	date, err := time.Parse("2006-01-02", req.SettlementDate)
	if err != nil {
		return nil, apierror.Validation("invalid settlement_date")
	}
	if date.After(s.clock.Today(store)) {
		return nil, apierror.Validation("cannot settle a future date")
	}

	declared, err := parseDeclaredStock(req.DeclaredStock)
	if err != nil {
		return nil, err
	}
	declaredPayments := parseDeclaredPayments(req.DeclaredPayments, req.DeclaredCash)

	existing, findErr := s.repo.FindByStoreAndDate(ctx, req.StoreID, date)
	switch {
	case findErr == nil && existing.Status != model.SettlementDraft:
		return nil, apierror.Conflict("settlement for store %d on %s is already %s", req.StoreID, req.SettlementDate, existing.Status)
	case findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound):
		return nil, findErr
	}

	expectedStock, expectedSales, err := s.computeExpected(ctx, store, date)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	settlement := existing
	if findErr != nil {
		settlement = &model.DailySettlement{StoreID: req.StoreID, SettlementDate: date}
	}
	settlement.DeclaredStock = declared
	settlement.DeclaredCash = req.DeclaredCash
	settlement.DeclaredPayments = declaredPayments
	settlement.ExpectedStock = expectedStock
	settlement.ExpectedSales = expectedSales
	settlement.CalculatedVariance = computeVariance(declared, expectedStock)
	settlement.CashVariance = declaredPayments.Sum().Sub(expectedSales.Sum()).Round(2)
	settlement.Status = model.SettlementSubmitted
	settlement.SubmittedBy = &userID
	settlement.SubmittedAt = &now
	settlement.Notes = req.Notes

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if settlement.ID == uuid.Nil {
			if err := s.repo.CreateTx(tx, settlement); err != nil {
				return err
			}
		} else if err := s.repo.UpdateTx(tx, settlement); err != nil {
			return err
		}
		return s.writeVarianceLogsTx(tx, settlement)
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.toResponse(ctx, settlement)
}

// Recompute refreshes the expected side of a SUBMITTED settlement after
// late-arriving movements. The row lock serializes concurrent recomputes;
// pending variance rows are rewritten, resolved ones stay untouched.
func (s *settlementService) Recompute(ctx context.Context, id uuid.UUID) (*dto.SettlementResponse, error) {
	var settlement *model.DailySettlement
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		st, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apierror.NotFound("settlement not found")
		}
		if st.Status != model.SettlementSubmitted {
			return apierror.Conflict("settlement is %s, only SUBMITTED can be recomputed", st.Status)
		}

		store, err := s.storeRepo.FindByID(ctx, st.StoreID)
		if err != nil {
			return err
		}
		expectedStock, expectedSales, err := s.computeExpected(ctx, store, st.SettlementDate)
		if err != nil {
			return err
		}
		st.ExpectedStock = expectedStock
		st.ExpectedSales = expectedSales
		st.CalculatedVariance = computeVariance(st.DeclaredStock, expectedStock)
		st.CashVariance = st.DeclaredPayments.Sum().Sub(expectedSales.Sum()).Round(2)
		if err := s.repo.UpdateTx(tx, st); err != nil {
			return err
		}
		settlement = st
		return s.writeVarianceLogsTx(tx, st)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.toResponse(ctx, settlement)
}

func (s *settlementService) Approve(ctx context.Context, id, approverID uuid.UUID, req dto.ApproveSettlementRequest) (*dto.SettlementResponse, error) {
	var settlement *model.DailySettlement
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		st, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return apierror.NotFound("settlement not found")
		}
		if st.Status == model.SettlementApproved || st.Status == model.SettlementLocked {
			settlement = st
			return nil
		}
		if st.Status != model.SettlementSubmitted {
			return apierror.Conflict("settlement is %s, expected SUBMITTED", st.Status)
		}
		pending, err := s.varianceRepo.CountPendingBySettlementTx(tx, st.ID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return apierror.Conflict("cannot approve settlement with %d pending variance(s)", pending)
		}
		now := time.Now().UTC()
		st.Status = model.SettlementApproved
		st.ApprovedBy = &approverID
		st.ApprovedAt = &now
		if req.Notes != nil {
			st.Notes = req.Notes
		}
		settlement = st
		return s.repo.UpdateTx(tx, st)
	})
	if txErr != nil {
		return nil, txErr
	}

	variances, err := s.varianceRepo.ListBySettlement(ctx, settlement.ID)
	if err != nil {
		return nil, err
	}

	// Points and alerts ride outside the approval transaction; both are
	// idempotent so a crash between commit and here only delays them.
	if s.points != nil {
		if err := s.points.OnSettlementApproved(ctx, settlement, variances); err != nil {
			log.Error().Err(err).Str("settlement_id", settlement.ID.String()).Msg("awarding settlement points failed")
		}
	}
	s.alertOnNegativeVariance(ctx, settlement, variances)

	return s.toResponse(ctx, settlement)
}

func (s *settlementService) Lock(ctx context.Context, id, userID uuid.UUID) (*dto.SettlementResponse, error) {
	settlement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("settlement not found")
	}
	switch settlement.Status {
	case model.SettlementLocked:
		return s.toResponse(ctx, settlement)
	case model.SettlementApproved:
	default:
		return nil, apierror.Conflict("settlement is %s, expected APPROVED", settlement.Status)
	}
	settlement.Status = model.SettlementLocked
	if err := s.repo.Update(ctx, settlement); err != nil {
		return nil, err
	}
	log.Info().Str("settlement_id", id.String()).Str("by", userID.String()).Msg("settlement locked")
	return s.toResponse(ctx, settlement)
}

func (s *settlementService) Get(ctx context.Context, id uuid.UUID) (*dto.SettlementResponse, error) {
	settlement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("settlement not found")
	}
	return s.toResponse(ctx, settlement)
}

func (s *settlementService) List(ctx context.Context, filter dto.SettlementFilter) (*dto.SettlementListResponse, error) {
	settlements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SettlementResponse, 0, len(settlements))
	for i := range settlements {
		items = append(items, *settlementToResponse(&settlements[i], nil))
	}
	return &dto.SettlementListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── expectation math ─────────────────────────────────────────────────────────

// computeExpected folds the ledger up to the end of the business day (store
// local time) into the expected closing stock, and the day's sales into
// expected takings per payment method.
// ExpectedValues is the admin's view of the ledger-derived closing figures.
// Never exposed to managers: the count stays blind.
func (s *settlementService) ExpectedValues(ctx context.Context, filter dto.ExpectedValuesFilter) (*dto.ExpectedValuesResponse, error) {
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

	expectedStock, expectedSales, err := s.computeExpected(ctx, store, date)
	if err != nil {
		return nil, err
	}
	return &dto.ExpectedValuesResponse{
		StoreID:       filter.StoreID,
		Date:          date.Format("2006-01-02"),
		ExpectedStock: snapshotToDTO(expectedStock),
		ExpectedSales: paymentsToDTO(expectedSales),
	}, nil
}

func (s *settlementService) computeExpected(ctx context.Context, store *model.Store, date time.Time) (model.StockSnapshot, model.PaymentTotals, error) {
	dayStart, dayEnd := s.clock.DayWindow(store, date)

	sums, err := s.ledgerRepo.SumByKeyBefore(ctx, store.ID, dayEnd)
	if err != nil {
		return nil, nil, err
	}
	expected := model.StockSnapshot{}
	for _, b := range model.BirdTypes {
		expected[b] = model.StageStock{}
	}
	for _, row := range sums {
		stage := expected[row.BirdType]
		switch row.InventoryType {
		case model.StageLive:
			// LIVE is tracked by head count; its weight is reported as 0 so the
			// declared side never has to weigh live birds.
			stage.LiveCount = row.CurrentBirdCount
		case model.StageSkin:
			stage.Skin = row.CurrentQty
		case model.StageSkinless:
			stage.Skinless = row.CurrentQty
		}
		expected[row.BirdType] = stage
	}

	totals, err := s.saleRepo.TotalsByPaymentMethod(ctx, store.ID, dayStart, dayEnd)
	if err != nil {
		return nil, nil, err
	}
	expectedSales := model.PaymentTotals{}
	for _, t := range totals {
		// CREDIT settles through the customer ledger, not the daily count.
		if t.PaymentMethod == model.PayCredit {
			continue
		}
		expectedSales[t.PaymentMethod] = t.Total
	}
	return expected, expectedSales, nil
}

// computeVariance is declared minus expected for each (bird, stage). LIVE
// compares bird counts; processed stages compare weight.
func computeVariance(declared, expected model.StockSnapshot) model.VarianceMap {
	out := model.VarianceMap{}
	for _, bird := range model.BirdTypes {
		d := declared[bird]
		e := expected[bird]
		out[model.VarianceKey(bird, model.StageLive)] = model.VarianceCell{
			WeightKg:  decimal.Zero,
			BirdCount: decimal.NewFromInt(int64(d.LiveCount - e.LiveCount)),
		}
		out[model.VarianceKey(bird, model.StageSkin)] = model.VarianceCell{
			WeightKg: d.Skin.Sub(e.Skin).Round(3),
		}
		out[model.VarianceKey(bird, model.StageSkinless)] = model.VarianceCell{
			WeightKg: d.Skinless.Sub(e.Skinless).Round(3),
		}
	}
	return out
}

// writeVarianceLogsTx rewrites the settlement's pending variance rows from
// its current variance map. Cells within tolerance produce no row.
func (s *settlementService) writeVarianceLogsTx(tx *gorm.DB, st *model.DailySettlement) error {
	if err := s.varianceRepo.DeletePendingBySettlementTx(tx, st.ID); err != nil {
		return err
	}
	for _, bird := range model.BirdTypes {
		for _, stage := range model.InventoryTypes {
			cell, ok := st.CalculatedVariance[model.VarianceKey(bird, stage)]
			if !ok {
				continue
			}
			significant := cell.WeightKg.Abs().GreaterThan(varianceWeightThreshold) ||
				cell.BirdCount.Abs().GreaterThan(varianceCountThreshold)
			if !significant {
				continue
			}
			vtype := model.VariancePositive
			if cell.WeightKg.IsNegative() || cell.BirdCount.IsNegative() {
				vtype = model.VarianceNegative
			}
			v := &model.VarianceLog{
				SettlementID:  st.ID,
				StoreID:       st.StoreID,
				BirdType:      bird,
				InventoryType: stage,
				VarianceType:  vtype,
				WeightKg:      cell.WeightKg,
				BirdCount:     cell.BirdCount,
				Status:        model.VariancePending,
			}
			if err := s.varianceRepo.CreateTx(tx, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *settlementService) alertOnNegativeVariance(ctx context.Context, st *model.DailySettlement, variances []model.VarianceLog) {
	if s.dispatcher == nil {
		return
	}
	negKg := decimal.Zero
	for _, v := range variances {
		if v.VarianceType == model.VarianceNegative {
			negKg = negKg.Add(v.WeightKg.Abs())
		}
	}
	if negKg.IsZero() && !st.CashVariance.IsNegative() {
		return
	}
	payload := map[string]interface{}{
		"settlement_id":   st.ID.String(),
		"store_id":        st.StoreID,
		"settlement_date": st.SettlementDate.Format("2006-01-02"),
		"negative_kg":     negKg.String(),
		"cash_variance":   st.CashVariance.String(),
	}
	if err := s.dispatcher.EnqueueVarianceAlert(ctx, payload); err != nil {
		log.Error().Err(err).Msg("enqueueing variance alert failed")
	}
}

// ── mapping ──────────────────────────────────────────────────────────────────

func parseDeclaredStock(in map[string]dto.DeclaredStageStock) (model.StockSnapshot, error) {
	out := model.StockSnapshot{}
	for key, v := range in {
		bird := model.BirdType(key)
		if !bird.Valid() {
			return nil, apierror.Validation("unknown bird type %q in declared_stock", key)
		}
		if v.Live.IsNegative() || v.Skin.IsNegative() || v.Skinless.IsNegative() || v.LiveCount < 0 {
			return nil, apierror.Validation("declared stock cannot be negative")
		}
		out[bird] = model.StageStock{Live: v.Live, LiveCount: v.LiveCount, Skin: v.Skin, Skinless: v.Skinless}
	}
	for _, bird := range model.BirdTypes {
		if _, ok := out[bird]; !ok {
			out[bird] = model.StageStock{}
		}
	}
	return out, nil
}

func parseDeclaredPayments(in map[string]decimal.Decimal, declaredCash decimal.Decimal) model.PaymentTotals {
	out := model.PaymentTotals{}
	for key, v := range in {
		method := model.PaymentMethod(key)
		for _, m := range model.SettlementPaymentMethods {
			if method == m {
				out[method] = v
			}
		}
	}
	if _, ok := out[model.PayCash]; !ok {
		out[model.PayCash] = declaredCash
	}
	return out
}

func (s *settlementService) toResponse(ctx context.Context, st *model.DailySettlement) (*dto.SettlementResponse, error) {
	variances, err := s.varianceRepo.ListBySettlement(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	return settlementToResponse(st, variances), nil
}

func settlementToResponse(st *model.DailySettlement, variances []model.VarianceLog) *dto.SettlementResponse {
	resp := &dto.SettlementResponse{
		ID:             st.ID.String(),
		StoreID:        st.StoreID,
		SettlementDate: st.SettlementDate.Format("2006-01-02"),
		Status:         string(st.Status),
		DeclaredStock:  snapshotToDTO(st.DeclaredStock),
		DeclaredCash:   st.DeclaredCash,
		CashVariance:   st.CashVariance,
		CreatedAt:      st.CreatedAt.Format(time.RFC3339),
	}
	if st.ExpectedStock != nil {
		resp.ExpectedStock = snapshotToDTO(st.ExpectedStock)
	}
	if st.ExpectedSales != nil {
		resp.ExpectedSales = paymentsToDTO(st.ExpectedSales)
	}
	if st.DeclaredPayments != nil {
		resp.DeclaredPayments = paymentsToDTO(st.DeclaredPayments)
	}
	for _, v := range variances {
		resp.StockVariances = append(resp.StockVariances, dto.VarianceCellResponse{
			BirdType:      string(v.BirdType),
			InventoryType: string(v.InventoryType),
			WeightKg:      v.WeightKg,
			BirdCount:     v.BirdCount,
		})
	}
	if st.SubmittedBy != nil {
		v := st.SubmittedBy.String()
		resp.SubmittedBy = &v
	}
	if st.SubmittedAt != nil {
		v := st.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &v
	}
	if st.ApprovedBy != nil {
		v := st.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if st.ApprovedAt != nil {
		v := st.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func snapshotToDTO(in model.StockSnapshot) map[string]dto.DeclaredStageStock {
	out := make(map[string]dto.DeclaredStageStock, len(in))
	for bird, v := range in {
		out[string(bird)] = dto.DeclaredStageStock{Live: v.Live, LiveCount: v.LiveCount, Skin: v.Skin, Skinless: v.Skinless}
	}
	return out
}

func paymentsToDTO(in model.PaymentTotals) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for method, v := range in {
		out[string(method)] = v
	}
	return out
}
