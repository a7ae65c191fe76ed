package service

import (
	"context"
	"testing"
	"time"

	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSettlementSvc() (SettlementService, *stubSettlementRepo, *stubVarianceRepo, *stubLedgerRepo, *stubSaleRepo) {
	settlementRepo := newStubSettlementRepo()
	varianceRepo := &stubVarianceRepo{}
	ledgerRepo := &stubLedgerRepo{}
	saleRepo := newStubSaleRepo()
	storeRepo := newStubStoreRepo()
	storeRepo.seed(1, model.StoreActive)
	svc := NewSettlementService(settlementRepo, varianceRepo, ledgerRepo, saleRepo, storeRepo, nil, nil, NewStoreClock("UTC"))
	return svc, settlementRepo, varianceRepo, ledgerRepo, saleRepo
}

func todayStr() string { return time.Now().UTC().Format("2006-01-02") }

// seedLedger plants a ledger entry dated now, inside today's business day.
func seedLedger(r *stubLedgerRepo, storeID int, bird model.BirdType, stage model.InventoryType, qty string, count int) {
	r.entries = append(r.entries, &model.LedgerEntry{
		ID:              uuid.New(),
		StoreID:         storeID,
		BirdType:        bird,
		InventoryType:   stage,
		QuantityChange:  dec(qty),
		BirdCountChange: count,
		ReasonCode:      model.ReasonOpeningBalance,
		UserID:          uuid.New(),
		CreatedAt:       time.Now().UTC(),
	})
}

func matchingDeclaration() map[string]dto.DeclaredStageStock {
	return map[string]dto.DeclaredStageStock{
		"BROILER": {Live: dec("100.000"), LiveCount: 50, Skin: dec("20.000")},
	}
}

func TestSettlementSubmitZeroVariance(t *testing.T) {
	svc, _, varianceRepo, ledgerRepo, _ := buildSettlementSvc()
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageLive, "100.000", 50)
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageSkin, "20.000", 0)

	resp, err := svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  matchingDeclaration(),
		DeclaredCash:   dec("0"),
	})
	require.NoError(t, err)
	assert.Equal(t, "SUBMITTED", resp.Status)
	assert.Empty(t, resp.StockVariances)
	assert.Empty(t, varianceRepo.logs)
}

func TestSettlementSubmitRecordsVariances(t *testing.T) {
	svc, _, varianceRepo, ledgerRepo, _ := buildSettlementSvc()
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageLive, "100.000", 50)
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageSkin, "20.000", 0)

	// Two birds short, half a kilo of skin missing, some skinless found.
	resp, err := svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock: map[string]dto.DeclaredStageStock{
			"BROILER": {Live: dec("96.000"), LiveCount: 48, Skin: dec("19.500"), Skinless: dec("0.750")},
		},
		DeclaredCash: dec("0"),
	})
	require.NoError(t, err)
	require.Len(t, varianceRepo.logs, 3)

	byStage := map[model.InventoryType]*model.VarianceLog{}
	for _, v := range varianceRepo.logs {
		byStage[v.InventoryType] = v
	}

	live := byStage[model.StageLive]
	require.NotNil(t, live)
	assert.Equal(t, model.VarianceNegative, live.VarianceType)
	assert.True(t, live.BirdCount.Equal(dec("-2")))
	// LIVE variance is counted in birds, never weight.
	assert.True(t, live.WeightKg.IsZero())

	skin := byStage[model.StageSkin]
	require.NotNil(t, skin)
	assert.Equal(t, model.VarianceNegative, skin.VarianceType)
	assert.True(t, skin.WeightKg.Equal(dec("-0.500")))

	skinless := byStage[model.StageSkinless]
	require.NotNil(t, skinless)
	assert.Equal(t, model.VariancePositive, skinless.VarianceType)
	assert.True(t, skinless.WeightKg.Equal(dec("0.750")))

	assert.Len(t, resp.StockVariances, 3)
}

func TestSettlementVarianceWithinToleranceIgnored(t *testing.T) {
	svc, _, varianceRepo, ledgerRepo, _ := buildSettlementSvc()
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageSkin, "20.000", 0)

	// 1 gram off: at the threshold, not over it.
	_, err := svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock: map[string]dto.DeclaredStageStock{
			"BROILER": {Skin: dec("20.001")},
		},
		DeclaredCash: dec("0"),
	})
	require.NoError(t, err)
	assert.Empty(t, varianceRepo.logs)
}

func TestSettlementCashVariance(t *testing.T) {
	svc, _, _, _, saleRepo := buildSettlementSvc()
	saleRepo.payTotals = []repository.PaymentTotal{
		{PaymentMethod: model.PayCash, Total: dec("5000.00")},
		{PaymentMethod: model.PayUPI, Total: dec("1200.00")},
		{PaymentMethod: model.PayCredit, Total: dec("900.00")}, // settles later
	}

	resp, err := svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  map[string]dto.DeclaredStageStock{},
		DeclaredCash:   dec("4900.00"),
		DeclaredPayments: map[string]decimal.Decimal{
			"UPI":    dec("1200.00"),
			"CREDIT": dec("900.00"), // dropped, never reconciled daily
		},
	})
	require.NoError(t, err)
	// declared 4900+1200 against expected 5000+1200; CREDIT out on both sides
	assert.True(t, resp.CashVariance.Equal(dec("-100.00")))
	assert.True(t, resp.ExpectedSales["CASH"].Equal(dec("5000.00")))
	_, hasCredit := resp.ExpectedSales["CREDIT"]
	assert.False(t, hasCredit)
}

func TestSettlementSubmitRejectsFutureDate(t *testing.T) {
	svc, _, _, _, _ := buildSettlementSvc()

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	_, err := svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: tomorrow,
		DeclaredStock:  map[string]dto.DeclaredStageStock{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot settle a future date")
}

func TestSettlementResubmitConflicts(t *testing.T) {
	svc, _, _, _, _ := buildSettlementSvc()

	req := dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  map[string]dto.DeclaredStageStock{},
	}
	_, err := svc.Submit(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is already SUBMITTED")
}

func TestSettlementDeclarationValidation(t *testing.T) {
	svc, _, _, _, _ := buildSettlementSvc()

	_, err := svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  map[string]dto.DeclaredStageStock{"TURKEY": {}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown bird type "TURKEY" in declared_stock`)

	_, err = svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  map[string]dto.DeclaredStageStock{"BROILER": {Skin: dec("-1")}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared stock cannot be negative")
}

func TestSettlementRecomputeRefreshesExpected(t *testing.T) {
	svc, _, varianceRepo, ledgerRepo, _ := buildSettlementSvc()
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageSkin, "20.000", 0)

	resp, err := svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  map[string]dto.DeclaredStageStock{"BROILER": {Skin: dec("19.000")}},
		DeclaredCash:   dec("0"),
	})
	require.NoError(t, err)
	require.Len(t, varianceRepo.logs, 1)
	id := uuid.MustParse(resp.ID)

	// A late entry lands in the day; recompute should absorb it.
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageSkin, "-1.000", 0)
	recomputed, err := svc.Recompute(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, recomputed.StockVariances)
	assert.Empty(t, varianceRepo.logs)
}

func TestSettlementRecomputeOnlySubmitted(t *testing.T) {
	svc, _, _, _, _ := buildSettlementSvc()

	resp, err := svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  map[string]dto.DeclaredStageStock{},
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	_, err = svc.Approve(context.Background(), id, uuid.New(), dto.ApproveSettlementRequest{})
	require.NoError(t, err)

	_, err = svc.Recompute(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settlement is APPROVED, only SUBMITTED can be recomputed")
}

func TestSettlementApproveAndLockTransitions(t *testing.T) {
	svc, _, _, _, _ := buildSettlementSvc()
	userID := uuid.New()

	resp, err := svc.Submit(context.Background(), userID, dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  map[string]dto.DeclaredStageStock{},
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	// Lock before approval is a conflict.
	_, err = svc.Lock(context.Background(), id, userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settlement is SUBMITTED, expected APPROVED")

	approved, err := svc.Approve(context.Background(), id, userID, dto.ApproveSettlementRequest{})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)
	require.NotNil(t, approved.ApprovedBy)

	// Re-approval is an idempotent success.
	again, err := svc.Approve(context.Background(), id, userID, dto.ApproveSettlementRequest{})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", again.Status)

	locked, err := svc.Lock(context.Background(), id, userID)
	require.NoError(t, err)
	assert.Equal(t, "LOCKED", locked.Status)

	// Locked stays locked.
	still, err := svc.Lock(context.Background(), id, userID)
	require.NoError(t, err)
	assert.Equal(t, "LOCKED", still.Status)
}

func TestSettlementApproveBlockedByPendingVariance(t *testing.T) {
	svc, _, varianceRepo, ledgerRepo, _ := buildSettlementSvc()
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageSkin, "20.000", 0)
	userID := uuid.New()

	resp, err := svc.Submit(context.Background(), userID, dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  map[string]dto.DeclaredStageStock{"BROILER": {Skin: dec("19.500")}},
		DeclaredCash:   dec("0"),
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)
	require.Len(t, varianceRepo.logs, 1)

	_, err = svc.Approve(context.Background(), id, userID, dto.ApproveSettlementRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot approve settlement with 1 pending variance(s)")

	// Resolving the shortage clears the road.
	varianceRepo.logs[0].Status = model.VarianceDeducted
	approved, err := svc.Approve(context.Background(), id, userID, dto.ApproveSettlementRequest{})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)
}

func TestSettlementRecomputeKeepsResolvedRows(t *testing.T) {
	svc, _, varianceRepo, ledgerRepo, _ := buildSettlementSvc()
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageSkin, "20.000", 0)

	resp, err := svc.Submit(context.Background(), uuid.New(), dto.SubmitSettlementRequest{
		StoreID:        1,
		SettlementDate: todayStr(),
		DeclaredStock:  map[string]dto.DeclaredStageStock{"BROILER": {Skin: dec("19.000")}},
		DeclaredCash:   dec("0"),
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)
	require.Len(t, varianceRepo.logs, 1)
	varianceRepo.logs[0].Status = model.VarianceApproved

	_, err = svc.Recompute(context.Background(), id)
	require.NoError(t, err)

	// The resolved row survived; a fresh pending row joined it.
	statuses := map[model.VarianceLogStatus]int{}
	for _, v := range varianceRepo.logs {
		statuses[v.Status]++
	}
	assert.Equal(t, 1, statuses[model.VarianceApproved])
	assert.Equal(t, 1, statuses[model.VariancePending])
}

func TestExpectedValuesRevealsLedgerFigures(t *testing.T) {
	svc, _, _, ledgerRepo, saleRepo := buildSettlementSvc()
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageSkin, "12.000", 0)
	seedLedger(ledgerRepo, 1, model.BirdBroiler, model.StageLive, "30.000", 15)
	saleRepo.payTotals = []repository.PaymentTotal{
		{PaymentMethod: model.PayCash, Total: dec("300.00")},
		{PaymentMethod: model.PayCredit, Total: dec("99.00")},
	}

	resp, err := svc.ExpectedValues(context.Background(), dto.ExpectedValuesFilter{StoreID: 1})
	require.NoError(t, err)
	assert.Equal(t, todayStr(), resp.Date)
	assert.True(t, resp.ExpectedStock["BROILER"].Skin.Equal(dec("12.000")))
	// LIVE is counted in birds; its expected weight always reads 0.
	assert.True(t, resp.ExpectedStock["BROILER"].Live.IsZero())
	assert.Equal(t, 15, resp.ExpectedStock["BROILER"].LiveCount)
	assert.True(t, resp.ExpectedSales["CASH"].Equal(dec("300.00")))
	// CREDIT settles through the customer ledger, never the daily count.
	_, hasCredit := resp.ExpectedSales["CREDIT"]
	assert.False(t, hasCredit)
}

func TestExpectedValuesUnknownStore(t *testing.T) {
	svc, _, _, _, _ := buildSettlementSvc()

	_, err := svc.ExpectedValues(context.Background(), dto.ExpectedValuesFilter{StoreID: 99})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store 99 not found")
}
