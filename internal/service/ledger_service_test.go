package service

import (
	"context"
	"testing"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLedgerSvc() (LedgerService, *stubLedgerRepo, *stubStockRepo) {
	ledgerRepo := &stubLedgerRepo{}
	stockRepo := newStubStockRepo()
	return NewLedgerService(ledgerRepo, stockRepo, nil), ledgerRepo, stockRepo
}

func creditInput(storeID int, qty string, count int) AppendInput {
	ref := uuid.New()
	refType := "PURCHASE"
	return AppendInput{
		StoreID:         storeID,
		BirdType:        model.BirdBroiler,
		InventoryType:   model.StageLive,
		QuantityChange:  dec(qty),
		BirdCountChange: count,
		ReasonCode:      model.ReasonPurchaseReceived,
		RefType:         &refType,
		RefID:           &ref,
		UserID:          uuid.New(),
	}
}

func TestAppendCreditUpdatesProjection(t *testing.T) {
	svc, ledgerRepo, stockRepo := buildLedgerSvc()

	entry, err := svc.Append(context.Background(), creditInput(1, "120.500", 60))
	require.NoError(t, err)
	assert.Equal(t, model.ReasonPurchaseReceived, entry.ReasonCode)
	require.Len(t, ledgerRepo.entries, 1)

	row := stockRepo.rows[stockKey(1, model.BirdBroiler, model.StageLive)]
	require.NotNil(t, row)
	assert.True(t, row.CurrentQty.Equal(dec("120.500")))
	assert.Equal(t, 60, row.CurrentBirdCount)
}

func TestAppendRejectsUnknownReasonCode(t *testing.T) {
	svc, _, _ := buildLedgerSvc()

	in := creditInput(1, "10", 5)
	in.ReasonCode = "FREE_CHICKEN"
	_, err := svc.Append(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown reason code "FREE_CHICKEN"`)
}

func TestAppendRejectsInvalidEnums(t *testing.T) {
	svc, _, _ := buildLedgerSvc()

	in := creditInput(1, "10", 5)
	in.BirdType = "OSTRICH"
	_, err := svc.Append(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bird type or inventory type")
}

func TestAppendRequiresReference(t *testing.T) {
	svc, _, _ := buildLedgerSvc()

	in := creditInput(1, "10", 5)
	in.RefType = nil
	in.RefID = nil
	_, err := svc.Append(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reason code PURCHASE_RECEIVED requires a reference")
}

func TestAppendRejectsEmptyMovement(t *testing.T) {
	svc, _, _ := buildLedgerSvc()

	in := creditInput(1, "0", 0)
	_, err := svc.Append(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger entry must move weight or bird count")
}

func TestAppendEnforcesDirectionSign(t *testing.T) {
	svc, _, _ := buildLedgerSvc()

	in := creditInput(1, "-5", 0)
	_, err := svc.Append(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a credit, got negative delta")

	ref := uuid.New()
	refType := "SALE"
	_, err = svc.Append(context.Background(), AppendInput{
		StoreID:        1,
		BirdType:       model.BirdBroiler,
		InventoryType:  model.StageSkinless,
		QuantityChange: dec("3.5"),
		ReasonCode:     model.ReasonSaleDebit,
		RefType:        &refType,
		RefID:          &ref,
		UserID:         uuid.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a debit, got positive delta")
}

func TestAppendDebitInsufficientStock(t *testing.T) {
	svc, _, stockRepo := buildLedgerSvc()
	stockRepo.seed(1, model.BirdBroiler, model.StageSkin, "5.000", 0)

	ref := uuid.New()
	refType := "SALE"
	_, err := svc.Append(context.Background(), AppendInput{
		StoreID:        1,
		BirdType:       model.BirdBroiler,
		InventoryType:  model.StageSkin,
		QuantityChange: dec("-5.500"),
		ReasonCode:     model.ReasonSaleDebit,
		RefType:        &refType,
		RefID:          &ref,
		UserID:         uuid.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient BROILER SKIN stock")
}

func TestAppendDebitWithinWeightTolerance(t *testing.T) {
	// A drain that leaves the balance at -0.001 kg is scale noise, not an
	// overdraw.
	svc, _, stockRepo := buildLedgerSvc()
	stockRepo.seed(1, model.BirdBroiler, model.StageSkin, "5.000", 0)

	ref := uuid.New()
	refType := "SALE"
	_, err := svc.Append(context.Background(), AppendInput{
		StoreID:        1,
		BirdType:       model.BirdBroiler,
		InventoryType:  model.StageSkin,
		QuantityChange: dec("-5.001"),
		ReasonCode:     model.ReasonSaleDebit,
		RefType:        &refType,
		RefID:          &ref,
		UserID:         uuid.New(),
	})
	require.NoError(t, err)

	row := stockRepo.rows[stockKey(1, model.BirdBroiler, model.StageSkin)]
	assert.True(t, row.CurrentQty.Equal(dec("-0.001")))
}

func TestAppendDebitInsufficientBirds(t *testing.T) {
	svc, _, stockRepo := buildLedgerSvc()
	stockRepo.seed(1, model.BirdBroiler, model.StageLive, "100", 10)

	ref := uuid.New()
	refType := "SALE"
	_, err := svc.Append(context.Background(), AppendInput{
		StoreID:         1,
		BirdType:        model.BirdBroiler,
		InventoryType:   model.StageLive,
		QuantityChange:  dec("-20"),
		BirdCountChange: -11,
		ReasonCode:      model.ReasonSaleDebit,
		RefType:         &refType,
		RefID:           &ref,
		UserID:          uuid.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient BROILER LIVE birds: have 10, need 11")
}

func TestManualAdjustMapsDirection(t *testing.T) {
	svc, ledgerRepo, stockRepo := buildLedgerSvc()
	stockRepo.seed(2, model.BirdParentCull, model.StageSkinless, "8.000", 0)
	userID := uuid.New()

	resp, err := svc.ManualAdjust(context.Background(), userID, dto.ManualAdjustRequest{
		StoreID:       2,
		BirdType:      "PARENT_CULL",
		InventoryType: "SKINLESS",
		WeightKg:      dec("1.250"),
		Direction:     "DEBIT",
		Reason:        "spoiled batch discarded",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonAdjustmentDebit, resp.ReasonCode)
	assert.True(t, resp.QuantityChange.Equal(dec("-1.250")))
	require.Len(t, ledgerRepo.entries, 1)
	assert.Equal(t, userID, ledgerRepo.entries[0].UserID)

	resp, err = svc.ManualAdjust(context.Background(), userID, dto.ManualAdjustRequest{
		StoreID:       2,
		BirdType:      "PARENT_CULL",
		InventoryType: "SKINLESS",
		WeightKg:      dec("0.500"),
		Direction:     "CREDIT",
		Reason:        "found misplaced crate",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonAdjustmentCredit, resp.ReasonCode)
	assert.True(t, resp.QuantityChange.Equal(dec("0.500")))

	row := stockRepo.rows[stockKey(2, model.BirdParentCull, model.StageSkinless)]
	assert.True(t, row.CurrentQty.Equal(dec("7.250")))
}

func TestStockSummaryListsProjection(t *testing.T) {
	svc, _, stockRepo := buildLedgerSvc()
	stockRepo.seed(3, model.BirdBroiler, model.StageLive, "42.000", 21)

	resp, err := svc.StockSummary(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, resp.Levels, 1)
	assert.Equal(t, "BROILER", resp.Levels[0].BirdType)
	assert.True(t, resp.Levels[0].WeightKg.Equal(dec("42.000")))
	assert.Equal(t, 21, resp.Levels[0].BirdCount)
}

func TestRebuildProjectionReplacesRows(t *testing.T) {
	svc, _, stockRepo := buildLedgerSvc()

	// Two appends, then corrupt the projection and rebuild from the ledger.
	_, err := svc.Append(context.Background(), creditInput(4, "30.000", 15))
	require.NoError(t, err)
	_, err = svc.Append(context.Background(), creditInput(4, "10.000", 5))
	require.NoError(t, err)

	stockRepo.seed(4, model.BirdBroiler, model.StageLive, "999.000", 999)

	resp, err := svc.RebuildProjection(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RowsRebuilt)

	row := stockRepo.rows[stockKey(4, model.BirdBroiler, model.StageLive)]
	assert.True(t, row.CurrentQty.Equal(dec("40.000")))
	assert.Equal(t, 20, row.CurrentBirdCount)
}

func TestOpeningBalanceSeedsNewStore(t *testing.T) {
	svc, ledgerRepo, stockRepo := buildLedgerSvc()

	resp, err := svc.OpeningBalance(context.Background(), uuid.New(), dto.OpeningBalanceRequest{
		StoreID: 7, BirdType: "BROILER", InventoryType: "LIVE",
		WeightKg: dec("40.000"), BirdCount: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonOpeningBalance, resp.ReasonCode)

	require.Len(t, ledgerRepo.entries, 1)
	row := stockRepo.rows[stockKey(7, model.BirdBroiler, model.StageLive)]
	assert.True(t, row.CurrentQty.Equal(dec("40.000")))
	assert.Equal(t, 20, row.CurrentBirdCount)
}

func TestOpeningBalanceRejectsNegativeWeight(t *testing.T) {
	svc, ledgerRepo, _ := buildLedgerSvc()

	_, err := svc.OpeningBalance(context.Background(), uuid.New(), dto.OpeningBalanceRequest{
		StoreID: 7, BirdType: "BROILER", InventoryType: "SKIN", WeightKg: dec("-1.000"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a credit, got negative delta")
	assert.Empty(t, ledgerRepo.entries)
}
