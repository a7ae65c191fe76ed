package service

import (
	"context"
	"testing"

	"poultryops/internal/dto"
	"poultryops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProcessingSvc() (ProcessingService, *stubProcessingRepo, *stubLedgerRepo, *stubStockRepo) {
	procRepo := newStubProcessingRepo()
	procRepo.seedWastage(model.BirdBroiler, model.StageSkin, "4.50", "2026-01-01")
	storeRepo := newStubStoreRepo()
	storeRepo.seed(1, model.StoreActive)
	ledgerRepo := &stubLedgerRepo{}
	stockRepo := newStubStockRepo()
	stockRepo.seed(1, model.BirdBroiler, model.StageLive, "500.000", 250)
	ledger := NewLedgerService(ledgerRepo, stockRepo, nil)
	return NewProcessingService(procRepo, storeRepo, ledger), procRepo, ledgerRepo, stockRepo
}

func processingReq() dto.CreateProcessingRequest {
	return dto.CreateProcessingRequest{
		StoreID:        1,
		ProcessingDate: "2026-03-10",
		InputBirdType:  "BROILER",
		OutputType:     "SKIN",
		InputWeight:    dec("100.000"),
		InputBirdCount: 50,
	}
}

func TestProcessingCreateAppliesWastage(t *testing.T) {
	svc, _, ledgerRepo, stockRepo := buildProcessingSvc()

	resp, err := svc.Create(context.Background(), uuid.New(), processingReq())
	require.NoError(t, err)
	// 4.50% of 100 kg
	assert.True(t, resp.WastageWeight.Equal(dec("4.500")))
	assert.True(t, resp.OutputWeight.Equal(dec("95.500")))

	require.Len(t, ledgerRepo.entries, 3)
	debit, credit := ledgerRepo.entries[0], ledgerRepo.entries[1]
	assert.Equal(t, model.ReasonProcessingDebit, debit.ReasonCode)
	assert.True(t, debit.QuantityChange.Equal(dec("-100.000")))
	assert.Equal(t, -50, debit.BirdCountChange)
	assert.Equal(t, model.ReasonProcessingCredit, credit.ReasonCode)
	assert.True(t, credit.QuantityChange.Equal(dec("95.500")))

	live := stockRepo.rows[stockKey(1, model.BirdBroiler, model.StageLive)]
	assert.True(t, live.CurrentQty.Equal(dec("400.000")))
	assert.Equal(t, 200, live.CurrentBirdCount)
	skin := stockRepo.rows[stockKey(1, model.BirdBroiler, model.StageSkin)]
	assert.True(t, skin.CurrentQty.Equal(dec("95.500")))
}

func TestProcessingWritesWastageAuditMarker(t *testing.T) {
	svc, _, ledgerRepo, stockRepo := buildProcessingSvc()

	resp, err := svc.Create(context.Background(), uuid.New(), processingReq())
	require.NoError(t, err)

	require.Len(t, ledgerRepo.entries, 3)
	marker := ledgerRepo.entries[2]
	assert.Equal(t, model.ReasonWastage, marker.ReasonCode)
	assert.True(t, marker.QuantityChange.IsZero())
	assert.Equal(t, 0, marker.BirdCountChange)
	assert.Equal(t, model.StageSkin, marker.InventoryType)
	assert.Equal(t, "PROCESSING", *marker.RefType)
	assert.Equal(t, uuid.MustParse(resp.ID), *marker.RefID)
	require.NotNil(t, marker.Notes)
	assert.Contains(t, *marker.Notes, "4.5")

	// The marker moves nothing.
	skin := stockRepo.rows[stockKey(1, model.BirdBroiler, model.StageSkin)]
	assert.True(t, skin.CurrentQty.Equal(dec("95.500")))
}

func TestProcessingActualOutputOverridesCredit(t *testing.T) {
	svc, _, ledgerRepo, _ := buildProcessingSvc()

	actual := dec("93.250")
	req := processingReq()
	req.ActualOutputWeight = &actual
	resp, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	// Planned figures stay as computed; the ledger credits the actual.
	assert.True(t, resp.OutputWeight.Equal(dec("95.500")))
	require.NotNil(t, resp.ActualOutputWeight)
	assert.True(t, resp.ActualOutputWeight.Equal(actual))

	require.Len(t, ledgerRepo.entries, 3)
	assert.True(t, ledgerRepo.entries[1].QuantityChange.Equal(actual))
}

func TestProcessingActualOutputBounds(t *testing.T) {
	svc, _, _, _ := buildProcessingSvc()

	tooMuch := dec("100.001")
	req := processingReq()
	req.ActualOutputWeight = &tooMuch
	_, err := svc.Create(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "actual_output_weight must be between 0 and input_weight")

	negative := dec("-1")
	req.ActualOutputWeight = &negative
	_, err = svc.Create(context.Background(), uuid.New(), req)
	require.Error(t, err)
}

func TestProcessingZeroActualSkipsCredit(t *testing.T) {
	svc, _, ledgerRepo, _ := buildProcessingSvc()

	zero := decimal.Zero
	req := processingReq()
	req.ActualOutputWeight = &zero
	_, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	require.Len(t, ledgerRepo.entries, 2)
	assert.Equal(t, model.ReasonProcessingDebit, ledgerRepo.entries[0].ReasonCode)
	assert.Equal(t, model.ReasonWastage, ledgerRepo.entries[1].ReasonCode)
}

func TestProcessingMissingWastageConfig(t *testing.T) {
	svc, _, _, _ := buildProcessingSvc()

	req := processingReq()
	req.OutputType = "SKINLESS"
	_, err := svc.Create(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no wastage configuration for BROILER")
}

func TestProcessingWastageNotEffectiveYet(t *testing.T) {
	svc, procRepo, _, _ := buildProcessingSvc()
	procRepo.seedWastage(model.BirdBroiler, model.StageSkinless, "6.00", "2026-06-01")

	req := processingReq()
	req.OutputType = "SKINLESS"
	req.ProcessingDate = "2026-05-31"
	_, err := svc.Create(context.Background(), uuid.New(), req)
	require.Error(t, err)

	req.ProcessingDate = "2026-06-01"
	resp, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.True(t, resp.WastageWeight.Equal(dec("6.000")))
}

func TestProcessingIdempotencyReturnsExisting(t *testing.T) {
	svc, _, ledgerRepo, _ := buildProcessingSvc()

	key := uuid.New().String()
	req := processingReq()
	req.IdempotencyKey = &key

	first, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, ledgerRepo.entries, 3)
}

func TestUpsertWastageRejectsOutOfRange(t *testing.T) {
	svc, _, _, _ := buildProcessingSvc()

	_, err := svc.UpsertWastage(context.Background(), uuid.New(), dto.UpsertWastageRequest{
		BirdType: "BROILER", TargetType: "SKIN", Percentage: dec("100"), EffectiveDate: "2026-04-01",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "percentage must be in [0, 100)")

	resp, err := svc.UpsertWastage(context.Background(), uuid.New(), dto.UpsertWastageRequest{
		BirdType: "BROILER", TargetType: "SKIN", Percentage: dec("5.25"), EffectiveDate: "2026-04-01",
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)
}

func TestCalculateYieldPreview(t *testing.T) {
	svc, _, ledgerRepo, _ := buildProcessingSvc()

	resp, err := svc.CalculateYield(context.Background(), dto.YieldPreviewRequest{
		BirdType: "BROILER", OutputType: "SKIN", InputWeight: dec("100.000"),
	})
	require.NoError(t, err)
	assert.True(t, resp.WastagePercentage.Equal(dec("4.50")))
	assert.True(t, resp.WastageWeight.Equal(dec("4.500")))
	assert.True(t, resp.PlannedOutput.Equal(dec("95.500")))

	// A preview records nothing.
	assert.Empty(t, ledgerRepo.entries)
}

func TestCalculateYieldWithoutConfigFails(t *testing.T) {
	svc, _, _, _ := buildProcessingSvc()

	_, err := svc.CalculateYield(context.Background(), dto.YieldPreviewRequest{
		BirdType: "BROILER", OutputType: "SKINLESS", InputWeight: dec("100.000"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no wastage configuration")
}
