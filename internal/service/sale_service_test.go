package service

import (
	"context"
	"testing"
	"time"

	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSaleSvc() (SaleService, *stubSaleRepo, *stubSKURepo, *stubLedgerRepo, *stubStockRepo) {
	saleRepo := newStubSaleRepo()
	skuRepo := newStubSKURepo()
	storeRepo := newStubStoreRepo()
	storeRepo.seed(1, model.StoreActive)
	ledgerRepo := &stubLedgerRepo{}
	stockRepo := newStubStockRepo()
	ledger := NewLedgerService(ledgerRepo, stockRepo, nil)
	svc := NewSaleService(saleRepo, skuRepo, storeRepo, ledger, NewStoreClock("UTC"))
	return svc, saleRepo, skuRepo, ledgerRepo, stockRepo
}

func TestSaleCreateDebitsPerLine(t *testing.T) {
	svc, _, skuRepo, ledgerRepo, stockRepo := buildSaleSvc()
	skinless := skuRepo.seed("BR-SKINLESS", model.BirdBroiler, model.StageSkinless, "240.00")
	live := skuRepo.seed("BR-LIVE", model.BirdBroiler, model.StageLive, "110.00")
	stockRepo.seed(1, model.BirdBroiler, model.StageSkinless, "20.000", 0)
	stockRepo.seed(1, model.BirdBroiler, model.StageLive, "50.000", 25)

	resp, err := svc.Create(context.Background(), uuid.New(), dto.CreateSaleRequest{
		StoreID: 1,
		Items: []dto.SaleItemRequest{
			{SKUID: skinless.ID.String(), Weight: dec("1.500")},
			{SKUID: live.ID.String(), Weight: dec("4.200"), BirdCount: 2},
		},
		PaymentMethod: "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, "R1-000001", resp.ReceiptNumber)
	// 1.500*240 + 4.200*110
	assert.True(t, resp.TotalAmount.Equal(dec("822.00")))
	assert.Equal(t, "POS", resp.SaleType)
	require.Len(t, resp.Items, 2)
	assert.True(t, resp.Items[0].Total.Equal(dec("360.00")))
	assert.True(t, resp.Items[1].Total.Equal(dec("462.00")))

	require.Len(t, ledgerRepo.entries, 2)
	assert.Equal(t, 0, ledgerRepo.entries[0].BirdCountChange)
	assert.Equal(t, -2, ledgerRepo.entries[1].BirdCountChange)

	assert.True(t, stockRepo.rows[stockKey(1, model.BirdBroiler, model.StageSkinless)].CurrentQty.Equal(dec("18.500")))
	liveRow := stockRepo.rows[stockKey(1, model.BirdBroiler, model.StageLive)]
	assert.True(t, liveRow.CurrentQty.Equal(dec("45.800")))
	assert.Equal(t, 23, liveRow.CurrentBirdCount)
}

func TestSaleReceiptNumbersAdvance(t *testing.T) {
	svc, _, skuRepo, _, stockRepo := buildSaleSvc()
	sku := skuRepo.seed("BR-SKIN", model.BirdBroiler, model.StageSkin, "180.00")
	stockRepo.seed(1, model.BirdBroiler, model.StageSkin, "50.000", 0)

	req := dto.CreateSaleRequest{
		StoreID:       1,
		Items:         []dto.SaleItemRequest{{SKUID: sku.ID.String(), Weight: dec("1.000")}},
		PaymentMethod: "UPI",
	}
	first, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, "R1-000001", first.ReceiptNumber)
	assert.Equal(t, "R1-000002", second.ReceiptNumber)
}

func TestSaleLiveSKURequiresBirdCount(t *testing.T) {
	svc, _, skuRepo, _, stockRepo := buildSaleSvc()
	live := skuRepo.seed("BR-LIVE", model.BirdBroiler, model.StageLive, "110.00")
	stockRepo.seed(1, model.BirdBroiler, model.StageLive, "50.000", 25)

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateSaleRequest{
		StoreID:       1,
		Items:         []dto.SaleItemRequest{{SKUID: live.ID.String(), Weight: dec("2.000")}},
		PaymentMethod: "CASH",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bird_count is required for live-bird sku BR-LIVE")
}

func TestSaleInactiveSKURejected(t *testing.T) {
	svc, _, skuRepo, _, _ := buildSaleSvc()
	sku := skuRepo.seed("BR-SKIN", model.BirdBroiler, model.StageSkin, "180.00")
	sku.Active = false

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateSaleRequest{
		StoreID:       1,
		Items:         []dto.SaleItemRequest{{SKUID: sku.ID.String(), Weight: dec("1.000")}},
		PaymentMethod: "CASH",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sku BR-SKIN is inactive")
}

func TestSaleInsufficientStockFails(t *testing.T) {
	svc, saleRepo, skuRepo, _, stockRepo := buildSaleSvc()
	sku := skuRepo.seed("BR-SKIN", model.BirdBroiler, model.StageSkin, "180.00")
	stockRepo.seed(1, model.BirdBroiler, model.StageSkin, "0.500", 0)

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateSaleRequest{
		StoreID:       1,
		Items:         []dto.SaleItemRequest{{SKUID: sku.ID.String(), Weight: dec("2.000")}},
		PaymentMethod: "CASH",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debiting stock for sku BR-SKIN")
	assert.Contains(t, err.Error(), "insufficient")
	assert.Empty(t, saleRepo.sales)
}

func TestSaleIdempotentRetryReturnsOriginal(t *testing.T) {
	svc, saleRepo, skuRepo, ledgerRepo, stockRepo := buildSaleSvc()
	sku := skuRepo.seed("BR-SKIN", model.BirdBroiler, model.StageSkin, "180.00")
	stockRepo.seed(1, model.BirdBroiler, model.StageSkin, "50.000", 0)

	key := uuid.New().String()
	req := dto.CreateSaleRequest{
		StoreID:        1,
		Items:          []dto.SaleItemRequest{{SKUID: sku.ID.String(), Weight: dec("1.000")}},
		PaymentMethod:  "CARD",
		IdempotencyKey: &key,
	}
	first, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, saleRepo.sales, 1)
	assert.Len(t, ledgerRepo.entries, 1)
}

func TestSaleMaintenanceStoreRejected(t *testing.T) {
	svc, _, skuRepo, _, _ := buildSaleSvc()
	sku := skuRepo.seed("BR-SKIN", model.BirdBroiler, model.StageSkin, "180.00")

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateSaleRequest{
		StoreID:       9,
		Items:         []dto.SaleItemRequest{{SKUID: sku.ID.String(), Weight: dec("1.000")}},
		PaymentMethod: "CASH",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store 9 not found")
}

func TestDailySummaryTotalsByMethod(t *testing.T) {
	svc, saleRepo, _, _, _ := buildSaleSvc()
	saleRepo.payTotals = []repository.PaymentTotal{
		{PaymentMethod: model.PayCash, Total: dec("500.00")},
		{PaymentMethod: model.PayUPI, Total: dec("200.00")},
	}

	resp, err := svc.DailySummary(context.Background(), dto.SaleSummaryFilter{StoreID: 1})
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), resp.Date)
	assert.True(t, resp.ByMethod["CASH"].Equal(dec("500.00")))
	assert.True(t, resp.ByMethod["UPI"].Equal(dec("200.00")))
	assert.True(t, resp.Total.Equal(dec("700.00")))
}

func TestDailySummaryUnknownStore(t *testing.T) {
	svc, _, _, _, _ := buildSaleSvc()

	_, err := svc.DailySummary(context.Background(), dto.SaleSummaryFilter{StoreID: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store 9 not found")
}
