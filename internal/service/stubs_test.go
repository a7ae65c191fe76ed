package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"poultryops/internal/dto"
	"poultryops/internal/model"
	"poultryops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. Every DB() returns nil so runTx executes the
// transaction body with a nil handle and no database is needed.

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func stockKey(storeID int, bird model.BirdType, stage model.InventoryType) string {
	return fmt.Sprintf("%d/%s/%s", storeID, bird, stage)
}

// ── ledger ───────────────────────────────────────────────────────────────────

type stubLedgerRepo struct {
	entries []*model.LedgerEntry
}

func (r *stubLedgerRepo) CreateTx(_ *gorm.DB, e *model.LedgerEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *stubLedgerRepo) List(_ context.Context, filter dto.LedgerFilter) ([]model.LedgerEntry, int64, error) {
	var out []model.LedgerEntry
	for _, e := range r.entries {
		if e.StoreID == filter.StoreID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubLedgerRepo) SumByKey(_ context.Context, storeID int) ([]model.CurrentStock, error) {
	return r.sum(storeID, nil), nil
}

func (r *stubLedgerRepo) SumByKeyBefore(_ context.Context, storeID int, cutoff time.Time) ([]model.CurrentStock, error) {
	return r.sum(storeID, &cutoff), nil
}

func (r *stubLedgerRepo) sum(storeID int, cutoff *time.Time) []model.CurrentStock {
	byKey := map[string]*model.CurrentStock{}
	var order []string
	for _, e := range r.entries {
		if e.StoreID != storeID {
			continue
		}
		if cutoff != nil && !e.CreatedAt.Before(*cutoff) {
			continue
		}
		k := stockKey(e.StoreID, e.BirdType, e.InventoryType)
		row, ok := byKey[k]
		if !ok {
			row = &model.CurrentStock{StoreID: e.StoreID, BirdType: e.BirdType, InventoryType: e.InventoryType}
			byKey[k] = row
			order = append(order, k)
		}
		row.CurrentQty = row.CurrentQty.Add(e.QuantityChange)
		row.CurrentBirdCount += e.BirdCountChange
	}
	out := make([]model.CurrentStock, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

func (r *stubLedgerRepo) DB() *gorm.DB { return nil }

var _ repository.LedgerRepository = (*stubLedgerRepo)(nil)

// ── stock projection ─────────────────────────────────────────────────────────

type stubStockRepo struct {
	rows map[string]*model.CurrentStock
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{rows: make(map[string]*model.CurrentStock)}
}

func (r *stubStockRepo) seed(storeID int, bird model.BirdType, stage model.InventoryType, qty string, count int) {
	r.rows[stockKey(storeID, bird, stage)] = &model.CurrentStock{
		StoreID: storeID, BirdType: bird, InventoryType: stage,
		CurrentQty: dec(qty), CurrentBirdCount: count,
	}
}

func (r *stubStockRepo) LockForUpdateTx(_ *gorm.DB, storeID int, bird model.BirdType, stage model.InventoryType) (*model.CurrentStock, error) {
	k := stockKey(storeID, bird, stage)
	row, ok := r.rows[k]
	if !ok {
		row = &model.CurrentStock{StoreID: storeID, BirdType: bird, InventoryType: stage}
		r.rows[k] = row
	}
	return row, nil
}

func (r *stubStockRepo) ApplyDeltaTx(_ *gorm.DB, row *model.CurrentStock, e *model.LedgerEntry) error {
	stored := r.rows[stockKey(row.StoreID, row.BirdType, row.InventoryType)]
	stored.CurrentQty = stored.CurrentQty.Add(e.QuantityChange)
	stored.CurrentBirdCount += e.BirdCountChange
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *stubStockRepo) GetAll(_ context.Context, storeID int) ([]model.CurrentStock, error) {
	var out []model.CurrentStock
	for _, row := range r.rows {
		if row.StoreID == storeID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *stubStockRepo) ReplaceAllTx(_ *gorm.DB, storeID int, rows []model.CurrentStock) error {
	for k, row := range r.rows {
		if row.StoreID == storeID {
			delete(r.rows, k)
		}
	}
	for i := range rows {
		cp := rows[i]
		r.rows[stockKey(cp.StoreID, cp.BirdType, cp.InventoryType)] = &cp
	}
	return nil
}

var _ repository.StockRepository = (*stubStockRepo)(nil)

// ── stores ───────────────────────────────────────────────────────────────────

type stubStoreRepo struct {
	stores   map[int]*model.Store
	managers map[int][]uuid.UUID
	staff    map[int][]uuid.UUID
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{
		stores:   make(map[int]*model.Store),
		managers: make(map[int][]uuid.UUID),
		staff:    make(map[int][]uuid.UUID),
	}
}

func (r *stubStoreRepo) seed(id int, status model.StoreStatus) *model.Store {
	s := &model.Store{ID: id, Name: fmt.Sprintf("Store %d", id), Timezone: "UTC", Status: status}
	r.stores[id] = s
	return s
}

func (r *stubStoreRepo) Create(_ context.Context, s *model.Store) error {
	if s.ID == 0 {
		s.ID = len(r.stores) + 1
	}
	r.stores[s.ID] = s
	return nil
}

func (r *stubStoreRepo) FindByID(_ context.Context, id int) (*model.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubStoreRepo) Update(_ context.Context, s *model.Store) error {
	r.stores[s.ID] = s
	return nil
}

func (r *stubStoreRepo) List(_ context.Context) ([]model.Store, error) {
	var out []model.Store
	for _, s := range r.stores {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubStoreRepo) ListActive(_ context.Context) ([]model.Store, error) {
	var out []model.Store
	for _, s := range r.stores {
		if s.Status == model.StoreActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubStoreRepo) AssignStaff(_ context.Context, a *model.StoreStaff) error {
	if a.Role == model.RoleManager {
		r.managers[a.StoreID] = append(r.managers[a.StoreID], a.UserID)
	}
	r.staff[a.StoreID] = append(r.staff[a.StoreID], a.UserID)
	return nil
}

func (r *stubStoreRepo) RemoveStaff(_ context.Context, _ int, _ uuid.UUID) error { return nil }

func (r *stubStoreRepo) ListStaff(_ context.Context, _ int) ([]model.StoreStaff, error) {
	return nil, nil
}

func (r *stubStoreRepo) ManagerIDs(_ context.Context, storeID int) ([]uuid.UUID, error) {
	return r.managers[storeID], nil
}

func (r *stubStoreRepo) StaffIDs(_ context.Context, storeID int) ([]uuid.UUID, error) {
	return r.staff[storeID], nil
}

func (r *stubStoreRepo) IsAssigned(_ context.Context, storeID int, userID uuid.UUID) (bool, error) {
	for _, id := range r.staff[storeID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.StoreRepository = (*stubStoreRepo)(nil)

// ── users ────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	byID map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) seed(u *model.User) *model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.byID[u.ID] = u
	return u
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	u.ID = uuid.New()
	r.byID[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.byID {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.byID[u.ID] = u
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── SKUs ─────────────────────────────────────────────────────────────────────

type stubSKURepo struct {
	byID map[uuid.UUID]*model.SKU
}

func newStubSKURepo() *stubSKURepo {
	return &stubSKURepo{byID: make(map[uuid.UUID]*model.SKU)}
}

func (r *stubSKURepo) seed(code string, bird model.BirdType, stage model.InventoryType, price string) *model.SKU {
	sku := &model.SKU{
		ID: uuid.New(), Code: code, Name: code,
		BirdType: bird, InventoryType: stage,
		PricePerKg: dec(price), Active: true,
	}
	r.byID[sku.ID] = sku
	return sku
}

func (r *stubSKURepo) Create(_ context.Context, s *model.SKU) error {
	s.ID = uuid.New()
	r.byID[s.ID] = s
	return nil
}

func (r *stubSKURepo) FindByID(_ context.Context, id uuid.UUID) (*model.SKU, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSKURepo) FindByCode(_ context.Context, code string) (*model.SKU, error) {
	for _, s := range r.byID {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSKURepo) List(_ context.Context, activeOnly bool) ([]model.SKU, error) {
	var out []model.SKU
	for _, s := range r.byID {
		if !activeOnly || s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSKURepo) Update(_ context.Context, s *model.SKU) error {
	r.byID[s.ID] = s
	return nil
}

var _ repository.SKURepository = (*stubSKURepo)(nil)

// ── sales ────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales   map[uuid.UUID]*model.Sale
	idemIdx map[uuid.UUID]*model.Sale
	seq     int64

	payTotals []repository.PaymentTotal
	soldKg    []repository.SoldByStage
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{
		sales:   make(map[uuid.UUID]*model.Sale),
		idemIdx: make(map[uuid.UUID]*model.Sale),
	}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.IdempotencyKey != nil {
		if _, dup := r.idemIdx[*s.IdempotencyKey]; dup {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	for i := range s.Items {
		s.Items[i].ID = uuid.New()
		s.Items[i].SaleID = s.ID
	}
	r.sales[s.ID] = s
	if s.IdempotencyKey != nil {
		r.idemIdx[*s.IdempotencyKey] = s
	}
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) FindByIdempotencyKey(_ context.Context, key uuid.UUID) (*model.Sale, error) {
	s, ok := r.idemIdx[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) NextReceiptNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubSaleRepo) List(_ context.Context, filter dto.SaleFilter, dayStart, dayEnd time.Time) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.StoreID != filter.StoreID {
			continue
		}
		if s.CreatedAt.Before(dayStart) || !s.CreatedAt.Before(dayEnd) {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) seedSale(storeID int, at time.Time) {
	s := &model.Sale{ID: uuid.New(), StoreID: storeID, CreatedAt: at}
	r.sales[s.ID] = s
}

func (r *stubSaleRepo) TotalsByPaymentMethod(_ context.Context, _ int, _, _ time.Time) ([]repository.PaymentTotal, error) {
	return r.payTotals, nil
}

func (r *stubSaleRepo) HasSales(_ context.Context, storeID int, from, to time.Time) (bool, error) {
	for _, s := range r.sales {
		if s.StoreID == storeID && !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubSaleRepo) SoldWeightByStage(_ context.Context, _ int, _, _ time.Time) ([]repository.SoldByStage, error) {
	return r.soldKg, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── purchases ────────────────────────────────────────────────────────────────

type stubPurchaseRepo struct {
	purchases map[uuid.UUID]*model.Purchase
	// loseCommitRace makes MarkCommittedTx report that another transaction
	// already flipped the row.
	loseCommitRace bool
}

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{purchases: make(map[uuid.UUID]*model.Purchase)}
}

func (r *stubPurchaseRepo) Create(_ context.Context, p *model.Purchase) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	r.purchases[p.ID] = p
	return nil
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPurchaseRepo) Update(_ context.Context, p *model.Purchase) error {
	r.purchases[p.ID] = p
	return nil
}

func (r *stubPurchaseRepo) MarkCommittedTx(_ *gorm.DB, id uuid.UUID, by uuid.UUID, at time.Time) (bool, error) {
	p, ok := r.purchases[id]
	if r.loseCommitRace || !ok || p.Status != model.PurchaseDraft {
		return false, nil
	}
	p.Status = model.PurchaseCommitted
	p.CommittedBy = &by
	p.CommittedAt = &at
	return true, nil
}

func (r *stubPurchaseRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.PurchaseStatus) error {
	p, ok := r.purchases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *stubPurchaseRepo) List(_ context.Context, _ dto.PurchaseFilter) ([]model.Purchase, int64, error) {
	var out []model.Purchase
	for _, p := range r.purchases {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPurchaseRepo) DB() *gorm.DB { return nil }

var _ repository.PurchaseRepository = (*stubPurchaseRepo)(nil)

// ── processing ───────────────────────────────────────────────────────────────

type stubProcessingRepo struct {
	entries map[uuid.UUID]*model.ProcessingEntry
	idemIdx map[uuid.UUID]*model.ProcessingEntry
	wastage []*model.WastageConfig
}

func newStubProcessingRepo() *stubProcessingRepo {
	return &stubProcessingRepo{
		entries: make(map[uuid.UUID]*model.ProcessingEntry),
		idemIdx: make(map[uuid.UUID]*model.ProcessingEntry),
	}
}

func (r *stubProcessingRepo) seedWastage(bird model.BirdType, target model.InventoryType, pct, effective string) {
	eff, _ := time.Parse("2006-01-02", effective)
	r.wastage = append(r.wastage, &model.WastageConfig{
		ID: uuid.New(), BirdType: bird, TargetType: target,
		Percentage: dec(pct), EffectiveDate: eff, Active: true,
	})
}

func (r *stubProcessingRepo) CreateTx(_ *gorm.DB, e *model.ProcessingEntry) error {
	if e.IdempotencyKey != nil {
		if _, dup := r.idemIdx[*e.IdempotencyKey]; dup {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	r.entries[e.ID] = e
	if e.IdempotencyKey != nil {
		r.idemIdx[*e.IdempotencyKey] = e
	}
	return nil
}

func (r *stubProcessingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProcessingEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *stubProcessingRepo) FindByIdempotencyKey(_ context.Context, key uuid.UUID) (*model.ProcessingEntry, error) {
	e, ok := r.idemIdx[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *stubProcessingRepo) List(_ context.Context, _ dto.ProcessingFilter) ([]model.ProcessingEntry, int64, error) {
	var out []model.ProcessingEntry
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubProcessingRepo) EffectiveWastage(_ context.Context, bird model.BirdType, target model.InventoryType, onDate time.Time) (*model.WastageConfig, error) {
	var best *model.WastageConfig
	for _, w := range r.wastage {
		if w.BirdType != bird || w.TargetType != target || !w.Active {
			continue
		}
		if w.EffectiveDate.After(onDate) {
			continue
		}
		if best == nil || w.EffectiveDate.After(best.EffectiveDate) {
			best = w
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (r *stubProcessingRepo) CreateWastage(_ context.Context, w *model.WastageConfig) error {
	w.ID = uuid.New()
	r.wastage = append(r.wastage, w)
	return nil
}

func (r *stubProcessingRepo) ListWastage(_ context.Context) ([]model.WastageConfig, error) {
	var out []model.WastageConfig
	for _, w := range r.wastage {
		out = append(out, *w)
	}
	return out, nil
}

func (r *stubProcessingRepo) DB() *gorm.DB { return nil }

var _ repository.ProcessingRepository = (*stubProcessingRepo)(nil)

// ── transfers ────────────────────────────────────────────────────────────────

type stubTransferRepo struct {
	transfers map[uuid.UUID]*model.StockTransfer
}

func newStubTransferRepo() *stubTransferRepo {
	return &stubTransferRepo{transfers: make(map[uuid.UUID]*model.StockTransfer)}
}

func (r *stubTransferRepo) Create(_ context.Context, t *model.StockTransfer) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	r.transfers[t.ID] = t
	return nil
}

func (r *stubTransferRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockTransfer, error) {
	t, ok := r.transfers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubTransferRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.StockTransfer, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubTransferRepo) Update(_ context.Context, t *model.StockTransfer) error {
	r.transfers[t.ID] = t
	return nil
}

func (r *stubTransferRepo) UpdateTx(_ *gorm.DB, t *model.StockTransfer) error {
	r.transfers[t.ID] = t
	return nil
}

func (r *stubTransferRepo) List(_ context.Context, _ dto.TransferFilter) ([]model.StockTransfer, int64, error) {
	var out []model.StockTransfer
	for _, t := range r.transfers {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTransferRepo) DB() *gorm.DB { return nil }

var _ repository.TransferRepository = (*stubTransferRepo)(nil)

// ── settlements ──────────────────────────────────────────────────────────────

type stubSettlementRepo struct {
	settlements map[uuid.UUID]*model.DailySettlement
}

func newStubSettlementRepo() *stubSettlementRepo {
	return &stubSettlementRepo{settlements: make(map[uuid.UUID]*model.DailySettlement)}
}

func (r *stubSettlementRepo) CreateTx(_ *gorm.DB, s *model.DailySettlement) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	r.settlements[s.ID] = s
	return nil
}

func (r *stubSettlementRepo) FindByID(_ context.Context, id uuid.UUID) (*model.DailySettlement, error) {
	s, ok := r.settlements[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSettlementRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.DailySettlement, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSettlementRepo) FindByStoreAndDate(_ context.Context, storeID int, date time.Time) (*model.DailySettlement, error) {
	for _, s := range r.settlements {
		if s.StoreID == storeID && s.SettlementDate.Equal(date) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSettlementRepo) Update(_ context.Context, s *model.DailySettlement) error {
	r.settlements[s.ID] = s
	return nil
}

func (r *stubSettlementRepo) UpdateTx(_ *gorm.DB, s *model.DailySettlement) error {
	r.settlements[s.ID] = s
	return nil
}

func (r *stubSettlementRepo) List(_ context.Context, _ dto.SettlementFilter) ([]model.DailySettlement, int64, error) {
	var out []model.DailySettlement
	for _, s := range r.settlements {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSettlementRepo) StoreIDsSettledOn(_ context.Context, date time.Time) (map[int]bool, error) {
	out := map[int]bool{}
	for _, s := range r.settlements {
		if s.SettlementDate.Equal(date) && s.Status != model.SettlementDraft {
			out[s.StoreID] = true
		}
	}
	return out, nil
}

func (r *stubSettlementRepo) DB() *gorm.DB { return nil }

var _ repository.SettlementRepository = (*stubSettlementRepo)(nil)

// ── variance logs ────────────────────────────────────────────────────────────

type stubVarianceRepo struct {
	logs []*model.VarianceLog
}

func (r *stubVarianceRepo) CreateTx(_ *gorm.DB, v *model.VarianceLog) error {
	v.ID = uuid.New()
	v.CreatedAt = time.Now().UTC()
	r.logs = append(r.logs, v)
	return nil
}

func (r *stubVarianceRepo) DeletePendingBySettlementTx(_ *gorm.DB, settlementID uuid.UUID) error {
	kept := r.logs[:0]
	for _, v := range r.logs {
		if v.SettlementID == settlementID && v.Status == model.VariancePending {
			continue
		}
		kept = append(kept, v)
	}
	r.logs = kept
	return nil
}

func (r *stubVarianceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.VarianceLog, error) {
	for _, v := range r.logs {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVarianceRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.VarianceLog, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubVarianceRepo) UpdateTx(_ *gorm.DB, v *model.VarianceLog) error {
	for i := range r.logs {
		if r.logs[i].ID == v.ID {
			r.logs[i] = v
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubVarianceRepo) CountPendingBySettlementTx(_ *gorm.DB, settlementID uuid.UUID) (int64, error) {
	var n int64
	for _, v := range r.logs {
		if v.SettlementID == settlementID && v.Status == model.VariancePending {
			n++
		}
	}
	return n, nil
}

func (r *stubVarianceRepo) ListBySettlement(_ context.Context, settlementID uuid.UUID) ([]model.VarianceLog, error) {
	var out []model.VarianceLog
	for _, v := range r.logs {
		if v.SettlementID == settlementID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubVarianceRepo) List(_ context.Context, _ dto.VarianceFilter) ([]model.VarianceLog, int64, error) {
	var out []model.VarianceLog
	for _, v := range r.logs {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVarianceRepo) DB() *gorm.DB { return nil }

var _ repository.VarianceRepository = (*stubVarianceRepo)(nil)

// ── points ───────────────────────────────────────────────────────────────────

type stubPointsRepo struct {
	events       []*model.StaffPoint
	performances map[string]*model.MonthlyPerformance
}

func newStubPointsRepo() *stubPointsRepo {
	return &stubPointsRepo{performances: make(map[string]*model.MonthlyPerformance)}
}

func perfKey(userID uuid.UUID, year, month int) string {
	return fmt.Sprintf("%s/%d/%d", userID, year, month)
}

func (r *stubPointsRepo) Create(_ context.Context, p *model.StaffPoint) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	r.events = append(r.events, p)
	return nil
}

func (r *stubPointsRepo) CreateTx(_ *gorm.DB, p *model.StaffPoint) error {
	return r.Create(context.Background(), p)
}

func (r *stubPointsRepo) List(_ context.Context, _ dto.PointsFilter) ([]model.StaffPoint, int64, error) {
	var out []model.StaffPoint
	for _, p := range r.events {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPointsRepo) ExistsByRef(_ context.Context, userID uuid.UUID, reason string, refID uuid.UUID) (bool, error) {
	for _, p := range r.events {
		if p.UserID == userID && p.ReasonCode == reason && p.RefID != nil && *p.RefID == refID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPointsRepo) ExistsForDate(_ context.Context, userID uuid.UUID, reason string, storeID int, date time.Time) (bool, error) {
	for _, p := range r.events {
		if p.UserID == userID && p.ReasonCode == reason && p.StoreID == storeID && p.EffectiveDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPointsRepo) MonthTotals(_ context.Context, userID uuid.UUID, year int, month time.Month) (*repository.MonthTotals, error) {
	totals := &repository.MonthTotals{}
	for _, p := range r.events {
		if p.UserID != userID || p.EffectiveDate.Year() != year || p.EffectiveDate.Month() != month {
			continue
		}
		totals.TotalPoints = totals.TotalPoints.Add(p.Points)
		totals.TotalWeight = totals.TotalWeight.Add(p.WeightHandled)
		if p.ReasonCode == model.PointsNegativeVariance {
			totals.NegativeKg = totals.NegativeKg.Add(p.WeightHandled)
		}
	}
	return totals, nil
}

func (r *stubPointsRepo) UserIDsWithEvents(_ context.Context, year int, month time.Month) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, p := range r.events {
		if p.EffectiveDate.Year() != year || p.EffectiveDate.Month() != month || seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		out = append(out, p.UserID)
	}
	return out, nil
}

func (r *stubPointsRepo) FindPerformance(_ context.Context, userID uuid.UUID, year, month int) (*model.MonthlyPerformance, error) {
	p, ok := r.performances[perfKey(userID, year, month)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPointsRepo) SavePerformance(_ context.Context, p *model.MonthlyPerformance) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.performances[perfKey(p.UserID, p.Year, p.Month)] = &cp
	return nil
}

func (r *stubPointsRepo) ListPerformance(_ context.Context, year, month int) ([]model.MonthlyPerformance, error) {
	var out []model.MonthlyPerformance
	for _, p := range r.performances {
		if p.Year == year && p.Month == month {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPointsRepo) DB() *gorm.DB { return nil }

var _ repository.PointsRepository = (*stubPointsRepo)(nil)

// ── config knobs ─────────────────────────────────────────────────────────────

type stubConfigRepo struct {
	points  map[string]decimal.Decimal
	grading map[string]decimal.Decimal
}

func newStubConfigRepo() *stubConfigRepo {
	return &stubConfigRepo{
		points:  make(map[string]decimal.Decimal),
		grading: make(map[string]decimal.Decimal),
	}
}

func (r *stubConfigRepo) PointsValue(_ context.Context, key string) (decimal.Decimal, bool, error) {
	v, ok := r.points[key]
	return v, ok, nil
}

func (r *stubConfigRepo) UpsertPoints(_ context.Context, c *model.PointsConfig) error {
	r.points[c.Key] = c.Value
	return nil
}

func (r *stubConfigRepo) ListPoints(_ context.Context) ([]model.PointsConfig, error) {
	var out []model.PointsConfig
	for k, v := range r.points {
		out = append(out, model.PointsConfig{Key: k, Value: v})
	}
	return out, nil
}

func (r *stubConfigRepo) GradingValue(_ context.Context, key string) (decimal.Decimal, bool, error) {
	v, ok := r.grading[key]
	return v, ok, nil
}

func (r *stubConfigRepo) UpsertGrading(_ context.Context, c *model.GradingConfig) error {
	r.grading[c.Key] = c.Value
	return nil
}

func (r *stubConfigRepo) ListGrading(_ context.Context) ([]model.GradingConfig, error) {
	var out []model.GradingConfig
	for k, v := range r.grading {
		out = append(out, model.GradingConfig{Key: k, Value: v})
	}
	return out, nil
}

var _ repository.ConfigRepository = (*stubConfigRepo)(nil)
