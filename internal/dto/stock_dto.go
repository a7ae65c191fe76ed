package dto

import "github.com/shopspring/decimal"

// ─── Ledger ─────────────────────────────────────────────────────────────────

// LedgerFilter is bound from the query string of GET /v1/stock/ledger.
type LedgerFilter struct {
	StoreID       int    `form:"store_id"       validate:"required,min=1"`
	BirdType      string `form:"bird_type"      validate:"omitempty,oneof=BROILER PARENT_CULL"`
	InventoryType string `form:"inventory_type" validate:"omitempty,oneof=LIVE SKIN SKINLESS"`
	ReasonCode    string `form:"reason_code"`
	From          string `form:"from"` // YYYY-MM-DD
	To            string `form:"to"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type LedgerEntryResponse struct {
	ID              string          `json:"id"`
	StoreID         int             `json:"store_id"`
	BirdType        string          `json:"bird_type"`
	InventoryType   string          `json:"inventory_type"`
	QuantityChange  decimal.Decimal `json:"quantity_change"`
	BirdCountChange int             `json:"bird_count_change"`
	ReasonCode      string          `json:"reason_code"`
	RefType         *string         `json:"ref_type,omitempty"`
	RefID           *string         `json:"ref_id,omitempty"`
	UserID          string          `json:"user_id"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type LedgerListResponse struct {
	Data  []LedgerEntryResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ─── Current stock ──────────────────────────────────────────────────────────

type StockLevelResponse struct {
	BirdType      string          `json:"bird_type"`
	InventoryType string          `json:"inventory_type"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	BirdCount     int             `json:"bird_count"`
	UpdatedAt     string          `json:"updated_at"`
}

type StockSummaryResponse struct {
	StoreID int                  `json:"store_id"`
	Levels  []StockLevelResponse `json:"levels"`
}

// ─── Manual adjustment ──────────────────────────────────────────────────────

type ManualAdjustRequest struct {
	StoreID       int             `json:"store_id"       validate:"required,min=1"`
	BirdType      string          `json:"bird_type"      validate:"required,oneof=BROILER PARENT_CULL"`
	InventoryType string          `json:"inventory_type" validate:"required,oneof=LIVE SKIN SKINLESS"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	BirdCount     int             `json:"bird_count"`
	Direction     string          `json:"direction" validate:"required,oneof=CREDIT DEBIT"`
	Reason        string          `json:"reason"    validate:"required,min=5"`
}

// OpeningBalanceRequest seeds a store's starting stock when it joins the
// ledger. Always a credit; regular corrections go through ManualAdjust.
type OpeningBalanceRequest struct {
	StoreID       int             `json:"store_id"       validate:"required,min=1"`
	BirdType      string          `json:"bird_type"      validate:"required,oneof=BROILER PARENT_CULL"`
	InventoryType string          `json:"inventory_type" validate:"required,oneof=LIVE SKIN SKINLESS"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	BirdCount     int             `json:"bird_count" validate:"min=0"`
	Notes         *string         `json:"notes"`
}

type RebuildProjectionRequest struct {
	StoreID int `json:"store_id" validate:"required,min=1"`
}

type RebuildProjectionResponse struct {
	StoreID     int `json:"store_id"`
	RowsRebuilt int `json:"rows_rebuilt"`
}
