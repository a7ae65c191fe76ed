package dto

import "github.com/shopspring/decimal"

// DeclaredStageStock mirrors the manager's blind count for one bird type.
type DeclaredStageStock struct {
	Live      decimal.Decimal `json:"LIVE"`
	LiveCount int             `json:"LIVE_COUNT" validate:"min=0"`
	Skin      decimal.Decimal `json:"SKIN"`
	Skinless  decimal.Decimal `json:"SKINLESS"`
}

type SubmitSettlementRequest struct {
	StoreID        int                           `json:"store_id"        validate:"required,min=1"`
	SettlementDate string                        `json:"settlement_date" validate:"required,datetime=2006-01-02"`
	DeclaredStock  map[string]DeclaredStageStock `json:"declared_stock"  validate:"required"` // keyed by bird type
	DeclaredCash   decimal.Decimal               `json:"declared_cash"`
	// DeclaredPayments keyed by CASH/UPI/CARD/BANK. CREDIT sales settle later
	// and never count against the day's cash position.
	DeclaredPayments map[string]decimal.Decimal `json:"declared_payments"`
	Notes            *string                    `json:"notes"`
}

type ApproveSettlementRequest struct {
	Notes *string `json:"notes"`
}

type VarianceCellResponse struct {
	BirdType      string          `json:"bird_type"`
	InventoryType string          `json:"inventory_type"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	BirdCount     decimal.Decimal `json:"bird_count"`
}

type SettlementResponse struct {
	ID               string                        `json:"id"`
	StoreID          int                           `json:"store_id"`
	SettlementDate   string                        `json:"settlement_date"`
	Status           string                        `json:"status"`
	DeclaredStock    map[string]DeclaredStageStock `json:"declared_stock"`
	ExpectedStock    map[string]DeclaredStageStock `json:"expected_stock,omitempty"`
	ExpectedSales    map[string]decimal.Decimal    `json:"expected_sales,omitempty"`
	DeclaredCash     decimal.Decimal               `json:"declared_cash"`
	DeclaredPayments map[string]decimal.Decimal    `json:"declared_payments,omitempty"`
	CashVariance     decimal.Decimal               `json:"cash_variance"`
	StockVariances   []VarianceCellResponse        `json:"stock_variances,omitempty"`
	SubmittedBy      *string                       `json:"submitted_by,omitempty"`
	SubmittedAt      *string                       `json:"submitted_at,omitempty"`
	ApprovedBy       *string                       `json:"approved_by,omitempty"`
	ApprovedAt       *string                       `json:"approved_at,omitempty"`
	CreatedAt        string                        `json:"created_at"`
}

type SettlementFilter struct {
	StoreID int    `form:"store_id" validate:"omitempty,min=1"`
	Status  string `form:"status"   validate:"omitempty,oneof=DRAFT SUBMITTED APPROVED LOCKED"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ExpectedValuesFilter struct {
	StoreID int    `form:"store_id" validate:"required,min=1"`
	Date    string `form:"date"     validate:"omitempty,datetime=2006-01-02"`
}

// ExpectedValuesResponse reveals the ledger-derived closing figures for a day.
// Admin-only: managers must not see it before declaring their count.
type ExpectedValuesResponse struct {
	StoreID       int                           `json:"store_id"`
	Date          string                        `json:"date"`
	ExpectedStock map[string]DeclaredStageStock `json:"expected_stock"`
	ExpectedSales map[string]decimal.Decimal    `json:"expected_sales"`
}

type SettlementListResponse struct {
	Data  []SettlementResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
