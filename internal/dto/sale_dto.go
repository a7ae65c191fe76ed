package dto

import "github.com/shopspring/decimal"

type SaleItemRequest struct {
	SKUID  string          `json:"sku_id" validate:"required,uuid"`
	Weight decimal.Decimal `json:"weight" validate:"required"`
	// BirdCount is required for live-bird SKUs, ignored otherwise.
	BirdCount int `json:"bird_count" validate:"min=0"`
}

type CreateSaleRequest struct {
	StoreID       int               `json:"store_id"       validate:"required,min=1"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=CASH UPI CARD BANK CREDIT"`
	SaleType      string            `json:"sale_type"      validate:"omitempty,oneof=POS BULK"`
	CustomerName  *string           `json:"customer_name"`
	CustomerPhone *string           `json:"customer_phone" validate:"omitempty,min=7,max=20"`
	Notes         *string           `json:"notes"`
	// IdempotencyKey lets the POS terminal retry a timed-out submit without
	// double-selling; a repeat returns the original sale.
	IdempotencyKey *string `json:"idempotency_key" validate:"omitempty,uuid"`
}

type SaleItemResponse struct {
	SKUID         string          `json:"sku_id"`
	SKUCode       string          `json:"sku_code,omitempty"`
	SKUName       string          `json:"sku_name,omitempty"`
	Weight        decimal.Decimal `json:"weight"`
	BirdCount     int             `json:"bird_count,omitempty"`
	PriceSnapshot decimal.Decimal `json:"price_snapshot"`
	Total         decimal.Decimal `json:"total"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	StoreID       int                `json:"store_id"`
	ReceiptNumber string             `json:"receipt_number"`
	CashierID     string             `json:"cashier_id"`
	Items         []SaleItemResponse `json:"items"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	SaleType      string             `json:"sale_type"`
	CustomerName  *string            `json:"customer_name,omitempty"`
	CreatedAt     string             `json:"created_at"`
}

type SaleFilter struct {
	StoreID       int    `form:"store_id"       validate:"required,min=1"`
	Date          string `form:"date"` // YYYY-MM-DD; empty = today in store TZ
	PaymentMethod string `form:"payment_method" validate:"omitempty,oneof=CASH UPI CARD BANK CREDIT"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type SaleSummaryFilter struct {
	StoreID int    `form:"store_id" validate:"required,min=1"`
	Date    string `form:"date"     validate:"omitempty,datetime=2006-01-02"`
}

// SaleDailySummaryResponse is the per-method takings for one store-local day.
type SaleDailySummaryResponse struct {
	StoreID  int                        `json:"store_id"`
	Date     string                     `json:"date"`
	ByMethod map[string]decimal.Decimal `json:"by_method"`
	Total    decimal.Decimal            `json:"total"`
}
