package dto

import "github.com/shopspring/decimal"

type CreatePurchaseRequest struct {
	StoreID       int             `json:"store_id"       validate:"required,min=1"`
	SupplierID    string          `json:"supplier_id"    validate:"required,uuid"`
	BirdType      string          `json:"bird_type"      validate:"required,oneof=BROILER PARENT_CULL"`
	BirdCount     int             `json:"bird_count"     validate:"required,min=1"`
	TotalWeight   decimal.Decimal `json:"total_weight"   validate:"required"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"   validate:"required"`
	InvoiceNumber *string         `json:"invoice_number"`
	InvoiceDate   *string         `json:"invoice_date"   validate:"omitempty,datetime=2006-01-02"`
	Notes         *string         `json:"notes"`
}

type UpdatePurchaseRequest struct {
	BirdCount     *int             `json:"bird_count"   validate:"omitempty,min=1"`
	TotalWeight   *decimal.Decimal `json:"total_weight"`
	PricePerKg    *decimal.Decimal `json:"price_per_kg"`
	InvoiceNumber *string          `json:"invoice_number"`
	InvoiceDate   *string          `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
	Notes         *string          `json:"notes"`
}

type PurchaseFilter struct {
	StoreID int    `form:"store_id" validate:"omitempty,min=1"`
	Status  string `form:"status"   validate:"omitempty,oneof=DRAFT COMMITTED CANCELLED"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type PurchaseResponse struct {
	ID            string          `json:"id"`
	StoreID       int             `json:"store_id"`
	SupplierID    string          `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name,omitempty"`
	BirdType      string          `json:"bird_type"`
	BirdCount     int             `json:"bird_count"`
	TotalWeight   decimal.Decimal `json:"total_weight"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	InvoiceNumber *string         `json:"invoice_number,omitempty"`
	InvoiceDate   *string         `json:"invoice_date,omitempty"`
	Status        string          `json:"status"`
	CommittedBy   *string         `json:"committed_by,omitempty"`
	CommittedAt   *string         `json:"committed_at,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type PurchaseListResponse struct {
	Data  []PurchaseResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
