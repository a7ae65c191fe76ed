package dto

import "github.com/shopspring/decimal"

type CreateTransferRequest struct {
	FromStoreID   int             `json:"from_store_id"  validate:"required,min=1"`
	ToStoreID     int             `json:"to_store_id"    validate:"required,min=1,nefield=FromStoreID"`
	BirdType      string          `json:"bird_type"      validate:"required,oneof=BROILER PARENT_CULL"`
	InventoryType string          `json:"inventory_type" validate:"required,oneof=LIVE SKIN SKINLESS"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	BirdCount     int             `json:"bird_count"`
	TransferDate  string          `json:"transfer_date"  validate:"required,datetime=2006-01-02"`
	Notes         *string         `json:"notes"`
}

type RejectTransferRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

type TransferResponse struct {
	ID              string          `json:"id"`
	FromStoreID     int             `json:"from_store_id"`
	ToStoreID       int             `json:"to_store_id"`
	BirdType        string          `json:"bird_type"`
	InventoryType   string          `json:"inventory_type"`
	WeightKg        decimal.Decimal `json:"weight_kg"`
	BirdCount       int             `json:"bird_count"`
	TransferDate    string          `json:"transfer_date"`
	Status          string          `json:"status"`
	InitiatedBy     string          `json:"initiated_by"`
	ReceivedBy      *string         `json:"received_by,omitempty"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type TransferFilter struct {
	StoreID int    `form:"store_id" validate:"omitempty,min=1"` // matches either side
	Status  string `form:"status"   validate:"omitempty,oneof=SENT RECEIVED APPROVED REJECTED"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransferListResponse struct {
	Data  []TransferResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
