package dto

import "github.com/shopspring/decimal"

type ResolveVarianceRequest struct {
	// Action APPROVE writes the correcting ledger entry only; DEDUCT also
	// charges the weight against a staff member.
	Action       string  `json:"action"        validate:"required,oneof=APPROVE DEDUCT"`
	DeductFromID *string `json:"deduct_from_id" validate:"omitempty,uuid,required_if=Action DEDUCT"`
	Notes        *string `json:"notes"`
}

type VarianceLogResponse struct {
	ID            string          `json:"id"`
	SettlementID  string          `json:"settlement_id"`
	StoreID       int             `json:"store_id"`
	BirdType      string          `json:"bird_type"`
	InventoryType string          `json:"inventory_type"`
	VarianceType  string          `json:"variance_type"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	BirdCount     decimal.Decimal `json:"bird_count"`
	Status        string          `json:"status"`
	ResolvedBy    *string         `json:"resolved_by,omitempty"`
	ResolvedAt    *string         `json:"resolved_at,omitempty"`
	DeductedFrom  *string         `json:"deducted_from,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type VarianceFilter struct {
	StoreID int    `form:"store_id" validate:"omitempty,min=1"`
	Status  string `form:"status"   validate:"omitempty,oneof=PENDING APPROVED DEDUCTED"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VarianceListResponse struct {
	Data  []VarianceLogResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
