package dto

import "github.com/shopspring/decimal"

type CreateProcessingRequest struct {
	StoreID            int              `json:"store_id"             validate:"required,min=1"`
	ProcessingDate     string           `json:"processing_date"      validate:"required,datetime=2006-01-02"`
	InputBirdType      string           `json:"input_bird_type"      validate:"required,oneof=BROILER PARENT_CULL"`
	OutputType         string           `json:"output_inventory_type" validate:"required,oneof=SKIN SKINLESS"`
	InputWeight        decimal.Decimal  `json:"input_weight"         validate:"required"`
	InputBirdCount     int              `json:"input_bird_count"     validate:"required,min=1"`
	ActualOutputWeight *decimal.Decimal `json:"actual_output_weight"`
	// IdempotencyKey lets clients retry safely; a repeat returns the original entry.
	IdempotencyKey *string `json:"idempotency_key" validate:"omitempty,uuid"`
}

type ProcessingResponse struct {
	ID                 string           `json:"id"`
	StoreID            int              `json:"store_id"`
	ProcessingDate     string           `json:"processing_date"`
	InputBirdType      string           `json:"input_bird_type"`
	OutputType         string           `json:"output_inventory_type"`
	InputWeight        decimal.Decimal  `json:"input_weight"`
	InputBirdCount     int              `json:"input_bird_count"`
	WastagePercentage  decimal.Decimal  `json:"wastage_percentage"`
	WastageWeight      decimal.Decimal  `json:"wastage_weight"`
	OutputWeight       decimal.Decimal  `json:"output_weight"`
	ActualOutputWeight *decimal.Decimal `json:"actual_output_weight,omitempty"`
	ProcessedBy        string           `json:"processed_by"`
	CreatedAt          string           `json:"created_at"`
}

type ProcessingFilter struct {
	StoreID int    `form:"store_id" validate:"omitempty,min=1"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProcessingListResponse struct {
	Data  []ProcessingResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// ─── Wastage config ─────────────────────────────────────────────────────────

// YieldPreviewRequest asks what a processing run would produce without
// recording anything.
type YieldPreviewRequest struct {
	BirdType    string          `json:"bird_type"             validate:"required,oneof=BROILER PARENT_CULL"`
	OutputType  string          `json:"output_inventory_type" validate:"required,oneof=SKIN SKINLESS"`
	InputWeight decimal.Decimal `json:"input_weight"          validate:"required"`
	Date        string          `json:"date"                  validate:"omitempty,datetime=2006-01-02"`
}

type YieldPreviewResponse struct {
	BirdType          string          `json:"bird_type"`
	OutputType        string          `json:"output_inventory_type"`
	InputWeight       decimal.Decimal `json:"input_weight"`
	WastagePercentage decimal.Decimal `json:"wastage_percentage"`
	WastageWeight     decimal.Decimal `json:"wastage_weight"`
	PlannedOutput     decimal.Decimal `json:"planned_output"`
}

type UpsertWastageRequest struct {
	BirdType      string          `json:"bird_type"             validate:"required,oneof=BROILER PARENT_CULL"`
	TargetType    string          `json:"target_inventory_type" validate:"required,oneof=SKIN SKINLESS"`
	Percentage    decimal.Decimal `json:"percentage"            validate:"required"`
	EffectiveDate string          `json:"effective_date"        validate:"required,datetime=2006-01-02"`
}

type WastageConfigResponse struct {
	ID            string          `json:"id"`
	BirdType      string          `json:"bird_type"`
	TargetType    string          `json:"target_inventory_type"`
	Percentage    decimal.Decimal `json:"percentage"`
	EffectiveDate string          `json:"effective_date"`
	Active        bool            `json:"active"`
}
