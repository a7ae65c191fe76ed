package dto

import "github.com/shopspring/decimal"

type StaffPointResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	StoreID       int             `json:"store_id"`
	Points        decimal.Decimal `json:"points"`
	ReasonCode    string          `json:"reason_code"`
	RefType       *string         `json:"ref_type,omitempty"`
	RefID         *string         `json:"ref_id,omitempty"`
	WeightHandled decimal.Decimal `json:"weight_handled"`
	EffectiveDate string          `json:"effective_date"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type PointsFilter struct {
	UserID  string `form:"user_id" validate:"omitempty,uuid"`
	StoreID int    `form:"store_id" validate:"omitempty,min=1"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page,default=1"    validate:"min=1"`
	Limit   int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type PointsListResponse struct {
	Data  []StaffPointResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type LeaderboardFilter struct {
	Year  int `form:"year"  validate:"omitempty,min=2020,max=2100"`
	Month int `form:"month" validate:"omitempty,min=1,max=12"`
}

type LeaderboardEntry struct {
	UserID          string          `json:"user_id"`
	UserName        string          `json:"user_name,omitempty"`
	TotalPoints     decimal.Decimal `json:"total_points"`
	WeightHandled   decimal.Decimal `json:"weight_handled"`
	NormalizedScore decimal.Decimal `json:"normalized_score"`
}

type ManualPointsRequest struct {
	UserID  string          `json:"user_id"  validate:"required,uuid"`
	StoreID int             `json:"store_id" validate:"required,min=1"`
	Points  decimal.Decimal `json:"points"   validate:"required"`
	Reason  string          `json:"reason"   validate:"required,min=5"`
}

type UpsertConfigRequest struct {
	Key   string          `json:"key"   validate:"required,min=3,max=60"`
	Value decimal.Decimal `json:"value" validate:"required"`
}

type ConfigEntryResponse struct {
	Key       string          `json:"key"`
	Value     decimal.Decimal `json:"value"`
	UpdatedAt string          `json:"updated_at"`
}

// ─── Monthly performance ────────────────────────────────────────────────────

type MonthlyPerformanceResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	UserName         string          `json:"user_name,omitempty"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	TotalPoints      decimal.Decimal `json:"total_points"`
	TotalWeight      decimal.Decimal `json:"total_weight"`
	NormalizedScore  decimal.Decimal `json:"normalized_score"`
	Grade            string          `json:"grade"`
	BonusAmount      decimal.Decimal `json:"bonus_amount"`
	PenaltyAmount    decimal.Decimal `json:"penalty_amount"`
	NegativeVariance decimal.Decimal `json:"negative_variance_kg"`
	IsLocked         bool            `json:"is_locked"`
}

type GenerateMonthlyRequest struct {
	Year  int `json:"year"  validate:"required,min=2020,max=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

type MonthlyPerformanceListResponse struct {
	Data []MonthlyPerformanceResponse `json:"data"`
}
