package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StaffPoint is one signed points event for a user. WeightHandled carries the
// kilograms behind the event so monthly grading can normalize by volume.
type StaffPoint struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_points_user_date"`
	StoreID       int             `gorm:"not null"`
	Points        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ReasonCode    string          `gorm:"type:varchar(40);not null"`
	RefType       *string         `gorm:"type:varchar(40)"`
	RefID         *uuid.UUID      `gorm:"type:uuid;index"`
	WeightHandled decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	EffectiveDate time.Time       `gorm:"type:date;not null;index:idx_points_user_date"`
	Notes         *string
	CreatedBy     *uuid.UUID `gorm:"type:uuid"` // set only for manual grants
	CreatedAt     time.Time
}

func (StaffPoint) TableName() string { return "staff_points" }

// PointsConfig is a named numeric knob for the incentive engine, for example
// ZERO_VARIANCE_BONUS or NEGATIVE_VARIANCE_PENALTY_PER_KG.
type PointsConfig struct {
	Key       string          `gorm:"primaryKey;type:varchar(60)"`
	Value     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UpdatedBy *uuid.UUID      `gorm:"type:uuid"`
	UpdatedAt time.Time
}

func (PointsConfig) TableName() string { return "staff_points_config" }

// GradingConfig is a named numeric knob for monthly grading: grade cutoffs,
// bonus/penalty rates per grade, and the monthly caps.
type GradingConfig struct {
	Key       string          `gorm:"primaryKey;type:varchar(60)"`
	Value     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UpdatedBy *uuid.UUID      `gorm:"type:uuid"`
	UpdatedAt time.Time
}

func (GradingConfig) TableName() string { return "grading_config" }

// MonthlyPerformance is the per-user monthly snapshot: totals, normalized
// score, grade, and money. Once locked it is payroll input and the generator
// will not touch it again.
type MonthlyPerformance struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_perf_user_month"`
	Year             int             `gorm:"not null;uniqueIndex:idx_perf_user_month"`
	Month            int             `gorm:"not null;uniqueIndex:idx_perf_user_month"`
	TotalPoints      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalWeight      decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	NormalizedScore  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Grade            StaffGrade      `gorm:"type:varchar(10);not null"`
	BonusAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PenaltyAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	NegativeVariance decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"` // kg charged against the user
	IsLocked         bool            `gorm:"not null;default:false"`
	LockedBy         *uuid.UUID      `gorm:"type:uuid"`
	LockedAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (MonthlyPerformance) TableName() string { return "monthly_performance" }
