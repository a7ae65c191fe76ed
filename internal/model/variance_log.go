package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VarianceLog is one (bird type, stage) discrepancy raised by a settlement.
// Approving it writes the correcting ledger entry; deducting it additionally
// records the recovery against the responsible staff.
type VarianceLog struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SettlementID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	StoreID       int               `gorm:"not null;index"`
	BirdType      BirdType          `gorm:"type:varchar(20);not null"`
	InventoryType InventoryType     `gorm:"type:varchar(20);not null"`
	VarianceType  VarianceType      `gorm:"type:varchar(20);not null"`
	WeightKg      decimal.Decimal   `gorm:"type:decimal(10,3);not null"`
	BirdCount     decimal.Decimal   `gorm:"type:decimal(10,1);not null;default:0"`
	Status        VarianceLogStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ResolvedBy    *uuid.UUID        `gorm:"type:uuid"`
	ResolvedAt    *time.Time
	DeductedFrom  *uuid.UUID `gorm:"type:uuid"` // staff charged on DEDUCTED
	Notes         *string
	CreatedAt     time.Time
}

func (VarianceLog) TableName() string { return "variance_logs" }
