package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WastageConfig holds the expected weight loss for converting LIVE stock into
// a processed stage. Lookups take the most recent row with
// effective_date <= query date for the (bird type, target type) pair.
type WastageConfig struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BirdType      BirdType        `gorm:"type:varchar(20);not null;uniqueIndex:idx_wastage_key"`
	TargetType    InventoryType   `gorm:"type:varchar(20);not null;uniqueIndex:idx_wastage_key;column:target_inventory_type"`
	Percentage    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	EffectiveDate time.Time       `gorm:"type:date;not null;uniqueIndex:idx_wastage_key"`
	Active        bool            `gorm:"not null;default:true"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time
}

func (WastageConfig) TableName() string { return "wastage_config" }

// ProcessingEntry converts LIVE birds into a processed stage. The planned
// figures (wastage percentage/weight, output weight) are the compliance
// reference; ActualOutputWeight, when the operator supplies one, is what the
// ledger credits.
type ProcessingEntry struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID            int              `gorm:"not null;index"`
	ProcessingDate     time.Time        `gorm:"type:date;not null"`
	InputBirdType      BirdType         `gorm:"type:varchar(20);not null"`
	OutputType         InventoryType    `gorm:"type:varchar(20);not null;column:output_inventory_type"`
	InputWeight        decimal.Decimal  `gorm:"type:decimal(10,3);not null"`
	InputBirdCount     int              `gorm:"not null;default:0"`
	WastagePercentage  decimal.Decimal  `gorm:"type:decimal(5,2);not null"`
	WastageWeight      decimal.Decimal  `gorm:"type:decimal(10,3);not null"`
	OutputWeight       decimal.Decimal  `gorm:"type:decimal(10,3);not null"` // planned
	ActualOutputWeight *decimal.Decimal `gorm:"type:decimal(10,3)"`
	IdempotencyKey     *uuid.UUID       `gorm:"type:uuid;uniqueIndex"`
	ProcessedBy        uuid.UUID        `gorm:"type:uuid;not null"`
	CreatedAt          time.Time
}

func (ProcessingEntry) TableName() string { return "processing_entries" }
