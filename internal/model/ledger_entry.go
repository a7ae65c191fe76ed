package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry records one stock delta. Entries are append-only: the system has
// no update or delete path for this table, and the sum of deltas per
// (store, bird type, inventory type) IS the current stock.
type LedgerEntry struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID         int             `gorm:"not null;index:idx_ledger_key"`
	BirdType        BirdType        `gorm:"type:varchar(20);not null;index:idx_ledger_key"`
	InventoryType   InventoryType   `gorm:"type:varchar(20);not null;index:idx_ledger_key"`
	QuantityChange  decimal.Decimal `gorm:"type:decimal(10,3);not null"` // kg, signed
	BirdCountChange int             `gorm:"not null;default:0"`          // signed
	ReasonCode      string          `gorm:"type:varchar(40);not null"`
	RefType         *string         `gorm:"type:varchar(40)"` // PURCHASE | PROCESSING | SALE | TRANSFER | VARIANCE | SETTLEMENT
	RefID           *uuid.UUID      `gorm:"type:uuid;index"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null"`
	Notes           *string
	CreatedAt       time.Time `gorm:"index"`
}

func (LedgerEntry) TableName() string { return "inventory_ledger" }

// CurrentStock is the materialized projection of the ledger, one row per
// (store, bird type, inventory type). It is never the system of record: it is
// maintained inside the same transaction as each ledger append and doubles as
// the row lock that serializes sufficiency checks. RebuildProjection can
// recreate it from the ledger at any time.
type CurrentStock struct {
	StoreID          int             `gorm:"primaryKey"`
	BirdType         BirdType        `gorm:"type:varchar(20);primaryKey"`
	InventoryType    InventoryType   `gorm:"type:varchar(20);primaryKey"`
	CurrentQty       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	CurrentBirdCount int             `gorm:"not null;default:0"`
	UpdatedAt        time.Time
}

func (CurrentStock) TableName() string { return "current_stocks" }
