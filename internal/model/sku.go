package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SKU is a sellable product mapped to exactly one (bird type, inventory type)
// pair. Sale items reference a SKU; the ledger debit lands on that pair.
type SKU struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string          `gorm:"uniqueIndex;not null"`
	Name          string          `gorm:"not null"`
	BirdType      BirdType        `gorm:"type:varchar(20);not null"`
	InventoryType InventoryType   `gorm:"type:varchar(20);not null"`
	Unit          string          `gorm:"not null;default:'kg'"`
	PricePerKg    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (SKU) TableName() string { return "skus" }
