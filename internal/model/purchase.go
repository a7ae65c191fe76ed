package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is a live-bird purchase order. Only the DRAFT→COMMITTED transition
// touches the ledger (one PURCHASE_RECEIVED credit on LIVE).
type Purchase struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID       int             `gorm:"not null;index"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BirdType      BirdType        `gorm:"type:varchar(20);not null"`
	BirdCount     int             `gorm:"not null"`
	TotalWeight   decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	PricePerKg    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	InvoiceNumber *string         `gorm:"type:varchar(100)"`
	InvoiceDate   *time.Time      `gorm:"type:date"`
	Notes         *string
	Status        PurchaseStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;not null"`
	CommittedBy   *uuid.UUID     `gorm:"type:uuid"`
	CommittedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
