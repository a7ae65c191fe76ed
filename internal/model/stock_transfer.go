package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockTransfer moves stock between stores. Only the transition into APPROVED
// writes ledger entries (one OUT debit at the source, one IN credit at the
// destination, same transaction).
type StockTransfer struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FromStoreID     int             `gorm:"not null;index"`
	ToStoreID       int             `gorm:"not null;index"`
	BirdType        BirdType        `gorm:"type:varchar(20);not null"`
	InventoryType   InventoryType   `gorm:"type:varchar(20);not null"`
	WeightKg        decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	BirdCount       int             `gorm:"not null;default:0"`
	TransferDate    time.Time       `gorm:"type:date;not null"`
	Status          TransferStatus  `gorm:"type:varchar(20);not null;default:'SENT'"`
	InitiatedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	ReceivedBy      *uuid.UUID      `gorm:"type:uuid"`
	ApprovedBy      *uuid.UUID      `gorm:"type:uuid"`
	ReceivedAt      *time.Time
	ApprovedAt      *time.Time
	Notes           *string
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	FromStore *Store `gorm:"foreignKey:FromStoreID"`
	ToStore   *Store `gorm:"foreignKey:ToStoreID"`
}
