package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an immediate-effect business event: each item debits the ledger at
// creation time, all inside one transaction.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID       int             `gorm:"not null;index"`
	CashierID     uuid.UUID       `gorm:"type:uuid;not null"`
	ReceiptNumber string          `gorm:"uniqueIndex;not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null"`
	SaleType      SaleType        `gorm:"type:varchar(10);not null;default:'POS'"`
	CustomerName  *string         `gorm:"type:varchar(255)"`
	CustomerPhone *string         `gorm:"type:varchar(20)"`
	Notes         *string
	IdempotencyKey *uuid.UUID     `gorm:"type:uuid;uniqueIndex"`
	CreatedAt     time.Time       `gorm:"index"`

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one weighed line of a sale.
type SaleItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKUID         uuid.UUID       `gorm:"type:uuid;not null;column:sku_id"`
	Weight        decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	BirdCount     int             `gorm:"not null;default:0"` // live-bird lines only
	PriceSnapshot decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	SKU *SKU `gorm:"foreignKey:SKUID"`
}
