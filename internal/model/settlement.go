package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StageStock is the per-bird-type breakdown used inside settlement JSON
// columns. LIVE is tracked by head count; processed stages by weight.
type StageStock struct {
	Live      decimal.Decimal `json:"LIVE"`
	LiveCount int             `json:"LIVE_COUNT"`
	Skin      decimal.Decimal `json:"SKIN"`
	Skinless  decimal.Decimal `json:"SKINLESS"`
}

// StockSnapshot maps bird type to its stage breakdown. It backs the
// declared_stock and expected_stock JSONB columns.
type StockSnapshot map[BirdType]StageStock

func (s StockSnapshot) Value() (driver.Value, error) { return jsonValue(s) }
func (s *StockSnapshot) Scan(src any) error          { return jsonScan(src, s) }

// PaymentTotals maps payment method to the money taken through it.
type PaymentTotals map[PaymentMethod]decimal.Decimal

func (p PaymentTotals) Value() (driver.Value, error) { return jsonValue(p) }
func (p *PaymentTotals) Scan(src any) error          { return jsonScan(src, p) }

// Sum adds every method's total.
func (p PaymentTotals) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range p {
		total = total.Add(v)
	}
	return total
}

// VarianceCell is declared minus expected for one (bird type, stage) pair.
type VarianceCell struct {
	WeightKg  decimal.Decimal `json:"weight_kg"`
	BirdCount decimal.Decimal `json:"bird_count"`
}

// VarianceMap backs the calculated_variance JSONB column, keyed
// "BIRDTYPE/STAGE" (for example "BROILER/SKINLESS").
type VarianceMap map[string]VarianceCell

func (v VarianceMap) Value() (driver.Value, error) { return jsonValue(v) }
func (v *VarianceMap) Scan(src any) error          { return jsonScan(src, v) }

// VarianceKey builds a VarianceMap key.
func VarianceKey(bird BirdType, stage InventoryType) string {
	return string(bird) + "/" + string(stage)
}

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src, dst any) error {
	if src == nil {
		return nil
	}
	switch s := src.(type) {
	case []byte:
		return json.Unmarshal(s, dst)
	case string:
		return json.Unmarshal([]byte(s), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// DailySettlement is the end-of-day reconciliation record for one store and
// business date. Declared figures come from the manager's blind count;
// expected figures are computed from the ledger and the day's sales. The row
// moves DRAFT→SUBMITTED→APPROVED→LOCKED and only approval writes points.
type DailySettlement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID        int       `gorm:"not null;uniqueIndex:idx_settlement_store_date"`
	SettlementDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_settlement_store_date"`

	DeclaredStock      StockSnapshot   `gorm:"type:jsonb;not null"`
	DeclaredCash       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DeclaredPayments   PaymentTotals   `gorm:"type:jsonb"`
	ExpectedStock      StockSnapshot   `gorm:"type:jsonb"`
	ExpectedSales      PaymentTotals   `gorm:"type:jsonb"`
	CalculatedVariance VarianceMap     `gorm:"type:jsonb"`
	CashVariance       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Status      SettlementStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	SubmittedBy *uuid.UUID       `gorm:"type:uuid"`
	SubmittedAt *time.Time
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DailySettlement) TableName() string { return "daily_settlements" }
