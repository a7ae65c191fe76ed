package model

// BirdType is the procurement/product category.
type BirdType string

const (
	BirdBroiler    BirdType = "BROILER"
	BirdParentCull BirdType = "PARENT_CULL"
)

// BirdTypes lists every valid bird type, in display order.
var BirdTypes = []BirdType{BirdBroiler, BirdParentCull}

func (b BirdType) Valid() bool {
	return b == BirdBroiler || b == BirdParentCull
}

// InventoryType is the processing stage of held stock.
type InventoryType string

const (
	StageLive     InventoryType = "LIVE"
	StageSkin     InventoryType = "SKIN"
	StageSkinless InventoryType = "SKINLESS"
)

var InventoryTypes = []InventoryType{StageLive, StageSkin, StageSkinless}

func (t InventoryType) Valid() bool {
	return t == StageLive || t == StageSkin || t == StageSkinless
}

// StoreStatus gates write operations per store.
type StoreStatus string

const (
	StoreActive      StoreStatus = "ACTIVE"
	StoreMaintenance StoreStatus = "MAINTENANCE"
)

// PurchaseStatus lifecycle: DRAFT → COMMITTED | CANCELLED.
type PurchaseStatus string

const (
	PurchaseDraft     PurchaseStatus = "DRAFT"
	PurchaseCommitted PurchaseStatus = "COMMITTED"
	PurchaseCancelled PurchaseStatus = "CANCELLED"
)

// TransferStatus lifecycle: SENT → RECEIVED → APPROVED | REJECTED.
type TransferStatus string

const (
	TransferSent     TransferStatus = "SENT"
	TransferReceived TransferStatus = "RECEIVED"
	TransferApproved TransferStatus = "APPROVED"
	TransferRejected TransferStatus = "REJECTED"
)

// SettlementStatus lifecycle: DRAFT → SUBMITTED → APPROVED → LOCKED.
type SettlementStatus string

const (
	SettlementDraft     SettlementStatus = "DRAFT"
	SettlementSubmitted SettlementStatus = "SUBMITTED"
	SettlementApproved  SettlementStatus = "APPROVED"
	SettlementLocked    SettlementStatus = "LOCKED"
)

// VarianceType distinguishes found stock from lost stock.
type VarianceType string

const (
	VariancePositive VarianceType = "POSITIVE"
	VarianceNegative VarianceType = "NEGATIVE"
)

// VarianceLogStatus lifecycle: PENDING → APPROVED | DEDUCTED.
type VarianceLogStatus string

const (
	VariancePending  VarianceLogStatus = "PENDING"
	VarianceApproved VarianceLogStatus = "APPROVED"
	VarianceDeducted VarianceLogStatus = "DEDUCTED"
)

// PaymentMethod for sales and settlement declarations.
type PaymentMethod string

const (
	PayCash   PaymentMethod = "CASH"
	PayUPI    PaymentMethod = "UPI"
	PayCard   PaymentMethod = "CARD"
	PayBank   PaymentMethod = "BANK"
	PayCredit PaymentMethod = "CREDIT"
)

// SettlementPaymentMethods are the methods reconciled daily. CREDIT sales are
// settled through the customer ledger, not the daily cash count.
var SettlementPaymentMethods = []PaymentMethod{PayCash, PayUPI, PayCard, PayBank}

// SaleType distinguishes retail POS from wholesale.
type SaleType string

const (
	SalePOS  SaleType = "POS"
	SaleBulk SaleType = "BULK"
)

// User roles. Managers are additionally assigned to stores via StoreStaff.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)
