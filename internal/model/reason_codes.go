package model

// LedgerDirection tells whether a reason code adds or removes stock.
type LedgerDirection string

const (
	DirectionCredit LedgerDirection = "CREDIT"
	DirectionDebit  LedgerDirection = "DEBIT"
)

// Ledger reason codes. The registry is fixed: appends with an unknown code are
// rejected before they reach the database.
const (
	ReasonPurchaseReceived = "PURCHASE_RECEIVED"
	ReasonProcessingDebit  = "PROCESSING_DEBIT"
	ReasonProcessingCredit = "PROCESSING_CREDIT"
	ReasonSaleDebit        = "SALE_DEBIT"
	ReasonVariancePositive = "VARIANCE_POSITIVE"
	ReasonVarianceNegative = "VARIANCE_NEGATIVE"
	ReasonWastage          = "WASTAGE"
	ReasonAdjustmentCredit = "ADJUSTMENT_CREDIT"
	ReasonAdjustmentDebit  = "ADJUSTMENT_DEBIT"
	ReasonTransferIn       = "STOCK_TRANSFER_IN"
	ReasonTransferOut      = "STOCK_TRANSFER_OUT"
	ReasonOpeningBalance   = "OPENING_BALANCE"
)

// ReasonCodeInfo describes a registered reason code.
type ReasonCodeInfo struct {
	Description string
	Direction   LedgerDirection
	RequiresRef bool
}

// ReasonCodes is the fixed registry of valid ledger reason codes.
var ReasonCodes = map[string]ReasonCodeInfo{
	ReasonPurchaseReceived: {"Live birds received from supplier", DirectionCredit, true},
	ReasonProcessingDebit:  {"Live birds consumed in processing", DirectionDebit, true},
	ReasonProcessingCredit: {"Processed inventory created", DirectionCredit, true},
	ReasonSaleDebit:        {"Inventory sold to customer", DirectionDebit, true},
	ReasonVariancePositive: {"Found stock (approved)", DirectionCredit, true},
	ReasonVarianceNegative: {"Lost stock (deducted)", DirectionDebit, true},
	ReasonWastage:          {"Processing wastage (non-sellable)", DirectionDebit, true},
	ReasonAdjustmentCredit: {"Manual admin adjustment (increase)", DirectionCredit, false},
	ReasonAdjustmentDebit:  {"Manual admin adjustment (decrease)", DirectionDebit, false},
	ReasonTransferIn:       {"Stock received from another store", DirectionCredit, true},
	ReasonTransferOut:      {"Stock sent to another store", DirectionDebit, true},
	ReasonOpeningBalance:   {"Opening stock balance", DirectionCredit, false},
}

// Staff point reason codes.
const (
	PointsZeroVariance     = "ZERO_VARIANCE"
	PointsPositiveVariance = "POSITIVE_VARIANCE"
	PointsNegativeVariance = "NEGATIVE_VARIANCE"
	PointsAdminOverride    = "ADMIN_OVERRIDE"
	PointsMissedSettlement = "MISSED_SETTLEMENT"
	PointsManualGrant      = "MANUAL_GRANT"
)

// Staff points configuration keys (values live in staff_points_config).
const (
	CfgZeroVarianceBonus         = "ZERO_VARIANCE_BONUS"
	CfgPositiveVarianceBonus     = "POSITIVE_VARIANCE_BONUS"
	CfgNegativePenaltyPerKg      = "NEGATIVE_VARIANCE_PENALTY_PER_KG"
	CfgNegativePenaltyBase       = "NEGATIVE_VARIANCE_PENALTY_BASE"
	CfgAdminOverridePenalty      = "ADMIN_OVERRIDE_PENALTY"
	CfgMissedSettlementPenalty   = "MISSED_SETTLEMENT_PENALTY"
	CfgRepeatedNegativeThreshold = "REPEATED_NEGATIVE_THRESHOLD"
)

// Grading configuration keys (values live in grading_config).
const (
	CfgGradeAPlusMin = "GRADE_A_PLUS_MIN"
	CfgGradeAMin     = "GRADE_A_MIN"
	CfgGradeBMin     = "GRADE_B_MIN"
	CfgGradeCMin     = "GRADE_C_MIN"
	CfgGradeDMin     = "GRADE_D_MIN"

	CfgBonusRatePrefix   = "BONUS_RATE_"   // + grade, e.g. BONUS_RATE_A_PLUS
	CfgPenaltyRatePrefix = "PENALTY_RATE_" // + grade, e.g. PENALTY_RATE_E

	CfgBonusCapMonthly   = "BONUS_CAP_MONTHLY"
	CfgPenaltyCapMonthly = "PENALTY_CAP_MONTHLY"
)

// StaffGrade ladder, best to worst.
type StaffGrade string

const (
	GradeAPlus StaffGrade = "A_PLUS"
	GradeA     StaffGrade = "A"
	GradeB     StaffGrade = "B"
	GradeC     StaffGrade = "C"
	GradeD     StaffGrade = "D"
	GradeE     StaffGrade = "E"
)
