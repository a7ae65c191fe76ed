package dto

import "github.com/shopspring/decimal"

// ─── Stores ─────────────────────────────────────────────────────────────────

type CreateStoreRequest struct {
	Name     string  `json:"name"     validate:"required,min=2"`
	Address  *string `json:"address"`
	Timezone string  `json:"timezone" validate:"omitempty,timezone"`
}

type UpdateStoreRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=2"`
	Address  *string `json:"address"`
	Timezone *string `json:"timezone" validate:"omitempty,timezone"`
	Status   *string `json:"status"   validate:"omitempty,oneof=ACTIVE MAINTENANCE"`
}

type StoreResponse struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Address  *string `json:"address,omitempty"`
	Timezone string  `json:"timezone"`
	Status   string  `json:"status"`
}

// ─── Suppliers ──────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	Name    string  `json:"name"    validate:"required,min=2"`
	Contact *string `json:"contact"`
	Phone   *string `json:"phone"   validate:"omitempty,min=7,max=20"`
	Address *string `json:"address"`
}

type SupplierResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Contact *string `json:"contact,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Status  string  `json:"status"`
}

// ─── SKUs ───────────────────────────────────────────────────────────────────

type CreateSKURequest struct {
	Code          string          `json:"code"           validate:"required,min=2,max=40"`
	Name          string          `json:"name"           validate:"required,min=2"`
	BirdType      string          `json:"bird_type"      validate:"required,oneof=BROILER PARENT_CULL"`
	InventoryType string          `json:"inventory_type" validate:"required,oneof=LIVE SKIN SKINLESS"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"   validate:"required"`
}

type UpdateSKURequest struct {
	Name       *string          `json:"name"         validate:"omitempty,min=2"`
	PricePerKg *decimal.Decimal `json:"price_per_kg"`
	Active     *bool            `json:"active"`
}

type SKUResponse struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	BirdType      string          `json:"bird_type"`
	InventoryType string          `json:"inventory_type"`
	Unit          string          `json:"unit"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	Active        bool            `json:"active"`
}
