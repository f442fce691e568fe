package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateVariantRequest struct {
	Name            string          `json:"name"             validate:"required,min=1,max=120"`
	Barcode         *string         `json:"barcode"          validate:"omitempty,min=4,max=32"`
	Price           decimal.Decimal `json:"price"            validate:"required"`
	InitialQuantity int             `json:"initial_quantity"`
	SafetyStock     int             `json:"safety_stock"     validate:"min=0"`
}

type CreateProductRequest struct {
	Name        string                 `json:"name"        validate:"required,min=1,max=150"`
	SKU         *string                `json:"sku"         validate:"omitempty,min=2,max=64"`
	Description *string                `json:"description"`
	Category    *string                `json:"category"`
	Images      []string               `json:"images"      validate:"omitempty,dive,url"`
	Variants    []CreateVariantRequest `json:"variants"    validate:"required,min=1,dive"`
	// WarehouseID targets initial stock; empty means the default warehouse.
	WarehouseID *string `json:"warehouse_id" validate:"omitempty,uuid"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1,max=150"`
	SKU         *string  `json:"sku"         validate:"omitempty,min=2,max=64"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Images      []string `json:"images"      validate:"omitempty,dive,url"`
}

type UpdateVariantRequest struct {
	Name    *string          `json:"name"    validate:"omitempty,min=1,max=120"`
	Barcode *string          `json:"barcode" validate:"omitempty,min=4,max=32"`
	Price   *decimal.Decimal `json:"price"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VariantResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Barcode     *string         `json:"barcode"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	SafetyStock int             `json:"safety_stock"`
	Status      string          `json:"status"` // in-stock | low | out
}

type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	SKU         *string           `json:"sku"`
	Description *string           `json:"description"`
	Category    *string           `json:"category"`
	Images      []string          `json:"images"`
	Quantity    int               `json:"quantity"` // sum across variants
	Status      string            `json:"status"`   // classified over summed quantity and safety
	Variants    []VariantResponse `json:"variants"`
	CreatedAt   string            `json:"created_at"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// PriceLookupResponse is returned by the public barcode price check endpoint.
type PriceLookupResponse struct {
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	Price       decimal.Decimal `json:"price"`
	Available   int             `json:"available"`
}
