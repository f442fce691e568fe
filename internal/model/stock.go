package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. Sign convention: in/purchase are positive, out/sale/damaged
// are negative, adjustment may be either sign. The handler layer negates a
// positive quantity for out/sale/damaged before it reaches the service.
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
	MovementDamaged    = "damaged"
	MovementSale       = "sale"
	MovementPurchase   = "purchase"
	MovementTransfer   = "transfer"
)

// ValidMovementType reports whether t is one of the known movement types.
func ValidMovementType(t string) bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementDamaged,
		MovementSale, MovementPurchase, MovementTransfer:
		return true
	}
	return false
}

// StockLevel is the mutable on-hand projection for one variant at one
// warehouse. Quantity is maintained by atomic server-side increments inside
// the same transaction that appends the movement, so it cannot drift from
// the ledger under partial failure. Negative quantities are permitted.
type StockLevel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_variant_warehouse;not null"`
	WarehouseID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_variant_warehouse;not null"`
	Quantity    int       `gorm:"not null;default:0"`
	SafetyStock int       `gorm:"not null;default:0"`
	// InitialQuantity is a creation-time snapshot, kept for reporting only.
	InitialQuantity int       `gorm:"not null;default:0"`
	LastModified    time.Time `gorm:"not null"`

	Variant   *ProductVariant `gorm:"foreignKey:VariantID"`
	Warehouse *Warehouse      `gorm:"foreignKey:WarehouseID"`
}

// StockMovement is one immutable ledger entry: a single signed quantity
// change for a variant at a warehouse. Entries are never updated or deleted.
// Product, variant, SKU and actor labels are denormalized at write time so
// historical reports stay attributable after renames or deletes.
type StockMovement struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID    *uuid.UUID `gorm:"type:uuid;index"`
	WarehouseID  *uuid.UUID `gorm:"type:uuid"`
	Quantity     int        `gorm:"not null"`
	MovementType string     `gorm:"not null;index"`
	Reference    *string
	ActorLabel   string `gorm:"not null;default:''"`

	ProductNameCache string `gorm:"not null;default:''"`
	VariantNameCache string `gorm:"not null;default:''"`
	SKUCache         string `gorm:"column:sku_cache;not null;default:''"`

	CreatedAt time.Time `gorm:"index"`
}

// TableName matches the original schema (stock_movements).
func (StockMovement) TableName() string { return "stock_movements" }
