package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry. A product never carries stock directly —
// stock is tracked per variant per warehouse (see StockLevel).
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"index;not null"`
	SKU         *string   `gorm:"uniqueIndex"`
	Description *string
	Category    *string  `gorm:"index"`
	Images      []string `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Deleting a product cascades to its variants (and from there to
	// stock levels). Movements are NOT cascaded — the ledger keeps its
	// cached labels so history survives the delete.
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductVariant is one sellable configuration (size, shade, …) of a product.
type ProductVariant struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"not null"`
	Barcode   *string         `gorm:"uniqueIndex"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time

	Product     *Product     `gorm:"foreignKey:ProductID"`
	StockLevels []StockLevel `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the table aligned with the original schema naming.
func (ProductVariant) TableName() string { return "product_variants" }
