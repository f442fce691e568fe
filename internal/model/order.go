package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. Capture is single-step: an order is created already
// completed; there is no confirm/ship workflow.
const (
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Payment states.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Customer is created on the fly when an order names an unknown customer.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Phone     *string
	Email     *string
	CreatedAt time.Time
}

// Order is a captured customer order. Creating one decrements stock and
// appends sale movements in the same transaction. WarehouseID records which
// warehouse the sale drew from so cancellation restores the same levels.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number        int64           `gorm:"uniqueIndex;not null"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status        string          `gorm:"not null;default:'completed'"`
	PaymentMethod string          `gorm:"not null;default:'cash'"` // cash | card | bank_transfer | mobile_money
	PaymentStatus string          `gorm:"not null;default:'pending'"`
	DueDate       *time.Time      `gorm:"index"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time

	Customer *Customer   `gorm:"foreignKey:CustomerID"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is one line of an order. UnitPrice is the variant price at
// capture time, not a live join.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Variant *ProductVariant `gorm:"foreignKey:VariantID"`
}
