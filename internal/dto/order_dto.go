package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

// CreateOrderRequest captures a completed sale. CustomerName resolves to an
// existing customer or creates one on the fly.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customer_name"  validate:"required,min=1,max=150"`
	CustomerPhone *string            `json:"customer_phone" validate:"omitempty,max=30"`
	PaymentMethod string             `json:"payment_method" validate:"required,oneof=cash card bank_transfer mobile_money"`
	PaymentStatus string             `json:"payment_status" validate:"omitempty,oneof=pending completed failed"`
	DueDate       *string            `json:"due_date"       validate:"omitempty,datetime=2006-01-02"`
	WarehouseID   *string            `json:"warehouse_id"   validate:"omitempty,uuid"`
	Items         []OrderItemRequest `json:"items"          validate:"required,min=1,dive"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending completed failed"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type OrderFilter struct {
	Status        string     `form:"status"`
	PaymentStatus string     `form:"payment_status"`
	CustomerID    *uuid.UUID `form:"-"`
	Customer      string     `form:"customer_id" validate:"omitempty,uuid"`
	Page          int        `form:"page,default=1"   validate:"min=1"`
	Limit         int        `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	VariantID   string          `json:"variant_id"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	Number        int64               `json:"number"`
	CustomerName  string              `json:"customer_name"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	PaymentStatus string              `json:"payment_status"`
	DueDate       *string             `json:"due_date"`
	Total         decimal.Decimal     `json:"total"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"created_at"`
}

type CustomerResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	CreatedAt string  `json:"created_at"`
}

type OrderListResponse struct {
	Data       []OrderResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
