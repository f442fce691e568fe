package repository

import (
	"context"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	CreateTx(tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) error

	// NextOrderNumber allocates the next sequential order number inside tx.
	NextOrderNumber(tx *gorm.DB) (int64, error)

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items.Variant.Product").
		First(&o, id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var orders []model.Order
	err := q.Preload("Customer").Preload("Items.Variant.Product").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("payment_status", status).Error
}

// NextOrderNumber takes MAX(number)+1 under the surrounding transaction.
// The unique index on number turns a rare race into a retryable conflict
// instead of a duplicate.
func (r *orderRepo) NextOrderNumber(tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.Raw("SELECT COALESCE(MAX(number), 0) + 1 FROM orders").Scan(&next).Error
	return next, err
}
