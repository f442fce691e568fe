package repository

import (
	"context"
	"time"

	"github.com/DanielShofela/Stock/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository serves the aggregate counters shown on the landing
// page. Read-only.
type DashboardRepository interface {
	CountProducts(ctx context.Context) (int64, error)
	CountVariants(ctx context.Context) (int64, error)
	CountOutOfStock(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	OrdersSince(ctx context.Context, since time.Time) (count int64, revenue decimal.Decimal, err error)
	CountPendingPayments(ctx context.Context) (int64, error)

	// OverduePayments counts completed orders still pending payment whose due
	// date has passed, and returns the oldest ones up to limit.
	OverduePayments(ctx context.Context, now time.Time, limit int) (int64, []model.Order, error)
	RecentMovements(ctx context.Context, limit int) ([]model.StockMovement, error)
}

type dashboardRepo struct{ db *gorm.DB }

func NewDashboardRepository(db *gorm.DB) DashboardRepository { return &dashboardRepo{db: db} }

func (r *dashboardRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepo) CountVariants(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ProductVariant{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepo) CountOutOfStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.StockLevel{}).
		Where("quantity <= 0").Count(&n).Error
	return n, err
}

func (r *dashboardRepo) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.StockLevel{}).
		Where("quantity > 0 AND quantity <= safety_stock").Count(&n).Error
	return n, err
}

func (r *dashboardRepo) OrdersSince(ctx context.Context, since time.Time) (int64, decimal.Decimal, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("created_at >= ? AND status = ?", since, model.OrderCompleted)
	if err := q.Count(&count).Error; err != nil {
		return 0, decimal.Zero, err
	}

	var revenue decimal.NullDecimal
	err := q.Select("SUM(total)").Scan(&revenue).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	if !revenue.Valid {
		return count, decimal.Zero, nil
	}
	return count, revenue.Decimal, nil
}

func (r *dashboardRepo) CountPendingPayments(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("payment_status = ? AND status = ?", model.PaymentPending, model.OrderCompleted).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepo) OverduePayments(ctx context.Context, now time.Time, limit int) (int64, []model.Order, error) {
	overdue := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Order{}).
			Where("payment_status = ? AND status = ? AND due_date IS NOT NULL AND due_date < ?",
				model.PaymentPending, model.OrderCompleted, now)
	}

	var n int64
	if err := overdue().Count(&n).Error; err != nil {
		return 0, nil, err
	}

	var orders []model.Order
	err := overdue().
		Preload("Customer").
		Order("due_date ASC").Limit(limit).
		Find(&orders).Error
	return n, orders, err
}

func (r *dashboardRepo) RecentMovements(ctx context.Context, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Limit(limit).Find(&movements).Error
	return movements, err
}
