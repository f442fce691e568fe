package repository

import (
	"context"
	"time"

	"github.com/DanielShofela/Stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementFilter defines filters for listing stock movements.
type MovementFilter struct {
	VariantID   *uuid.UUID
	WarehouseID *uuid.UUID
	Type        string
	Page        int
	Limit       int
}

// StockRepository covers both sides of the inventory: the immutable movement
// ledger and the per-variant-per-warehouse quantity projection.
type StockRepository interface {
	// Levels
	FindLevel(ctx context.Context, variantID, warehouseID uuid.UUID) (*model.StockLevel, error)
	ListLevelsByVariant(ctx context.Context, variantID uuid.UUID) ([]model.StockLevel, error)
	ListLevelsByVariants(ctx context.Context, variantIDs []uuid.UUID) ([]model.StockLevel, error)
	CreateLevelTx(tx *gorm.DB, level *model.StockLevel) error
	UpdateSafetyStock(ctx context.Context, variantID, warehouseID uuid.UUID, safety int) error

	// AdjustQuantityTx applies a server-side relative increment so concurrent
	// movements never lose updates. Returns gorm.ErrRecordNotFound when no
	// level row exists for the pair.
	AdjustQuantityTx(tx *gorm.DB, variantID, warehouseID uuid.UUID, delta int) error

	// Movements — append-only; there is no update or delete.
	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error)
	ListMovementsByVariant(ctx context.Context, variantID uuid.UUID) ([]model.StockMovement, error)
	ListMovementsByDateRange(ctx context.Context, from, to time.Time) ([]model.StockMovement, error)

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) FindLevel(ctx context.Context, variantID, warehouseID uuid.UUID) (*model.StockLevel, error) {
	var level model.StockLevel
	err := r.db.WithContext(ctx).
		Where("variant_id = ? AND warehouse_id = ?", variantID, warehouseID).
		First(&level).Error
	return &level, err
}

func (r *stockRepo) ListLevelsByVariant(ctx context.Context, variantID uuid.UUID) ([]model.StockLevel, error) {
	var levels []model.StockLevel
	err := r.db.WithContext(ctx).Where("variant_id = ?", variantID).Find(&levels).Error
	return levels, err
}

func (r *stockRepo) ListLevelsByVariants(ctx context.Context, variantIDs []uuid.UUID) ([]model.StockLevel, error) {
	if len(variantIDs) == 0 {
		return nil, nil
	}
	var levels []model.StockLevel
	err := r.db.WithContext(ctx).Where("variant_id IN ?", variantIDs).Find(&levels).Error
	return levels, err
}

func (r *stockRepo) CreateLevelTx(tx *gorm.DB, level *model.StockLevel) error {
	return tx.Create(level).Error
}

func (r *stockRepo) UpdateSafetyStock(ctx context.Context, variantID, warehouseID uuid.UUID, safety int) error {
	res := r.db.WithContext(ctx).Model(&model.StockLevel{}).
		Where("variant_id = ? AND warehouse_id = ?", variantID, warehouseID).
		Updates(map[string]interface{}{
			"safety_stock":  safety,
			"last_modified": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stockRepo) AdjustQuantityTx(tx *gorm.DB, variantID, warehouseID uuid.UUID, delta int) error {
	res := tx.Model(&model.StockLevel{}).
		Where("variant_id = ? AND warehouse_id = ?", variantID, warehouseID).
		Updates(map[string]interface{}{
			"quantity":      gorm.Expr("quantity + ?", delta),
			"last_modified": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockRepo) ListMovements(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.VariantID != nil {
		q = q.Where("variant_id = ?", *filter.VariantID)
	}
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.Type != "" {
		q = q.Where("movement_type = ?", filter.Type)
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
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

func (r *stockRepo) ListMovementsByVariant(ctx context.Context, variantID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

// ListMovementsByDateRange returns movements with created_at in [from, to],
// oldest first. Bounds are inclusive; callers widen the end bound to cover
// the whole final day.
func (r *stockRepo) ListMovementsByDateRange(ctx context.Context, from, to time.Time) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}
