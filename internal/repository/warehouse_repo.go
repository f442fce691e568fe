package repository

import (
	"context"

	"github.com/DanielShofela/Stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WarehouseRepository interface {
	Create(ctx context.Context, w *model.Warehouse) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error)
	FindByName(ctx context.Context, name string) (*model.Warehouse, error)
	List(ctx context.Context) ([]model.Warehouse, error)
	Update(ctx context.Context, w *model.Warehouse) error
}

type warehouseRepo struct{ db *gorm.DB }

func NewWarehouseRepository(db *gorm.DB) WarehouseRepository { return &warehouseRepo{db: db} }

func (r *warehouseRepo) Create(ctx context.Context, w *model.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *warehouseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.db.WithContext(ctx).First(&w, id).Error
	return &w, err
}

func (r *warehouseRepo) FindByName(ctx context.Context, name string) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&w).Error
	return &w, err
}

func (r *warehouseRepo) List(ctx context.Context) ([]model.Warehouse, error) {
	var warehouses []model.Warehouse
	err := r.db.WithContext(ctx).Order("name ASC").Find(&warehouses).Error
	return warehouses, err
}

func (r *warehouseRepo) Update(ctx context.Context, w *model.Warehouse) error {
	return r.db.WithContext(ctx).Save(w).Error
}
