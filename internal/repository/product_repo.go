package repository

import (
	"context"

	"github.com/DanielShofela/Stock/internal/dto"
	"github.com/DanielShofela/Stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for the catalog.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via mocks.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	CreateTx(tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Variants
	FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	FindVariantByBarcode(ctx context.Context, barcode string) (*model.ProductVariant, error)
	CreateVariantTx(tx *gorm.DB, v *model.ProductVariant) error
	UpdateVariant(ctx context.Context, v *model.ProductVariant) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&p, id).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Search != "" {
		q = q.Where("name ILIKE ? OR sku ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Variants").Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete removes the product; variants and stock levels go with it through
// the FK cascades. Movements survive with their cached labels.
func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Preload("Product").First(&v, id).Error
	return &v, err
}

func (r *productRepo) FindVariantByBarcode(ctx context.Context, barcode string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Preload("Product").Where("barcode = ?", barcode).First(&v).Error
	return &v, err
}

func (r *productRepo) CreateVariantTx(tx *gorm.DB, v *model.ProductVariant) error {
	return tx.Create(v).Error
}

func (r *productRepo) UpdateVariant(ctx context.Context, v *model.ProductVariant) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *productRepo) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.ProductVariant{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) DB() *gorm.DB { return r.db }
