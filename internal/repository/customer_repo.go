package repository

import (
	"context"
	"strings"

	"github.com/DanielShofela/Stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)

	// FindOrCreateByNameTx resolves the customer by exact name, creating it
	// when absent. Used during order capture inside the order transaction.
	FindOrCreateByNameTx(tx *gorm.DB, name string) (*model.Customer, error)
	SaveTx(tx *gorm.DB, c *model.Customer) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) List(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) FindOrCreateByNameTx(tx *gorm.DB, name string) (*model.Customer, error) {
	c := model.Customer{Name: strings.TrimSpace(name)}
	err := tx.Where("name = ?", c.Name).FirstOrCreate(&c).Error
	return &c, err
}

func (r *customerRepo) SaveTx(tx *gorm.DB, c *model.Customer) error {
	return tx.Save(c).Error
}
