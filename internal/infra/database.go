package infra

import (
	"fmt"

	"github.com/DanielShofela/Stock/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// to create / update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway container.
func RunMigrations(db *gorm.DB) error {
	// Needed for gen_random_uuid() on Postgres < 13 installs
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Product{},
		&model.ProductVariant{},
		&model.Warehouse{},
		&model.StockLevel{},
		&model.StockMovement{},
		&model.Customer{},
		&model.Order{},
		&model.OrderItem{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return nil
}
