package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sangkips/tillpoint/internal/config"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects using the configured driver
func Open(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteDB(cfg.Path, debug, log)
	case "", "postgres":
		return NewPostgresDB(cfg, debug, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: gormLogger(debug),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to database", zap.String("driver", "postgres"), zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return db, nil
}

// NewSQLiteDB opens a single-file (or in-memory) database for a standalone till
func NewSQLiteDB(path string, debug bool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger(debug),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info("connected to database", zap.String("driver", "sqlite"), zap.String("path", path))
	return db, nil
}

func gormLogger(debug bool) logger.Interface {
	if debug {
		return logger.Default.LogMode(logger.Info)
	}
	return logger.Default.LogMode(logger.Warn)
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		// Catalog
		&entity.Product{},
		&entity.InventoryVersion{},

		// Sales
		&entity.Transaction{},
		&entity.TransactionItem{},
		&entity.PaymentLine{},

		// Credit ledger
		&entity.CreditAccount{},
		&entity.CreditEntry{},
		&entity.LedgerOutboxEntry{},

		// System
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultData fills an empty catalog with a starter set of products
func SeedDefaultData(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&entity.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	price := decimal.RequireFromString
	products := []entity.Product{
		{Code: "060410001234", Name: "Cola 355ml", Category: "Drinks", Price: price("1.50"), Taxable: true, Stock: 48},
		{Code: "060410005678", Name: "Spring Water 500ml", Category: "Drinks", Price: price("1.25"), Taxable: true, Stock: 60},
		{Code: "068100084245", Name: "Milk 2L", Category: "Dairy", Price: price("4.79"), Taxable: false, Stock: 20},
		{Code: "056800040009", Name: "White Bread", Category: "Bakery", Price: price("3.49"), Taxable: false, Stock: 15},
		{Code: "034000002405", Name: "Chocolate Bar", Category: "Snacks", Price: price("1.99"), Taxable: true, Stock: 36},
		{Code: "028400090858", Name: "Potato Chips", Category: "Snacks", Price: price("2.99"), Taxable: true, Stock: 24},
		{Code: "012000161155", Name: "Iced Tea 591ml", Category: "Drinks", Price: price("2.49"), Taxable: true, Stock: 30},
		{Code: "PLU4011", Name: "Bananas (each)", Category: "Produce", Price: price("0.35"), Taxable: false, Stock: 120},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&products).Error; err != nil {
			return err
		}
		if err := tx.Create(&entity.InventoryVersion{ID: 1, Version: 1}).Error; err != nil {
			return err
		}
		log.Info("seeded catalog", zap.Int("products", len(products)))
		return nil
	})
}
