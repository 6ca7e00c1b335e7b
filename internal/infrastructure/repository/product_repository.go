package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	domainRepo "github.com/sangkips/tillpoint/internal/domain/repository"
	"gorm.io/gorm"
)

const inventoryVersionRow = 1

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		_, err := bumpVersion(tx)
		return err
	})
}

func (r *productRepository) CreateBatch(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&products).Error; err != nil {
			return err
		}
		_, err := bumpVersion(tx)
		return err
	})
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) SearchByName(ctx context.Context, term string, limit int) ([]entity.Product, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []entity.Product{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+term+"%").
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) ListAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Order("category ASC, name ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&n).Error
	return n, err
}

// SetStockBatch writes absolute stock values in a single transaction
func (r *productRepository) SetStockBatch(ctx context.Context, stock map[uuid.UUID]int) (int64, []uuid.UUID, error) {
	var (
		version int64
		missing []uuid.UUID
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, qty := range stock {
			result := tx.Model(&entity.Product{}).
				Where("id = ?", id).
				Update("stock", qty)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				missing = append(missing, id)
			}
		}
		var err error
		version, err = bumpVersion(tx)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].String() < missing[j].String() })
	return version, missing, nil
}

func (r *productRepository) Version(ctx context.Context) (int64, error) {
	var v entity.InventoryVersion
	err := r.db.WithContext(ctx).First(&v, "id = ?", inventoryVersionRow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return v.Version, err
}

// bumpVersion increments the inventory stamp, creating the row on first use
func bumpVersion(tx *gorm.DB) (int64, error) {
	result := tx.Model(&entity.InventoryVersion{}).
		Where("id = ?", inventoryVersionRow).
		Update("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		row := entity.InventoryVersion{ID: inventoryVersionRow, Version: 1}
		if err := tx.Create(&row).Error; err != nil {
			return 0, err
		}
		return row.Version, nil
	}
	var v entity.InventoryVersion
	if err := tx.First(&v, "id = ?", inventoryVersionRow).Error; err != nil {
		return 0, err
	}
	return v.Version, nil
}
