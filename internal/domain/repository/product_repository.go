package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/entity"
)

// ProductRepository defines the interface for catalog and stock operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	CreateBatch(ctx context.Context, products []entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// SearchByName returns products whose name contains term, case-insensitively
	SearchByName(ctx context.Context, term string, limit int) ([]entity.Product, error)
	ListAll(ctx context.Context) ([]entity.Product, error)
	Count(ctx context.Context) (int64, error)
	// SetStockBatch writes absolute stock values and bumps the inventory
	// version in one transaction. Unknown ids are reported, not written.
	SetStockBatch(ctx context.Context, stock map[uuid.UUID]int) (version int64, missing []uuid.UUID, err error)
	// Version returns the current inventory version
	Version(ctx context.Context) (int64, error)
}
