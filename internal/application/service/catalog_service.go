package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"go.uber.org/zap"
)

const defaultSearchLimit = 25

// CatalogService handles product lookup and stock operations
type CatalogService struct {
	productRepo repository.ProductRepository
	log         *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(productRepo repository.ProductRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		log:         log.Named("catalog"),
	}
}

// InventorySnapshot is the full catalog stamped with its version
type InventorySnapshot struct {
	Version int64            `json:"version"`
	Items   []entity.Product `json:"items"`
}

// StockUpdate sets the absolute stock of one product
type StockUpdate struct {
	ID    uuid.UUID
	Stock int
}

// StockUpdateResult reports the new version and the ids that did not exist
type StockUpdateResult struct {
	Version int64       `json:"version"`
	Updated int         `json:"updated"`
	Missing []uuid.UUID `json:"missing,omitempty"`
}

// Snapshot returns every product with the current inventory version
func (s *CatalogService) Snapshot(ctx context.Context) (*InventorySnapshot, error) {
	version, err := s.productRepo.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("read inventory version: %w", err)
	}
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &InventorySnapshot{Version: version, Items: products}, nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// Search resolves a scanned or typed token. An exact code match wins
// outright; otherwise products whose name contains the token are returned.
func (s *CatalogService) Search(ctx context.Context, term string, limit int) ([]entity.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []entity.Product{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	byCode, err := s.productRepo.GetByCode(ctx, term)
	if err != nil {
		return nil, err
	}
	if byCode != nil {
		return []entity.Product{*byCode}, nil
	}
	return s.productRepo.SearchByName(ctx, term, limit)
}

// UpdateStock writes absolute post-sale stock values in one transaction
func (s *CatalogService) UpdateStock(ctx context.Context, updates []StockUpdate) (*StockUpdateResult, error) {
	if len(updates) == 0 {
		return nil, apperror.NewBadRequestError("At least one item is required")
	}

	var fieldErrors []apperror.FieldError
	stock := make(map[uuid.UUID]int, len(updates))
	for i, u := range updates {
		if u.ID == uuid.Nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d].id", i), Message: "id is required"})
			continue
		}
		if u.Stock < 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d].stock", i), Message: "stock must not be negative"})
			continue
		}
		stock[u.ID] = u.Stock
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	version, missing, err := s.productRepo.SetStockBatch(ctx, stock)
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	if len(missing) > 0 {
		s.log.Warn("stock update skipped unknown products", zap.Int("missing", len(missing)))
	}
	s.log.Info("inventory updated", zap.Int64("version", version), zap.Int("items", len(stock)-len(missing)))

	return &StockUpdateResult{
		Version: version,
		Updated: len(stock) - len(missing),
		Missing: missing,
	}, nil
}
