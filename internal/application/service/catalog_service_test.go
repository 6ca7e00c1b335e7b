package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	infraRepo "github.com/sangkips/tillpoint/internal/infrastructure/repository"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalog(t *testing.T) (*CatalogService, []entity.Product) {
	t.Helper()
	repo := infraRepo.NewProductRepository(newTestDB(t))
	products := []entity.Product{
		{Code: "0001", Name: "Milk 2L", Category: "Dairy", Price: decimal.RequireFromString("4.99"), Stock: 8},
		{Code: "0002", Name: "Chocolate Milk", Category: "Dairy", Price: decimal.RequireFromString("2.49"), Taxable: true, Stock: 3},
		{Code: "0003", Name: "Chips", Category: "Snacks", Price: decimal.RequireFromString("3.29"), Taxable: true, Stock: 12},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), products))
	return NewCatalogService(repo, zap.NewNop()), products
}

func TestCatalogService_Search(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	byCode, err := svc.Search(ctx, "0003", 0)
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "Chips", byCode[0].Name)

	byName, err := svc.Search(ctx, "milk", 0)
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	none, err := svc.Search(ctx, "999999", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalogService_UpdateStock(t *testing.T) {
	svc, products := newCatalog(t)
	ctx := context.Background()

	before, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	res, err := svc.UpdateStock(ctx, []StockUpdate{
		{ID: products[0].ID, Stock: 6},
		{ID: uuid.New(), Stock: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, before.Version+1, res.Version)
	assert.Equal(t, 1, res.Updated)
	assert.Len(t, res.Missing, 1)

	p, err := svc.GetProduct(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Stock)
}

func TestCatalogService_UpdateStockValidation(t *testing.T) {
	svc, products := newCatalog(t)

	_, err := svc.UpdateStock(context.Background(), []StockUpdate{{ID: products[0].ID, Stock: -1}})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Equal(t, "items[0].stock", appErr.Errors[0].Field)

	_, err = svc.UpdateStock(context.Background(), nil)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = svc.GetProduct(context.Background(), uuid.New())
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}
