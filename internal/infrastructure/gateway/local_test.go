package gateway

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/application/register"
	"github.com/sangkips/tillpoint/internal/application/service"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/internal/infrastructure/database"
	infraRepo "github.com/sangkips/tillpoint/internal/infrastructure/repository"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newLocal(t *testing.T) (*Local, []entity.Product) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	products := infraRepo.NewProductRepository(db)
	seed := []entity.Product{
		{Code: "4011", Name: "Bananas", Category: "Produce", Price: decimal.RequireFromString("0.79"), Stock: 40},
		{Code: "0620", Name: "Gum", Category: "Candy", Price: decimal.RequireFromString("1.99"), Taxable: true, Stock: 12},
	}
	require.NoError(t, products.CreateBatch(context.Background(), seed))

	log := zap.NewNop()
	return NewLocal(
		service.NewCatalogService(products, log),
		service.NewTransactionService(infraRepo.NewTransactionRepository(db), log),
		service.NewCreditService(infraRepo.NewCreditRepository(db), log),
	), seed
}

func TestLocal_Inventory(t *testing.T) {
	l, seed := newLocal(t)
	ctx := context.Background()

	snap, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, seed[1].ID.String(), snap.Items[0].ID, "candy sorts before produce")

	version, err := l.Update(ctx, []register.StockLevel{{ID: seed[0].ID.String(), Stock: 37}})
	require.NoError(t, err)
	assert.Greater(t, version, snap.Version)

	after, err := l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, version, after.Version)
	for _, it := range after.Items {
		if it.ID == seed[0].ID.String() {
			assert.Equal(t, 37, it.Stock)
		}
	}

	_, err = l.Update(ctx, []register.StockLevel{{ID: "not-a-uuid", Stock: 1}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}

func TestLocal_Create(t *testing.T) {
	l, seed := newLocal(t)

	rec := settlement.Transaction{
		Items: []settlement.Item{{
			Identity:  seed[0].ID.String(),
			ProductID: seed[0].ID.String(),
			Kind:      enum.LineKindItem,
			Name:      "Bananas",
			UnitPrice: decimal.RequireFromString("0.79"),
			Quantity:  2,
		}},
		Subtotal:   decimal.RequireFromString("1.58"),
		Total:      decimal.RequireFromString("1.58"),
		FinalTotal: decimal.RequireFromString("1.58"),
		PaymentBreakdown: []settlement.Payment{
			{Method: enum.PaymentMethodCash, Amount: decimal.RequireFromString("1.58")},
		},
	}

	committed, err := l.Create(context.Background(), "lane-1", rec)
	require.NoError(t, err)
	_, err = uuid.Parse(committed.ID)
	require.NoError(t, err)
	assert.True(t, rec.FinalTotal.Equal(committed.Transaction.FinalTotal))
	require.Len(t, committed.Transaction.Items, 1)
	assert.Equal(t, 2, committed.Transaction.Items[0].Quantity)
}

func TestLocal_CreditLedger(t *testing.T) {
	l, _ := newLocal(t)
	ctx := context.Background()

	unknown, err := l.LookupCustomer(ctx, "Dana")
	require.NoError(t, err)
	assert.Nil(t, unknown)

	c, err := l.AddCredit(ctx, "Dana", decimal.RequireFromString("40"), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "Dana", c.Name)
	assert.True(t, decimal.RequireFromString("40").Equal(c.Balance))

	c, err = l.ApplyPayment(ctx, "dana", decimal.RequireFromString("25"), "tx-2")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15").Equal(c.Balance))

	found, err := l.LookupCustomer(ctx, "DANA")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, decimal.RequireFromString("15").Equal(found.Balance))

	_, err = l.ApplyPayment(ctx, "Dana", decimal.RequireFromString("100"), "tx-3")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}
