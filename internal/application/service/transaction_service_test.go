package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	infraRepo "github.com/sangkips/tillpoint/internal/infrastructure/repository"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func cashSale() settlement.Transaction {
	d := decimal.RequireFromString
	return settlement.Transaction{
		Items: []settlement.Item{
			{Identity: "p1", Kind: enum.LineKindItem, Name: "Chips", UnitPrice: d("3.29"), Quantity: 1, ApplyTax: true},
		},
		OriginalSubtotal: d("3.29"),
		Subtotal:         d("3.29"),
		TaxableAmount:    d("3.29"),
		Tax:              d("0.43"),
		Total:            d("3.72"),
		FinalTotal:       d("3.72"),
		PaymentBreakdown: []settlement.Payment{{Method: enum.PaymentMethodCash, Amount: d("3.72")}},
		Change:           d("1.28"),
	}
}

func TestTransactionService_CreateAndGet(t *testing.T) {
	svc := NewTransactionService(infraRepo.NewTransactionRepository(newTestDB(t)), zap.NewNop())
	ctx := context.Background()

	tx, err := svc.CreateTransaction(ctx, "till-1", cashSale())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tx.ID)

	got, err := svc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	rec := got.Record()
	assert.Equal(t, "3.72", rec.FinalTotal.StringFixed(2))
	assert.Equal(t, "1.28", rec.Change.StringFixed(2))

	page, err := svc.ListTransactions(ctx, &repository.TransactionFilterParams{TerminalID: "till-1"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Pagination.Total)
}

func TestTransactionService_Validation(t *testing.T) {
	svc := NewTransactionService(infraRepo.NewTransactionRepository(newTestDB(t)), zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, "till-1", settlement.Transaction{})
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = svc.CreateTransaction(ctx, "", cashSale())
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = svc.GetTransaction(ctx, uuid.New())
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}
