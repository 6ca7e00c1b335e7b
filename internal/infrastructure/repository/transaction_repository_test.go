package repository

import (
	"context"
	"testing"

	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	domainRepo "github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() settlement.Transaction {
	d := decimal.RequireFromString
	return settlement.Transaction{
		Items: []settlement.Item{
			{Identity: "x", Kind: enum.LineKindItem, Name: "Soda", UnitPrice: d("1.50"), Quantity: 2, Category: "Drinks", ApplyTax: true},
			{Identity: "discount", Kind: enum.LineKindDiscount, Name: "Discount", UnitPrice: d("-1.00"), Quantity: 1},
		},
		OriginalSubtotal: d("3.00"),
		Discount:         d("1.00"),
		Subtotal:         d("2.00"),
		TaxableAmount:    d("3.00"),
		Tax:              d("0.26"),
		Total:            d("2.26"),
		FinalTotal:       d("2.26"),
		PaymentBreakdown: []settlement.Payment{
			{Method: enum.PaymentMethodCash, Amount: d("1.26")},
			{Method: enum.PaymentMethodCredit, Amount: d("1.00"), CustomerName: "Ana"},
		},
		IsCreditSale:  true,
		CreditBalance: d("1.00"),
		CreditStatus:  enum.CreditStatusUnpaid.Ptr(),
		CustomerName:  "Ana",
	}
}

func TestTransactionRepository_RoundTrip(t *testing.T) {
	repo := NewTransactionRepository(newTestDB(t))
	ctx := context.Background()

	row := entity.NewTransaction("till-1", sampleRecord())
	require.NoError(t, repo.Create(ctx, row))

	got, err := repo.GetByID(ctx, row.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	rec := got.Record()
	require.Len(t, rec.Items, 2)
	assert.Equal(t, enum.LineKindDiscount, rec.Items[1].Kind)
	require.Len(t, rec.PaymentBreakdown, 2)
	assert.Equal(t, "Ana", rec.PaymentBreakdown[1].CustomerName)
	assert.Equal(t, "2.26", rec.FinalTotal.StringFixed(2))
	require.NotNil(t, rec.CreditStatus)
	assert.Equal(t, enum.CreditStatusUnpaid, *rec.CreditStatus)
}

func TestTransactionRepository_ListFilters(t *testing.T) {
	repo := NewTransactionRepository(newTestDB(t))
	ctx := context.Background()

	cash := sampleRecord()
	cash.IsCreditSale = false
	cash.CreditStatus = nil
	cash.CustomerName = ""
	require.NoError(t, repo.Create(ctx, entity.NewTransaction("till-1", sampleRecord())))
	require.NoError(t, repo.Create(ctx, entity.NewTransaction("till-2", cash)))

	all, total, err := repo.List(ctx, &domainRepo.TransactionFilterParams{Pagination: pagination.DefaultPagination()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	credit, total, err := repo.List(ctx, &domainRepo.TransactionFilterParams{CreditOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "till-1", credit[0].TerminalID)

	byTerminal, _, err := repo.List(ctx, &domainRepo.TransactionFilterParams{TerminalID: "till-2"})
	require.NoError(t, err)
	assert.Len(t, byTerminal, 1)
}
