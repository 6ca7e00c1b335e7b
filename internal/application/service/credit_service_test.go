package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/sangkips/tillpoint/internal/domain/enum"
	infraRepo "github.com/sangkips/tillpoint/internal/infrastructure/repository"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreditService_AddCreditThenPayment(t *testing.T) {
	svc := NewCreditService(infraRepo.NewCreditRepository(newTestDB(t)), zap.NewNop())
	ctx := context.Background()

	account, err := svc.Apply(ctx, &LedgerInput{
		Action:         enum.LedgerActionAddCredit,
		CustomerName:   "Maria Lopez",
		Amount:         decimal.RequireFromString("12.345"),
		TransactionRef: "tx-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "12.35", account.Balance.StringFixed(2))

	account, err = svc.Apply(ctx, &LedgerInput{
		Action:       enum.LedgerActionPayment,
		CustomerName: "maria lopez",
		Amount:       decimal.RequireFromString("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2.35", account.Balance.StringFixed(2))

	got, err := svc.GetAccount(ctx, "MARIA LOPEZ")
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez", got.CustomerName)

	history, err := svc.History(ctx, "Maria Lopez", 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestCreditService_ReplayedRefAppliesOnce(t *testing.T) {
	svc := NewCreditService(infraRepo.NewCreditRepository(newTestDB(t)), zap.NewNop())
	ctx := context.Background()
	add := &LedgerInput{
		Action:         enum.LedgerActionAddCredit,
		CustomerName:   "Ann",
		Amount:         decimal.NewFromInt(10),
		TransactionRef: "tx-1",
	}

	for i := 0; i < 2; i++ {
		account, err := svc.Apply(ctx, add)
		require.NoError(t, err)
		assert.Equal(t, "10.00", account.Balance.StringFixed(2))
	}

	pay := &LedgerInput{
		Action:         enum.LedgerActionPayment,
		CustomerName:   "Ann",
		Amount:         decimal.NewFromInt(4),
		TransactionRef: "tx-1",
	}
	for i := 0; i < 2; i++ {
		account, err := svc.Apply(ctx, pay)
		require.NoError(t, err)
		assert.Equal(t, "6.00", account.Balance.StringFixed(2), "same ref under another action is its own entry")
	}

	history, err := svc.History(ctx, "Ann", 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestCreditService_Rejections(t *testing.T) {
	svc := NewCreditService(infraRepo.NewCreditRepository(newTestDB(t)), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Apply(ctx, &LedgerInput{Action: enum.LedgerActionPayment, CustomerName: "Nobody", Amount: decimal.NewFromInt(1)})
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	_, err = svc.Apply(ctx, &LedgerInput{Action: enum.LedgerActionAddCredit, CustomerName: "Sam", Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)

	_, err = svc.Apply(ctx, &LedgerInput{Action: enum.LedgerActionPayment, CustomerName: "Sam", Amount: decimal.NewFromInt(6)})
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	_, err = svc.Apply(ctx, &LedgerInput{Action: "refund", CustomerName: "", Amount: decimal.Zero})
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Len(t, appErr.Errors, 3)

	_, err = svc.GetAccount(ctx, "Unknown")
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}
