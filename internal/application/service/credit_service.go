package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreditService handles customer credit accounts
type CreditService struct {
	creditRepo repository.CreditRepository
	log        *zap.Logger
}

// NewCreditService creates a new credit service
func NewCreditService(creditRepo repository.CreditRepository, log *zap.Logger) *CreditService {
	return &CreditService{
		creditRepo: creditRepo,
		log:        log.Named("credit"),
	}
}

// LedgerInput represents a request to mutate a credit account
type LedgerInput struct {
	Action         enum.LedgerAction
	CustomerName   string
	Amount         decimal.Decimal
	TransactionRef string
}

// GetAccount looks up an account by customer name
func (s *CreditService) GetAccount(ctx context.Context, name string) (*entity.CreditAccount, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.NewBadRequestError("Customer name is required")
	}
	account, err := s.creditRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperror.NewNotFoundError("Credit account")
	}
	return account, nil
}

// ListAccounts lists accounts whose name contains search
func (s *CreditService) ListAccounts(ctx context.Context, search string) ([]entity.CreditAccount, error) {
	return s.creditRepo.List(ctx, search)
}

// History returns the most recent entries of an account
func (s *CreditService) History(ctx context.Context, name string, limit int) ([]entity.CreditEntry, error) {
	entries, err := s.creditRepo.Entries(ctx, name, limit)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, apperror.NewNotFoundError("Credit account")
	}
	return entries, err
}

// Apply records addCredit or payment and returns the authoritative account.
// addCredit opens the account on first use; payment requires an existing
// account and may not exceed the balance owed.
func (s *CreditService) Apply(ctx context.Context, input *LedgerInput) (*entity.CreditAccount, error) {
	var fieldErrors []apperror.FieldError
	if !input.Action.Valid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "action", Message: "action must be addCredit or payment"})
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customerName", Message: "customer name is required"})
	}
	if !input.Amount.IsPositive() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	amount := input.Amount.Round(2)
	entry := entity.CreditEntry{Action: input.Action, Amount: amount}
	if input.TransactionRef != "" {
		ref := input.TransactionRef
		entry.TransactionRef = &ref
	}

	delta := amount
	create := true
	if input.Action == enum.LedgerActionPayment {
		delta = amount.Neg()
		create = false
	}

	account, err := s.creditRepo.Apply(ctx, input.CustomerName, delta, entry, create)
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		return nil, apperror.NewNotFoundError("Credit account")
	case errors.Is(err, repository.ErrInsufficientBalance):
		return nil, apperror.NewUnprocessableError("Payment exceeds outstanding balance")
	case err != nil:
		return nil, fmt.Errorf("apply %s: %w", input.Action, err)
	}

	s.log.Info("credit account updated",
		zap.String("customer", account.CustomerName),
		zap.String("action", input.Action.String()),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", account.Balance.StringFixed(2)),
	)
	return account, nil
}
