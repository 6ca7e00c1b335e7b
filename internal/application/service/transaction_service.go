package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/sangkips/tillpoint/pkg/pagination"
	"go.uber.org/zap"
)

// TransactionService persists settled sales and balance payments
type TransactionService struct {
	txRepo repository.TransactionRepository
	log    *zap.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(txRepo repository.TransactionRepository, log *zap.Logger) *TransactionService {
	return &TransactionService{
		txRepo: txRepo,
		log:    log.Named("transactions"),
	}
}

// CreateTransaction stores a settled record. The record is taken as is;
// settlement already validated it on the register.
func (s *TransactionService) CreateTransaction(ctx context.Context, terminalID string, rec settlement.Transaction) (*entity.Transaction, error) {
	if len(rec.Items) == 0 {
		return nil, apperror.NewBadRequestError("Transaction has no items")
	}
	if terminalID == "" {
		return nil, apperror.NewBadRequestError("Terminal is required")
	}
	for i, it := range rec.Items {
		if it.Quantity < 1 {
			return nil, apperror.NewValidationError([]apperror.FieldError{{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be at least 1",
			}})
		}
	}

	tx := entity.NewTransaction(terminalID, rec)
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.log.Info("transaction recorded",
		zap.String("id", tx.ID.String()),
		zap.String("terminal_id", terminalID),
		zap.String("final_total", rec.FinalTotal.StringFixed(2)),
		zap.Bool("credit_sale", rec.IsCreditSale),
		zap.Bool("balance_payment", rec.IsBalancePayment),
	)
	return tx, nil
}

// GetTransaction retrieves a transaction by ID
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return tx, nil
}

// ListTransactions lists transactions with filtering
func (s *TransactionService) ListTransactions(ctx context.Context, params *repository.TransactionFilterParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	txs, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(txs, pag), nil
}
