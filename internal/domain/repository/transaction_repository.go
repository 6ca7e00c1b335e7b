package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/pkg/pagination"
)

// TransactionRepository defines the interface for transaction data operations
type TransactionRepository interface {
	// Create stores the transaction with its items and payment lines
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, int64, error)
}

// TransactionFilterParams contains filtering parameters for transaction queries
type TransactionFilterParams struct {
	Pagination   *pagination.PaginationParams
	TerminalID   string
	CustomerName string
	CreditOnly   bool
	StartDate    *time.Time
	EndDate      *time.Time
}
