package repository

import (
	"context"

	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreditRepository defines the interface for credit account operations
type CreditRepository interface {
	// GetByName looks an account up by normalized customer name. Returns nil, nil when absent.
	GetByName(ctx context.Context, name string) (*entity.CreditAccount, error)
	List(ctx context.Context, search string) ([]entity.CreditAccount, error)
	// Apply adjusts the balance by delta atomically and records an entry.
	// With create set, a missing account is opened first. A delta that
	// would take the balance below zero is refused with ErrInsufficientBalance.
	// An entry whose action and transaction ref were already recorded is not
	// applied again; the account is returned as it stands.
	Apply(ctx context.Context, name string, delta decimal.Decimal, entry entity.CreditEntry, create bool) (*entity.CreditAccount, error)
	Entries(ctx context.Context, name string, limit int) ([]entity.CreditEntry, error)
}
