package register

import (
	"context"

	"github.com/sangkips/tillpoint/internal/domain/cart"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/pkg/terminal"
	"github.com/shopspring/decimal"
)

// CommittedTransaction is the transaction API's answer to a create call.
type CommittedTransaction struct {
	ID          string                 `json:"id"`
	Transaction settlement.Transaction `json:"transaction"`
}

// TransactionAPI persists settled transactions.
type TransactionAPI interface {
	Create(ctx context.Context, terminalID string, tx settlement.Transaction) (*CommittedTransaction, error)
}

// InventorySnapshot is the catalog as reported by the inventory API.
type InventorySnapshot struct {
	Version int64       `json:"version"`
	Items   []cart.Item `json:"items"`
}

// StockLevel is an absolute post-sale stock value.
type StockLevel struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}

// InventoryAPI reads the catalog and writes stock.
type InventoryAPI interface {
	List(ctx context.Context) (*InventorySnapshot, error)
	// Update writes levels and returns the new inventory version.
	Update(ctx context.Context, levels []StockLevel) (int64, error)
}

// CreditLedger reads and mutates customer credit accounts. Mutations
// return the account as the ledger now sees it.
type CreditLedger interface {
	// LookupCustomer returns nil, nil for an unknown customer.
	LookupCustomer(ctx context.Context, name string) (*settlement.Customer, error)
	AddCredit(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error)
	ApplyPayment(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error)
}

// PaymentTerminal charges a card.
type PaymentTerminal interface {
	Charge(ctx context.Context, amount decimal.Decimal) (*terminal.ChargeResult, error)
}

// LedgerQueue holds ledger operations that must be retried later.
type LedgerQueue interface {
	Enqueue(ctx context.Context, terminalID, transactionRef string, op settlement.LedgerOp) error
}
