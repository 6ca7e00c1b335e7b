package request

import (
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// LedgerRequest is an addCredit or payment against a customer account.
// Field checks happen in the credit service so every problem is reported.
type LedgerRequest struct {
	Action         enum.LedgerAction `json:"action"`
	CustomerName   string            `json:"customerName"`
	Amount         decimal.Decimal   `json:"amount"`
	TransactionRef string            `json:"transactionRef"`
}
