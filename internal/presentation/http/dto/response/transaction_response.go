package response

import (
	"time"

	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
)

// TransactionResponse is a stored transaction in the shape registers sent it
type TransactionResponse struct {
	ID          string                 `json:"id"`
	TerminalID  string                 `json:"terminal_id"`
	CreatedAt   time.Time              `json:"created_at"`
	Transaction settlement.Transaction `json:"transaction"`
}

func NewTransactionResponse(tx *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID.String(),
		TerminalID:  tx.TerminalID,
		CreatedAt:   tx.CreatedAt,
		Transaction: tx.Record(),
	}
}
