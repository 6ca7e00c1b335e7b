package request

import "github.com/sangkips/tillpoint/internal/domain/settlement"

// CreateTransactionRequest carries a settled record from a register
type CreateTransactionRequest struct {
	TerminalID  string                 `json:"terminal_id"`
	Transaction settlement.Transaction `json:"transaction"`
}

// TransactionFilterRequest represents transaction filter parameters
type TransactionFilterRequest struct {
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
	TerminalID   string `form:"terminal_id"`
	CustomerName string `form:"customer_name"`
	CreditOnly   bool   `form:"credit_only"`
	StartDate    string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate      string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}
