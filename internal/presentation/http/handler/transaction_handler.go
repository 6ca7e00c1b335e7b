package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/application/service"
	"github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/response"
	"github.com/sangkips/tillpoint/pkg/pagination"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// Create records a settled transaction. The authenticated terminal is
// recorded even if the body names another.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req request.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	terminalID := GetTerminalID(c)
	if terminalID == "" {
		terminalID = req.TerminalID
	}

	tx, err := h.transactionService.CreateTransaction(c.Request.Context(), terminalID, req.Transaction)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Transaction recorded", response.NewTransactionResponse(tx))
}

// Get returns one transaction
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	tx, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Transaction retrieved", response.NewTransactionResponse(tx))
}

// List returns transactions, newest first
func (h *TransactionHandler) List(c *gin.Context) {
	var filter request.TransactionFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.TransactionFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		TerminalID:   filter.TerminalID,
		CustomerName: filter.CustomerName,
		CreditOnly:   filter.CreditOnly,
	}
	if filter.StartDate != "" {
		if t, err := time.Parse("2006-01-02", filter.StartDate); err == nil {
			params.StartDate = &t
		}
	}
	if filter.EndDate != "" {
		if t, err := time.Parse("2006-01-02", filter.EndDate); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			params.EndDate = &end
		}
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]response.TransactionResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, response.NewTransactionResponse(&result.Items[i]))
	}
	response.SuccessWithPagination(c, 200, "Transactions retrieved", pagination.NewPaginatedResult(items, result.Pagination))
}
