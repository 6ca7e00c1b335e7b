package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint/internal/application/service"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/response"
)

// CreditHandler handles customer credit account requests
type CreditHandler struct {
	creditService *service.CreditService
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(creditService *service.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// Accounts looks up one account with ?name=, or lists accounts matching
// ?search=
func (h *CreditHandler) Accounts(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		account, err := h.creditService.GetAccount(c.Request.Context(), name)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Credit account retrieved", account)
		return
	}

	accounts, err := h.creditService.ListAccounts(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Credit accounts retrieved", accounts)
}

// Apply records addCredit or payment
func (h *CreditHandler) Apply(c *gin.Context) {
	var req request.LedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	account, err := h.creditService.Apply(c.Request.Context(), &service.LedgerInput{
		Action:         req.Action,
		CustomerName:   req.CustomerName,
		Amount:         req.Amount,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Credit account updated", account)
}

// History returns the latest entries of one account
func (h *CreditHandler) History(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.BadRequest(c, "Customer name is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.creditService.History(c.Request.Context(), name, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Credit history retrieved", entries)
}
