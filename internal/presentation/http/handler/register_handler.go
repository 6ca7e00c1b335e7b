package handler

import (
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tillpoint/internal/application/register"
	"github.com/sangkips/tillpoint/internal/domain/pricing"
	"github.com/sangkips/tillpoint/internal/domain/scanner"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/request"
	"github.com/sangkips/tillpoint/internal/presentation/http/dto/response"
	"github.com/sangkips/tillpoint/pkg/apperror"
)

// RegisterHandler drives one register session per terminal
type RegisterHandler struct {
	manager *register.Manager
}

// NewRegisterHandler creates a new register handler
func NewRegisterHandler(manager *register.Manager) *RegisterHandler {
	return &RegisterHandler{manager: manager}
}

func (h *RegisterHandler) session(c *gin.Context) *register.Session {
	return h.manager.Session(c.Param("terminal"))
}

// reply sends result with the session state; on error the state is still
// returned so the register can show the payment error
func reply(c *gin.Context, s *register.Session, message string, result interface{}, err error) {
	body := response.RegisterResponse{Result: result, State: s.State()}
	if err != nil {
		response.ErrorWithData(c, toAppError(err), body)
		return
	}
	response.OK(c, message, body)
}

// GetState returns the cart, totals, tender and messages
func (h *RegisterHandler) GetState(c *gin.Context) {
	s := h.session(c)
	response.OK(c, "Register state retrieved", response.RegisterResponse{State: s.State()})
}

// RefreshInventory reloads the catalog from the server
func (h *RegisterHandler) RefreshInventory(c *gin.Context) {
	s := h.session(c)
	version, err := s.RefreshInventory(c.Request.Context())
	reply(c, s, "Inventory refreshed", gin.H{"version": version}, err)
}

// AddItem adds one unit of a catalog item
func (h *RegisterHandler) AddItem(c *gin.Context) {
	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	s := h.session(c)
	line, err := s.AddItem(c.Request.Context(), req.ProductID)
	reply(c, s, "Item added", line, err)
}

// Scan resolves a barcode or typed search term
func (h *RegisterHandler) Scan(c *gin.Context) {
	var req request.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	s := h.session(c)
	res, err := s.Scan(c.Request.Context(), req.Token)
	reply(c, s, "Token resolved", res, err)
}

// Keys feeds raw keystrokes to the scanner classifier
func (h *RegisterHandler) Keys(c *gin.Context) {
	var req request.KeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	events := make([]register.KeyEvent, 0, len(req.Events))
	for _, ev := range req.Events {
		key, ok := keyRune(ev.Key)
		if !ok {
			continue
		}
		e := register.KeyEvent{Key: key, InputFocused: ev.InputFocused}
		if ev.AtMillis > 0 {
			e.At = time.UnixMilli(ev.AtMillis)
		}
		events = append(events, e)
	}

	s := h.session(c)
	resolutions, err := s.Keys(c.Request.Context(), events)
	reply(c, s, "Keys processed", gin.H{"resolutions": resolutions}, err)
}

// keyRune maps a browser key name to the rune the classifier consumes.
// Named keys other than Enter (Shift, Tab, ...) are dropped.
func keyRune(key string) (rune, bool) {
	if key == "Enter" {
		return scanner.Enter, true
	}
	if utf8.RuneCountInString(key) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(key)
	return r, true
}

// AddManual adds an item that is not in the catalog
func (h *RegisterHandler) AddManual(c *gin.Context) {
	var req request.ManualItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	s := h.session(c)
	line, err := s.AddManual(req.Name, req.Price, req.Category, req.ApplyTax, req.Quantity)
	reply(c, s, "Manual item added", line, err)
}

// DismissDraft closes the manual-entry form
func (h *RegisterHandler) DismissDraft(c *gin.Context) {
	s := h.session(c)
	s.DismissDraft()
	reply(c, s, "Manual entry dismissed", nil, nil)
}

// ChangeQuantity adjusts a line by delta
func (h *RegisterHandler) ChangeQuantity(c *gin.Context) {
	var req request.ChangeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	s := h.session(c)
	line, present, err := s.ChangeQuantity(c.Param("identity"), req.Delta)
	reply(c, s, "Quantity updated", gin.H{"line": line, "removed": !present}, err)
}

// ToggleTax flips whether tax applies to a line
func (h *RegisterHandler) ToggleTax(c *gin.Context) {
	s := h.session(c)
	line, err := s.ToggleTax(c.Param("identity"))
	reply(c, s, "Tax toggled", line, err)
}

// RemoveItem deletes a line
func (h *RegisterHandler) RemoveItem(c *gin.Context) {
	s := h.session(c)
	line, err := s.Remove(c.Param("identity"))
	reply(c, s, "Item removed", line, err)
}

// Void abandons the sale
func (h *RegisterHandler) Void(c *gin.Context) {
	s := h.session(c)
	s.Void()
	reply(c, s, "Sale voided", nil, nil)
}

// SetModifiers stores discount, cashback, lottery and card fee inputs
func (h *RegisterHandler) SetModifiers(c *gin.Context) {
	var req pricing.RawModifiers
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	s := h.session(c)
	s.SetModifiers(req)
	reply(c, s, "Modifiers updated", nil, nil)
}

// SetTender stores the tender form and credit-sale switches
func (h *RegisterHandler) SetTender(c *gin.Context) {
	var req request.TenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	s := h.session(c)
	tender := s.SetTender(register.TenderInput{
		Tender:     req.Tender,
		CreditSale: req.CreditSale,
		CreditMode: req.CreditMode,
	})
	reply(c, s, "Tender updated", tender, nil)
}

// SelectCustomer loads a credit account into the session
func (h *RegisterHandler) SelectCustomer(c *gin.Context) {
	var req request.SelectCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	s := h.session(c)
	customer, err := s.SelectCustomer(c.Request.Context(), req.Name)
	reply(c, s, "Customer selected", gin.H{"customer": customer, "known": customer != nil}, err)
}

// ClearCustomer drops the selected customer
func (h *RegisterHandler) ClearCustomer(c *gin.Context) {
	s := h.session(c)
	s.ClearCustomer()
	reply(c, s, "Customer cleared", nil, nil)
}

// Checkout settles the sale
func (h *RegisterHandler) Checkout(c *gin.Context) {
	s := h.session(c)
	result, err := s.Checkout(c.Request.Context())
	if err != nil {
		reply(c, s, "", nil, err)
		return
	}
	response.Created(c, "Transaction completed", response.RegisterResponse{Result: result, State: s.State()})
}

// Charge collects payment on the card terminal and checks out on approval
func (h *RegisterHandler) Charge(c *gin.Context) {
	var req request.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	if req.Amount.IsNegative() {
		response.Error(c, apperror.NewBadRequestError("Amount must not be negative"))
		return
	}

	s := h.session(c)
	result, err := s.PayWithTerminal(c.Request.Context(), req.Amount)
	reply(c, s, "Card payment completed", result, err)
}
