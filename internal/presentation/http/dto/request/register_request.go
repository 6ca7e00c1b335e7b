package request

import (
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a catalog item by id
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// ScanRequest resolves a scanned or typed token
type ScanRequest struct {
	Token string `json:"token" binding:"required"`
}

// ManualItemRequest adds an item that is not in the catalog
type ManualItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price"`
	Category string `json:"category"`
	ApplyTax bool   `json:"apply_tax"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1"`
}

// ChangeQuantityRequest adjusts a line by delta units
type ChangeQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// TenderRequest is the tender form plus the credit-sale switches
type TenderRequest struct {
	Tender     settlement.RawTender `json:"tender"`
	CreditSale bool                 `json:"credit_sale"`
	CreditMode enum.CreditMode      `json:"credit_mode"`
}

// SelectCustomerRequest picks the customer for a credit sale or balance payment
type SelectCustomerRequest struct {
	Name string `json:"name" binding:"required"`
}

// ChargeRequest charges the card terminal; a zero amount charges the
// remaining amount due
type ChargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// KeyEventRequest is one raw keystroke. Key holds a single character;
// "Enter" ends a scan. AtMillis is the client timestamp in Unix milliseconds.
type KeyEventRequest struct {
	Key          string `json:"key" binding:"required"`
	AtMillis     int64  `json:"at_ms"`
	InputFocused bool   `json:"input_focused"`
}

// KeysRequest carries a batch of keystrokes in arrival order
type KeysRequest struct {
	Events []KeyEventRequest `json:"events" binding:"required,min=1,dive"`
}
