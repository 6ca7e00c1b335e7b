package settlement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNothingToProcess     = errors.New("nothing to process: add items, cashback or lottery winnings")
	ErrCustomerNameRequired = errors.New("customer name is required for a sale with a credit balance")
	ErrCashbackOnCredit     = errors.New("cashback cannot be combined with a credit sale")
	ErrPaymentRequired      = errors.New("enter a payment amount for the balance payment")
)

// ShortfallError reports tender that does not cover the amount required.
type ShortfallError struct {
	// Tender names what fell short: "payment", "card payment" or "payment toward credit sale".
	Tender   string
	Required decimal.Decimal
	Paid     decimal.Decimal
}

// Owed is the amount still missing.
func (e *ShortfallError) Owed() decimal.Decimal {
	return e.Required.Sub(e.Paid)
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("insufficient %s: %s still owed (required %s, tendered %s)",
		e.Tender, e.Owed().StringFixed(2), e.Required.StringFixed(2), e.Paid.StringFixed(2))
}

// IsValidation reports whether err is a checkout validation failure, as
// opposed to a failure talking to a collaborator.
func IsValidation(err error) bool {
	var sf *ShortfallError
	return errors.As(err, &sf) ||
		errors.Is(err, ErrNothingToProcess) ||
		errors.Is(err, ErrCustomerNameRequired) ||
		errors.Is(err, ErrCashbackOnCredit) ||
		errors.Is(err, ErrPaymentRequired)
}
