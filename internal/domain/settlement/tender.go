package settlement

import (
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// Tender is the money offered by the customer.
type Tender struct {
	Cash   decimal.Decimal `json:"cash"`
	Card   decimal.Decimal `json:"card"`
	Credit decimal.Decimal `json:"credit"`
}

// RawTender is the tender form as typed.
type RawTender struct {
	Cash       string           `json:"cash"`
	Card       string           `json:"card"`
	Credit     string           `json:"credit"`
	LastEdited enum.TenderField `json:"last_edited"`
}

func (r RawTender) Parse() Tender {
	return Tender{
		Cash:   pricing.AmountOrZero(r.Cash),
		Card:   pricing.AmountOrZero(r.Card),
		Credit: pricing.AmountOrZero(r.Credit),
	}
}

// Paid is cash plus card.
func (t Tender) Paid() decimal.Decimal {
	return t.Cash.Add(t.Card)
}

// Autofill derives the field the cashier did not edit so that cash and
// card together cover due. Only the field opposite to last is written.
// While cashback is active cash is unavailable and card carries the whole
// amount.
func Autofill(r RawTender, due decimal.Decimal, cashbackActive bool) RawTender {
	out := r
	if cashbackActive {
		out.Cash = ""
		if r.LastEdited != enum.TenderFieldCard {
			out.Card = pricing.NonNegative(due).StringFixed(2)
		}
		return out
	}
	switch r.LastEdited {
	case enum.TenderFieldCash:
		rest := pricing.NonNegative(due.Sub(pricing.AmountOrZero(r.Cash)))
		out.Card = rest.StringFixed(2)
	case enum.TenderFieldCard:
		rest := pricing.NonNegative(due.Sub(pricing.AmountOrZero(r.Card)))
		out.Cash = rest.StringFixed(2)
	}
	return out
}
