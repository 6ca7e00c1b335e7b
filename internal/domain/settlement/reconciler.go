// Package settlement validates tender against the amount due and produces
// the immutable transaction record for a sale.
package settlement

import (
	"strings"

	"github.com/sangkips/tillpoint/internal/domain/cart"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// Tolerance absorbs sub-cent noise when comparing tender to a requirement.
var Tolerance = decimal.RequireFromString("0.001")

// Customer is a credit account as last reported by the ledger.
type Customer struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Input is everything a checkout attempt reads, captured at the moment the
// cashier invokes checkout.
type Input struct {
	Lines            []cart.Line
	Modifiers        pricing.Modifiers
	Tender           Tender
	CreditSale       bool
	CreditMode       enum.CreditMode
	CustomerName     string
	SelectedCustomer *Customer
}

type Reconciler struct {
	cfg pricing.Config
}

func NewReconciler(cfg pricing.Config) *Reconciler {
	return &Reconciler{cfg: cfg}
}

// Config returns the pricing configuration the reconciler settles with.
func (r *Reconciler) Config() pricing.Config {
	return r.cfg
}

// outcome is what tender validation decided, before line synthesis.
type outcome struct {
	cash         decimal.Decimal
	card         decimal.Decimal
	credit       decimal.Decimal
	change       decimal.Decimal
	paid         decimal.Decimal
	customerName string
	creditSale   bool
	partial      bool
}

// Reconcile runs one checkout attempt. It has no side effects; a returned
// error means nothing may be committed.
func (r *Reconciler) Reconcile(in Input) (*Settlement, error) {
	tender := Tender{
		Cash:   pricing.NonNegative(in.Tender.Cash),
		Card:   pricing.NonNegative(in.Tender.Card),
		Credit: pricing.NonNegative(in.Tender.Credit),
	}

	if len(in.Lines) == 0 && in.SelectedCustomer != nil && in.SelectedCustomer.Balance.IsPositive() {
		return settleBalancePayment(*in.SelectedCustomer, tender)
	}

	totals := pricing.Calculate(in.Lines, in.Modifiers, r.cfg)
	if len(in.Lines) == 0 && totals.CashbackAmount.IsZero() && totals.LottoWinnings.IsZero() {
		return nil, ErrNothingToProcess
	}

	cashback := totals.CashbackAmount.IsPositive()
	if in.CreditSale && cashback {
		return nil, ErrCashbackOnCredit
	}

	due := totals.AmountDue()
	var (
		out outcome
		err error
	)
	switch {
	case in.CreditSale:
		out, err = settleCredit(in, tender, due)
	case cashback:
		out, err = settleCashback(tender, totals, totals.CashbackAmount.Round(2))
	default:
		out, err = settleStandard(tender, due)
	}
	if err != nil {
		return nil, err
	}

	rounded := totals.Rounded()
	tx := Transaction{
		Items:            buildItems(in.Lines, rounded),
		OriginalSubtotal: rounded.OriginalSubtotal,
		Discount:         rounded.Discount,
		Subtotal:         rounded.Subtotal,
		TaxableAmount:    rounded.TaxableAmount,
		NonTaxableAmount: rounded.NonTaxableAmount,
		Tax:              rounded.Tax,
		CashbackAmount:   rounded.CashbackAmount,
		CashbackFee:      rounded.CashbackFee,
		CardFee:          rounded.CardFee,
		LottoWinnings:    rounded.LottoWinnings,
		Total:            rounded.Total,
		FinalTotal:       due,
		PaymentBreakdown: buildBreakdown(out, rounded.LottoWinnings),
		Change:           out.change.Round(2),
		IsCreditSale:     out.creditSale,
		IsPartialPayment: out.partial,
		CreditBalance:    out.credit.Round(2),
	}
	if out.creditSale {
		tx.CustomerName = out.customerName
		if out.credit.IsPositive() {
			tx.CreditStatus = enum.CreditStatusUnpaid.Ptr()
		} else {
			tx.CreditStatus = enum.CreditStatusPaid.Ptr()
		}
	}

	s := &Settlement{Transaction: tx}
	fullyUnpaidCredit := out.creditSale && out.paid.IsZero() && out.credit.IsPositive()
	s.DecrementInventory = len(in.Lines) > 0 && !fullyUnpaidCredit
	if out.creditSale && out.credit.IsPositive() && out.customerName != "" {
		s.Ledger = &LedgerOp{
			Action:       enum.LedgerActionAddCredit,
			CustomerName: out.customerName,
			Amount:       tx.CreditBalance,
		}
	}
	return s, nil
}

func settleStandard(t Tender, due decimal.Decimal) (outcome, error) {
	paid := t.Paid()
	if paid.LessThan(due.Sub(Tolerance)) {
		return outcome{}, &ShortfallError{Tender: "payment", Required: due, Paid: paid}
	}
	change := pricing.NonNegative(paid.Sub(due))
	return outcome{
		cash:   t.Cash.Sub(change),
		card:   t.Card,
		change: change,
		paid:   paid,
	}, nil
}

// settleCashback settles on card alone. The card must cover total plus
// cashback regardless of any lottery payout; the drawer hands back the
// cashback and the winnings, so the cash entry is negative and no change
// is given.
func settleCashback(t Tender, totals pricing.Totals, cashback decimal.Decimal) (outcome, error) {
	required := totals.CardDue()
	if t.Card.LessThan(required.Sub(Tolerance)) {
		return outcome{}, &ShortfallError{Tender: "card payment", Required: required, Paid: t.Card}
	}
	return outcome{
		cash: cashback.Add(totals.LottoWinnings.Round(2)).Neg(),
		card: t.Card,
		paid: t.Card,
	}, nil
}

func settleCredit(in Input, t Tender, due decimal.Decimal) (outcome, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" && in.SelectedCustomer != nil {
		name = strings.TrimSpace(in.SelectedCustomer.Name)
	}
	paid := t.Paid()

	// Winnings at or above the amount due leave nothing to put on account;
	// the drawer pays the customer out exactly as in a cash sale.
	if !due.IsPositive() {
		out, err := settleStandard(t, due)
		if err != nil {
			return outcome{}, err
		}
		out.customerName = name
		out.creditSale = true
		return out, nil
	}

	var credit, required decimal.Decimal
	if in.CreditMode == enum.CreditModeSpecified {
		credit = t.Credit.Round(2)
		// A specified credit above the amount due leaves a negative
		// requirement, which any tender satisfies.
		required = pricing.NonNegative(due.Sub(credit))
	} else {
		credit = pricing.NonNegative(due.Sub(paid)).Round(2)
		required = pricing.NonNegative(due.Sub(credit))
	}

	if !credit.IsZero() && name == "" {
		return outcome{}, ErrCustomerNameRequired
	}
	if paid.LessThan(required.Sub(Tolerance)) {
		return outcome{}, &ShortfallError{Tender: "payment toward credit sale", Required: required, Paid: paid}
	}

	change := pricing.NonNegative(paid.Sub(required))
	return outcome{
		cash:         t.Cash.Sub(change),
		card:         t.Card,
		credit:       credit,
		change:       change,
		paid:         paid,
		customerName: name,
		creditSale:   true,
		partial:      paid.IsPositive() && credit.IsPositive(),
	}, nil
}

func settleBalancePayment(c Customer, t Tender) (*Settlement, error) {
	paid := t.Paid()
	if !paid.IsPositive() {
		return nil, ErrPaymentRequired
	}
	balance := c.Balance.Round(2)
	applied := decimal.Min(paid, balance)
	change := paid.Sub(applied)
	remaining := balance.Sub(applied)

	out := outcome{
		cash:   t.Cash.Sub(change),
		card:   t.Card,
		change: change,
		paid:   paid,
	}
	tx := Transaction{
		Items: []Item{{
			Identity:  string(enum.LineKindBalancePayment),
			Kind:      enum.LineKindBalancePayment,
			Name:      "Balance Payment",
			UnitPrice: applied,
			Quantity:  1,
		}},
		OriginalSubtotal: applied,
		Subtotal:         applied,
		NonTaxableAmount: applied,
		Total:            applied,
		FinalTotal:       applied,
		PaymentBreakdown: buildBreakdown(out, decimal.Zero),
		Change:           change.Round(2),
		IsBalancePayment: true,
		CustomerName:     c.Name,
	}
	return &Settlement{
		Transaction: tx,
		Ledger: &LedgerOp{
			Action:       enum.LedgerActionPayment,
			CustomerName: c.Name,
			Amount:       applied,
		},
		ProjectedBalance: &remaining,
	}, nil
}

func buildItems(lines []cart.Line, t pricing.Totals) []Item {
	items := make([]Item, 0, len(lines)+5)
	for _, l := range lines {
		kind := enum.LineKindItem
		if l.IsManual {
			kind = enum.LineKindManual
		}
		items = append(items, Item{
			Identity:  l.Identity,
			ProductID: l.ProductID,
			Kind:      kind,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Category:  l.Category,
			ApplyTax:  l.ApplyTax,
		})
	}

	pseudo := func(kind enum.LineKind, name string, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}
		items = append(items, Item{
			Identity:  string(kind),
			Kind:      kind,
			Name:      name,
			UnitPrice: amount,
			Quantity:  1,
		})
	}
	pseudo(enum.LineKindCashback, "Cashback", t.CashbackAmount)
	pseudo(enum.LineKindCashbackFee, "Cashback Fee", t.CashbackFee)
	pseudo(enum.LineKindCardFee, "Card Fee", t.CardFee)
	pseudo(enum.LineKindLottery, "Lottery Winnings", t.LottoWinnings.Neg())
	pseudo(enum.LineKindDiscount, "Discount", t.Discount.Neg())
	return items
}

// buildBreakdown orders entries cash, card, credit, lotto and drops zeros.
func buildBreakdown(out outcome, lotto decimal.Decimal) []Payment {
	var payments []Payment
	add := func(method enum.PaymentMethod, amount decimal.Decimal, customer string) {
		amount = amount.Round(2)
		if amount.IsZero() {
			return
		}
		payments = append(payments, Payment{Method: method, Amount: amount, CustomerName: customer})
	}
	add(enum.PaymentMethodCash, out.cash, "")
	add(enum.PaymentMethodCard, out.card, "")
	add(enum.PaymentMethodCredit, out.credit, out.customerName)
	add(enum.PaymentMethodLotto, lotto, "")
	return payments
}
