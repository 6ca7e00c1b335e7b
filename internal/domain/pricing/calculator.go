// Package pricing derives every money figure of a sale from the cart lines
// and the modifier inputs. Nothing here rounds; callers round to cents when
// they store or display a value.
package pricing

import (
	"sort"

	"github.com/sangkips/tillpoint/internal/domain/cart"
	"github.com/shopspring/decimal"
)

var (
	DefaultTaxRate = decimal.RequireFromString("0.13")
	DefaultCardFee = decimal.RequireFromString("0.50")
)

type Config struct {
	TaxRate decimal.Decimal
	CardFee decimal.Decimal
}

func DefaultConfig() Config {
	return Config{TaxRate: DefaultTaxRate, CardFee: DefaultCardFee}
}

// Modifiers are the parsed, non-negative modifier values.
type Modifiers struct {
	Discount       decimal.Decimal `json:"discount"`
	CashbackAmount decimal.Decimal `json:"cashback_amount"`
	CashbackFee    decimal.Decimal `json:"cashback_fee"`
	LottoWinnings  decimal.Decimal `json:"lotto_winnings"`
	CardFeeEnabled bool            `json:"card_fee_enabled"`
}

// RawModifiers hold the modifier fields exactly as the cashier typed them.
type RawModifiers struct {
	Discount       string `json:"discount"`
	CashbackAmount string `json:"cashback_amount"`
	CashbackFee    string `json:"cashback_fee"`
	LottoWinnings  string `json:"lotto_winnings"`
	CardFeeEnabled bool   `json:"card_fee_enabled"`
}

// Parse converts the raw fields, treating anything unparseable as zero.
func (r RawModifiers) Parse() Modifiers {
	return Modifiers{
		Discount:       AmountOrZero(r.Discount),
		CashbackAmount: AmountOrZero(r.CashbackAmount),
		CashbackFee:    AmountOrZero(r.CashbackFee),
		LottoWinnings:  AmountOrZero(r.LottoWinnings),
		CardFeeEnabled: r.CardFeeEnabled,
	}
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

type Totals struct {
	OriginalSubtotal    decimal.Decimal `json:"original_subtotal"`
	Discount            decimal.Decimal `json:"discount"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	TaxableAmount       decimal.Decimal `json:"taxable_amount"`
	NonTaxableAmount    decimal.Decimal `json:"non_taxable_amount"`
	Tax                 decimal.Decimal `json:"tax"`
	CashbackAmount      decimal.Decimal `json:"cashback_amount"`
	CashbackFee         decimal.Decimal `json:"cashback_fee"`
	CardFee             decimal.Decimal `json:"card_fee"`
	LottoWinnings       decimal.Decimal `json:"lotto_winnings"`
	AmountWithSurcharge decimal.Decimal `json:"amount_with_surcharge"`
	Total               decimal.Decimal `json:"total"`
	FinalTotal          decimal.Decimal `json:"final_total"`
	CategoryTotals      []CategoryTotal `json:"category_totals"`
}

// Calculate is pure: identical inputs always produce identical totals.
func Calculate(lines []cart.Line, m Modifiers, cfg Config) Totals {
	subtotal := decimal.Zero
	taxable := decimal.Zero
	byCategory := make(map[string]*CategoryTotal)

	for _, l := range lines {
		ext := l.Extended()
		subtotal = subtotal.Add(ext)
		if l.ApplyTax {
			taxable = taxable.Add(ext)
		}
		ct, ok := byCategory[l.Category]
		if !ok {
			ct = &CategoryTotal{Category: l.Category, Amount: decimal.Zero}
			byCategory[l.Category] = ct
		}
		ct.Quantity += l.Quantity
		ct.Amount = ct.Amount.Add(ext)
	}

	discount := NonNegative(m.Discount)
	discounted := NonNegative(subtotal.Sub(discount))

	// Discount is spread pro-rata over taxable and non-taxable revenue.
	tax := decimal.Zero
	if subtotal.IsPositive() {
		tax = taxable.Mul(discounted).Div(subtotal).Mul(cfg.TaxRate)
	}

	cardFee := decimal.Zero
	if m.CardFeeEnabled {
		cardFee = cfg.CardFee
	}
	cashback := NonNegative(m.CashbackAmount)
	cashbackFee := NonNegative(m.CashbackFee)
	lotto := NonNegative(m.LottoWinnings)

	withSurcharge := discounted.Add(cashbackFee).Add(cardFee)
	total := withSurcharge.Add(tax)

	return Totals{
		OriginalSubtotal:    subtotal,
		Discount:            subtotal.Sub(discounted),
		Subtotal:            discounted,
		TaxableAmount:       taxable,
		NonTaxableAmount:    subtotal.Sub(taxable),
		Tax:                 tax,
		CashbackAmount:      cashback,
		CashbackFee:         cashbackFee,
		CardFee:             cardFee,
		LottoWinnings:       lotto,
		AmountWithSurcharge: withSurcharge,
		Total:               total,
		FinalTotal:          total.Add(cashback).Sub(lotto),
		CategoryTotals:      sortedCategories(byCategory),
	}
}

// Rounded returns a copy with every figure rounded to cents.
func (t Totals) Rounded() Totals {
	r := t
	r.OriginalSubtotal = t.OriginalSubtotal.Round(2)
	r.Discount = t.Discount.Round(2)
	r.Subtotal = t.Subtotal.Round(2)
	r.TaxableAmount = t.TaxableAmount.Round(2)
	r.NonTaxableAmount = t.NonTaxableAmount.Round(2)
	r.Tax = t.Tax.Round(2)
	r.CashbackAmount = t.CashbackAmount.Round(2)
	r.CashbackFee = t.CashbackFee.Round(2)
	r.CardFee = t.CardFee.Round(2)
	r.LottoWinnings = t.LottoWinnings.Round(2)
	r.AmountWithSurcharge = t.AmountWithSurcharge.Round(2)
	r.Total = t.Total.Round(2)
	r.FinalTotal = t.FinalTotal.Round(2)
	r.CategoryTotals = make([]CategoryTotal, len(t.CategoryTotals))
	for i, ct := range t.CategoryTotals {
		ct.Amount = ct.Amount.Round(2)
		r.CategoryTotals[i] = ct
	}
	return r
}

// AmountDue is the final total at the precision the customer pays.
func (t Totals) AmountDue() decimal.Decimal {
	return t.FinalTotal.Round(2)
}

// CardDue is what the card alone must cover while cashback is active:
// total plus cashback, before any lottery payout.
func (t Totals) CardDue() decimal.Decimal {
	return t.Total.Add(t.CashbackAmount).Round(2)
}

func sortedCategories(m map[string]*CategoryTotal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(m))
	for _, ct := range m {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
