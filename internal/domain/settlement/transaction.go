package settlement

import (
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Item is a snapshot of a cart line or a signed modifier line.
type Item struct {
	Identity  string          `json:"identity"`
	ProductID string          `json:"product_id,omitempty"`
	Kind      enum.LineKind   `json:"kind"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category,omitempty"`
	ApplyTax  bool            `json:"apply_tax"`
}

// Amount is unit price times quantity.
func (i Item) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Payment struct {
	Method       enum.PaymentMethod `json:"method"`
	Amount       decimal.Decimal    `json:"amount"`
	CustomerName string             `json:"customer_name,omitempty"`
}

// Transaction is the settled record of a sale or a balance payment. All
// money is rounded to cents.
type Transaction struct {
	Items            []Item             `json:"items"`
	OriginalSubtotal decimal.Decimal    `json:"original_subtotal"`
	Discount         decimal.Decimal    `json:"discount"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	TaxableAmount    decimal.Decimal    `json:"taxable_amount"`
	NonTaxableAmount decimal.Decimal    `json:"non_taxable_amount"`
	Tax              decimal.Decimal    `json:"tax"`
	CashbackAmount   decimal.Decimal    `json:"cashback_amount"`
	CashbackFee      decimal.Decimal    `json:"cashback_fee"`
	CardFee          decimal.Decimal    `json:"card_fee"`
	LottoWinnings    decimal.Decimal    `json:"lotto_winnings"`
	Total            decimal.Decimal    `json:"total"`
	FinalTotal       decimal.Decimal    `json:"final_total"`
	PaymentBreakdown []Payment          `json:"payment_breakdown"`
	Change           decimal.Decimal    `json:"change"`
	IsCreditSale     bool               `json:"is_credit_sale"`
	IsPartialPayment bool               `json:"is_partial_payment"`
	IsBalancePayment bool               `json:"is_balance_payment"`
	CreditBalance    decimal.Decimal    `json:"credit_balance"`
	CreditStatus     *enum.CreditStatus `json:"credit_status"`
	CustomerName     string             `json:"customer_name,omitempty"`
}

// Settled sums the breakdown, excluding lottery entries.
func (t Transaction) Settled() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range t.PaymentBreakdown {
		if p.Method == enum.PaymentMethodLotto {
			continue
		}
		sum = sum.Add(p.Amount)
	}
	return sum
}

// PaymentFor returns the breakdown entry for method, if any.
func (t Transaction) PaymentFor(method enum.PaymentMethod) (Payment, bool) {
	for _, p := range t.PaymentBreakdown {
		if p.Method == method {
			return p, true
		}
	}
	return Payment{}, false
}

// GoodsLines returns the items that represent physical stock.
func (t Transaction) GoodsLines() []Item {
	var out []Item
	for _, it := range t.Items {
		if it.Kind == enum.LineKindItem {
			out = append(out, it)
		}
	}
	return out
}

// LedgerOp is the credit-account mutation a settlement asks for.
type LedgerOp struct {
	Action       enum.LedgerAction `json:"action"`
	CustomerName string            `json:"customer_name"`
	Amount       decimal.Decimal   `json:"amount"`
}

// Settlement is the outcome of a successful reconciliation.
type Settlement struct {
	Transaction Transaction `json:"transaction"`

	// DecrementInventory is false for a fully unpaid credit sale and for
	// balance payments.
	DecrementInventory bool `json:"decrement_inventory"`

	Ledger *LedgerOp `json:"ledger,omitempty"`

	// ProjectedBalance is the account balance expected after a balance
	// payment. The ledger's answer supersedes it.
	ProjectedBalance *decimal.Decimal `json:"projected_balance,omitempty"`
}
