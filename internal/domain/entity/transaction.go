package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a persisted, immutable sale or balance payment
type Transaction struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TerminalID       string             `gorm:"size:100;not null;index" json:"terminal_id"`
	OriginalSubtotal decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"original_subtotal"`
	Discount         decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	Subtotal         decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"subtotal"`
	TaxableAmount    decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"taxable_amount"`
	NonTaxableAmount decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"non_taxable_amount"`
	Tax              decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"tax"`
	CashbackAmount   decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"cashback_amount"`
	CashbackFee      decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"cashback_fee"`
	CardFee          decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"card_fee"`
	LottoWinnings    decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"lotto_winnings"`
	Total            decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"total"`
	FinalTotal       decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"final_total"`
	Change           decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"change"`
	IsCreditSale     bool               `gorm:"not null;default:false" json:"is_credit_sale"`
	IsPartialPayment bool               `gorm:"not null;default:false" json:"is_partial_payment"`
	IsBalancePayment bool               `gorm:"not null;default:false" json:"is_balance_payment"`
	CreditBalance    decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"credit_balance"`
	CreditStatus     *enum.CreditStatus `gorm:"size:20" json:"credit_status"`
	CustomerName     *string            `gorm:"size:255;index" json:"customer_name,omitempty"`
	CreatedAt        time.Time          `gorm:"index" json:"created_at"`

	// Relationships
	Items    []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
	Payments []PaymentLine     `gorm:"foreignKey:TransactionID" json:"payment_breakdown"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionItem is one line of a transaction, goods or modifier
type TransactionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Position      int             `gorm:"not null" json:"position"`
	Identity      string          `gorm:"size:400;not null" json:"identity"`
	ProductID     *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Kind          enum.LineKind   `gorm:"size:30;not null" json:"kind"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Category      string          `gorm:"size:100" json:"category,omitempty"`
	ApplyTax      bool            `gorm:"not null;default:false" json:"apply_tax"`
}

// BeforeCreate generates a UUID before creating a new transaction item
func (i *TransactionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TransactionItem model
func (TransactionItem) TableName() string {
	return "transaction_items"
}

// PaymentLine is one entry of a transaction's payment breakdown
type PaymentLine struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID          `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Position      int                `gorm:"not null" json:"position"`
	Method        enum.PaymentMethod `gorm:"size:20;not null" json:"method"`
	Amount        decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"amount"`
	CustomerName  *string            `gorm:"size:255" json:"customer_name,omitempty"`
}

// BeforeCreate generates a UUID before creating a new payment line
func (p *PaymentLine) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentLine model
func (PaymentLine) TableName() string {
	return "payment_lines"
}

// NewTransaction maps a settled record onto its storage rows.
func NewTransaction(terminalID string, s settlement.Transaction) *Transaction {
	t := &Transaction{
		TerminalID:       terminalID,
		OriginalSubtotal: s.OriginalSubtotal.Round(2),
		Discount:         s.Discount.Round(2),
		Subtotal:         s.Subtotal.Round(2),
		TaxableAmount:    s.TaxableAmount.Round(2),
		NonTaxableAmount: s.NonTaxableAmount.Round(2),
		Tax:              s.Tax.Round(2),
		CashbackAmount:   s.CashbackAmount.Round(2),
		CashbackFee:      s.CashbackFee.Round(2),
		CardFee:          s.CardFee.Round(2),
		LottoWinnings:    s.LottoWinnings.Round(2),
		Total:            s.Total.Round(2),
		FinalTotal:       s.FinalTotal.Round(2),
		Change:           s.Change.Round(2),
		IsCreditSale:     s.IsCreditSale,
		IsPartialPayment: s.IsPartialPayment,
		IsBalancePayment: s.IsBalancePayment,
		CreditBalance:    s.CreditBalance.Round(2),
		CreditStatus:     s.CreditStatus,
		CustomerName:     optional(s.CustomerName),
	}
	for i, it := range s.Items {
		item := TransactionItem{
			Position:  i,
			Identity:  it.Identity,
			Kind:      it.Kind,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.Round(2),
			Quantity:  it.Quantity,
			Category:  it.Category,
			ApplyTax:  it.ApplyTax,
		}
		if id, err := uuid.Parse(it.ProductID); err == nil {
			item.ProductID = &id
		}
		t.Items = append(t.Items, item)
	}
	for i, p := range s.PaymentBreakdown {
		t.Payments = append(t.Payments, PaymentLine{
			Position:     i,
			Method:       p.Method,
			Amount:       p.Amount.Round(2),
			CustomerName: optional(p.CustomerName),
		})
	}
	return t
}

// Record converts the stored rows back to the settled record.
func (t *Transaction) Record() settlement.Transaction {
	s := settlement.Transaction{
		OriginalSubtotal: t.OriginalSubtotal,
		Discount:         t.Discount,
		Subtotal:         t.Subtotal,
		TaxableAmount:    t.TaxableAmount,
		NonTaxableAmount: t.NonTaxableAmount,
		Tax:              t.Tax,
		CashbackAmount:   t.CashbackAmount,
		CashbackFee:      t.CashbackFee,
		CardFee:          t.CardFee,
		LottoWinnings:    t.LottoWinnings,
		Total:            t.Total,
		FinalTotal:       t.FinalTotal,
		Change:           t.Change,
		IsCreditSale:     t.IsCreditSale,
		IsPartialPayment: t.IsPartialPayment,
		IsBalancePayment: t.IsBalancePayment,
		CreditBalance:    t.CreditBalance,
		CreditStatus:     t.CreditStatus,
	}
	if t.CustomerName != nil {
		s.CustomerName = *t.CustomerName
	}
	for _, it := range t.Items {
		item := settlement.Item{
			Identity:  it.Identity,
			Kind:      it.Kind,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Category:  it.Category,
			ApplyTax:  it.ApplyTax,
		}
		if it.ProductID != nil {
			item.ProductID = it.ProductID.String()
		}
		s.Items = append(s.Items, item)
	}
	for _, p := range t.Payments {
		pay := settlement.Payment{Method: p.Method, Amount: p.Amount}
		if p.CustomerName != nil {
			pay.CustomerName = *p.CustomerName
		}
		s.PaymentBreakdown = append(s.PaymentBreakdown, pay)
	}
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
