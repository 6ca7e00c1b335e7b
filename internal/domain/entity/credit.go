package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditAccount is a customer's running store-credit balance
type CreditAccount struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CustomerName   string          `gorm:"size:255;not null" json:"customer_name"`
	NormalizedName string          `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Balance        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID and the lookup key before insert
func (a *CreditAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.NormalizedName == "" {
		a.NormalizedName = NormalizeCustomerName(a.CustomerName)
	}
	return nil
}

// TableName returns the table name for the CreditAccount model
func (CreditAccount) TableName() string {
	return "credit_accounts"
}

// CreditEntry records one mutation of a credit account
type CreditEntry struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	AccountID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"account_id"`
	Action         enum.LedgerAction `gorm:"size:20;not null;uniqueIndex:idx_credit_entries_ref" json:"action"`
	Amount         decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	BalanceAfter   decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"balance_after"`
	TransactionRef *string           `gorm:"size:100;uniqueIndex:idx_credit_entries_ref" json:"transaction_ref,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func (e *CreditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CreditEntry model
func (CreditEntry) TableName() string {
	return "credit_entries"
}

// NormalizeCustomerName folds case and inner whitespace so lookups match
// however the cashier typed the name.
func NormalizeCustomerName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
