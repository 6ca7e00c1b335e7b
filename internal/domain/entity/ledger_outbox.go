package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerOutboxEntry is a credit-ledger call that failed after its sale was
// committed and is waiting to be retried
type LedgerOutboxEntry struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	TerminalID     string            `gorm:"size:100;not null;index" json:"terminal_id"`
	TransactionRef string            `gorm:"size:100;not null;index" json:"transaction_ref"`
	Action         enum.LedgerAction `gorm:"size:20;not null" json:"action"`
	CustomerName   string            `gorm:"size:255;not null" json:"customer_name"`
	Amount         decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status         enum.OutboxStatus `gorm:"not null;default:0;index" json:"status"`
	Attempts       int               `gorm:"not null;default:0" json:"attempts"`
	LastError      string            `gorm:"type:text" json:"last_error,omitempty"`
	NextAttemptAt  time.Time         `gorm:"not null;index" json:"next_attempt_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new outbox entry
func (e *LedgerOutboxEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LedgerOutboxEntry model
func (LedgerOutboxEntry) TableName() string {
	return "ledger_outbox"
}
