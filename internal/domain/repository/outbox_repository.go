package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/entity"
)

// LedgerOutboxRepository defines the interface for queued ledger operations
type LedgerOutboxRepository interface {
	Enqueue(ctx context.Context, entry *entity.LedgerOutboxEntry) error
	// Due returns pending entries whose next attempt is at or before now, oldest first
	Due(ctx context.Context, now time.Time, limit int) ([]entity.LedgerOutboxEntry, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	// MarkAttempt records a failed attempt; failed moves the entry out of the pending set
	MarkAttempt(ctx context.Context, id uuid.UUID, lastErr string, next time.Time, failed bool) error
	CountPending(ctx context.Context) (int64, error)
}
