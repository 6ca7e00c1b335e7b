package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	domainRepo "github.com/sangkips/tillpoint/internal/domain/repository"
	"gorm.io/gorm"
)

type ledgerOutboxRepository struct {
	db *gorm.DB
}

// NewLedgerOutboxRepository creates a new ledger outbox repository
func NewLedgerOutboxRepository(db *gorm.DB) domainRepo.LedgerOutboxRepository {
	return &ledgerOutboxRepository{db: db}
}

func (r *ledgerOutboxRepository) Enqueue(ctx context.Context, entry *entity.LedgerOutboxEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ledgerOutboxRepository) Due(ctx context.Context, now time.Time, limit int) ([]entity.LedgerOutboxEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []entity.LedgerOutboxEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", enum.OutboxStatusPending, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *ledgerOutboxRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.LedgerOutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     enum.OutboxStatusDone,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": "",
		}).Error
}

func (r *ledgerOutboxRepository) MarkAttempt(ctx context.Context, id uuid.UUID, lastErr string, next time.Time, failed bool) error {
	status := enum.OutboxStatusPending
	if failed {
		status = enum.OutboxStatusFailed
	}
	return r.db.WithContext(ctx).Model(&entity.LedgerOutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        gorm.Expr("attempts + 1"),
			"last_error":      lastErr,
			"next_attempt_at": next,
		}).Error
}

func (r *ledgerOutboxRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.LedgerOutboxEntry{}).
		Where("status = ?", enum.OutboxStatusPending).
		Count(&n).Error
	return n, err
}
