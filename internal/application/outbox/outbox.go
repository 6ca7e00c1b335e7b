// Package outbox retries credit-ledger operations that failed after their
// sale was already committed.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sangkips/tillpoint/internal/clock"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/internal/observability/metrics"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxBackoff = 30 * time.Minute

// Ledger is the part of the credit ledger the worker replays against.
type Ledger interface {
	AddCredit(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error)
	ApplyPayment(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error)
}

type Config struct {
	RetryInterval time.Duration
	MaxAttempts   int
	BatchSize     int
	PerSecond     float64
}

func (c Config) withDefaults() Config {
	if c.RetryInterval <= 0 {
		c.RetryInterval = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.PerSecond <= 0 {
		c.PerSecond = 5
	}
	return c
}

// Queue persists failed ledger operations.
type Queue struct {
	repo    repository.LedgerOutboxRepository
	clock   clock.Clock
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewQueue(repo repository.LedgerOutboxRepository, clk clock.Clock, m *metrics.Metrics, log *zap.Logger) *Queue {
	if clk == nil {
		clk = clock.System()
	}
	return &Queue{repo: repo, clock: clk, metrics: m, log: log.Named("outbox")}
}

// Enqueue stores op for a later attempt. The first retry is due immediately.
func (q *Queue) Enqueue(ctx context.Context, terminalID, transactionRef string, op settlement.LedgerOp) error {
	entry := &entity.LedgerOutboxEntry{
		TerminalID:     terminalID,
		TransactionRef: transactionRef,
		Action:         op.Action,
		CustomerName:   op.CustomerName,
		Amount:         op.Amount,
		Status:         enum.OutboxStatusPending,
		NextAttemptAt:  q.clock.Now(),
	}
	if err := q.repo.Enqueue(ctx, entry); err != nil {
		return fmt.Errorf("enqueue ledger op: %w", err)
	}
	q.metrics.Outbox(metrics.OutboxQueued)
	q.log.Warn("ledger op queued for retry",
		zap.String("terminal_id", terminalID),
		zap.String("transaction_ref", transactionRef),
		zap.String("action", op.Action.String()),
		zap.String("customer", op.CustomerName),
		zap.String("amount", op.Amount.StringFixed(2)),
	)
	return nil
}

// Pending returns the number of entries still waiting.
func (q *Queue) Pending(ctx context.Context) (int64, error) {
	return q.repo.CountPending(ctx)
}

// Worker drains the outbox at a paced rate.
type Worker struct {
	repo    repository.LedgerOutboxRepository
	ledger  Ledger
	clock   clock.Clock
	limiter *rate.Limiter
	cfg     Config
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewWorker(repo repository.LedgerOutboxRepository, ledger Ledger, clk clock.Clock, cfg Config, m *metrics.Metrics, log *zap.Logger) *Worker {
	if clk == nil {
		clk = clock.System()
	}
	cfg = cfg.withDefaults()
	return &Worker{
		repo:    repo,
		ledger:  ledger,
		clock:   clk,
		limiter: rate.NewLimiter(rate.Limit(cfg.PerSecond), 1),
		cfg:     cfg,
		metrics: m,
		log:     log.Named("outbox"),
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		if _, err := w.DrainOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error("outbox drain failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DrainOnce attempts every due entry once and returns how many were delivered.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	entries, err := w.repo.Due(ctx, w.clock.Now(), w.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("load due entries: %w", err)
	}

	delivered := 0
	for _, e := range entries {
		if err := w.limiter.Wait(ctx); err != nil {
			return delivered, err
		}
		if err := w.deliver(ctx, e); err != nil {
			if markErr := w.recordFailure(ctx, e, err); markErr != nil {
				return delivered, markErr
			}
			continue
		}
		if err := w.repo.MarkDone(ctx, e.ID); err != nil {
			return delivered, fmt.Errorf("mark entry done: %w", err)
		}
		w.metrics.Outbox(metrics.OutboxDelivered)
		w.log.Info("queued ledger op delivered",
			zap.String("transaction_ref", e.TransactionRef),
			zap.String("customer", e.CustomerName),
		)
		delivered++
	}
	return delivered, nil
}

func (w *Worker) deliver(ctx context.Context, e entity.LedgerOutboxEntry) error {
	var err error
	switch e.Action {
	case enum.LedgerActionAddCredit:
		_, err = w.ledger.AddCredit(ctx, e.CustomerName, e.Amount, e.TransactionRef)
	case enum.LedgerActionPayment:
		_, err = w.ledger.ApplyPayment(ctx, e.CustomerName, e.Amount, e.TransactionRef)
	default:
		err = apperror.NewBadRequestError(fmt.Sprintf("unknown ledger action %q", e.Action))
	}
	return err
}

func (w *Worker) recordFailure(ctx context.Context, e entity.LedgerOutboxEntry, cause error) error {
	attempts := e.Attempts + 1
	abandon := attempts >= w.cfg.MaxAttempts || permanent(cause)
	next := w.clock.Now().Add(backoff(w.cfg.RetryInterval, attempts))

	if err := w.repo.MarkAttempt(ctx, e.ID, cause.Error(), next, abandon); err != nil {
		return fmt.Errorf("record outbox attempt: %w", err)
	}
	if abandon {
		w.metrics.Outbox(metrics.OutboxAbandoned)
		w.log.Error("ledger op abandoned",
			zap.String("transaction_ref", e.TransactionRef),
			zap.String("customer", e.CustomerName),
			zap.Int("attempts", attempts),
			zap.Error(cause),
		)
		return nil
	}
	w.metrics.Outbox(metrics.OutboxRetried)
	w.log.Warn("ledger op retry scheduled",
		zap.String("transaction_ref", e.TransactionRef),
		zap.Int("attempts", attempts),
		zap.Time("next_attempt_at", next),
		zap.Error(cause),
	)
	return nil
}

// backoff doubles the interval per attempt up to maxBackoff.
func backoff(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// permanent reports client errors the ledger will keep refusing.
func permanent(err error) bool {
	if !apperror.IsAppError(err) {
		return false
	}
	code := apperror.GetAppError(err).Code
	return code >= http.StatusBadRequest && code < http.StatusInternalServerError && code != http.StatusTooManyRequests
}
