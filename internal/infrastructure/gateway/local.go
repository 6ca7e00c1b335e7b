// Package gateway connects register sessions to the back office, either
// in process or over HTTP.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/application/register"
	"github.com/sangkips/tillpoint/internal/application/service"
	"github.com/sangkips/tillpoint/internal/domain/cart"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Local calls the services directly. It satisfies every register port
// except the payment terminal.
type Local struct {
	catalog      *service.CatalogService
	transactions *service.TransactionService
	credit       *service.CreditService
}

func NewLocal(catalog *service.CatalogService, transactions *service.TransactionService, credit *service.CreditService) *Local {
	return &Local{
		catalog:      catalog,
		transactions: transactions,
		credit:       credit,
	}
}

func (l *Local) Create(ctx context.Context, terminalID string, tx settlement.Transaction) (*register.CommittedTransaction, error) {
	row, err := l.transactions.CreateTransaction(ctx, terminalID, tx)
	if err != nil {
		return nil, err
	}
	return &register.CommittedTransaction{ID: row.ID.String(), Transaction: row.Record()}, nil
}

func (l *Local) List(ctx context.Context) (*register.InventorySnapshot, error) {
	snap, err := l.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]cart.Item, 0, len(snap.Items))
	for i := range snap.Items {
		items = append(items, snap.Items[i].CartItem())
	}
	return &register.InventorySnapshot{Version: snap.Version, Items: items}, nil
}

func (l *Local) Update(ctx context.Context, levels []register.StockLevel) (int64, error) {
	updates := make([]service.StockUpdate, 0, len(levels))
	for _, lv := range levels {
		id, err := uuid.Parse(lv.ID)
		if err != nil {
			return 0, apperror.NewBadRequestError(fmt.Sprintf("invalid product id %q", lv.ID))
		}
		updates = append(updates, service.StockUpdate{ID: id, Stock: lv.Stock})
	}
	res, err := l.catalog.UpdateStock(ctx, updates)
	if err != nil {
		return 0, err
	}
	return res.Version, nil
}

func (l *Local) LookupCustomer(ctx context.Context, name string) (*settlement.Customer, error) {
	account, err := l.credit.GetAccount(ctx, name)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toCustomer(account), nil
}

func (l *Local) AddCredit(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error) {
	return l.apply(ctx, enum.LedgerActionAddCredit, name, amount, ref)
}

func (l *Local) ApplyPayment(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error) {
	return l.apply(ctx, enum.LedgerActionPayment, name, amount, ref)
}

func (l *Local) apply(ctx context.Context, action enum.LedgerAction, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error) {
	account, err := l.credit.Apply(ctx, &service.LedgerInput{
		Action:         action,
		CustomerName:   name,
		Amount:         amount,
		TransactionRef: ref,
	})
	if err != nil {
		return nil, err
	}
	return toCustomer(account), nil
}

func toCustomer(a *entity.CreditAccount) *settlement.Customer {
	return &settlement.Customer{Name: a.CustomerName, Balance: a.Balance}
}

func isNotFound(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == http.StatusNotFound
}
