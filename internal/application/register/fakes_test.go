package register

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/tillpoint/internal/clock"
	"github.com/sangkips/tillpoint/internal/domain/cart"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/pkg/terminal"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errDown = errors.New("connection refused")

type fakeTransactions struct {
	mu      sync.Mutex
	err     error
	created []settlement.Transaction
}

func (f *fakeTransactions) Create(ctx context.Context, terminalID string, tx settlement.Transaction) (*CommittedTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, tx)
	return &CommittedTransaction{ID: fmt.Sprintf("tx-%d", len(f.created)), Transaction: tx}, nil
}

type fakeInventory struct {
	mu        sync.Mutex
	version   int64
	items     []cart.Item
	updates   [][]StockLevel
	listErr   error
	updateErr error
}

func (f *fakeInventory) List(ctx context.Context) (*InventorySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &InventorySnapshot{Version: f.version, Items: append([]cart.Item(nil), f.items...)}, nil
}

func (f *fakeInventory) Update(ctx context.Context, levels []StockLevel) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	f.updates = append(f.updates, levels)
	for _, l := range levels {
		for i := range f.items {
			if f.items[i].ID == l.ID {
				f.items[i].Stock = l.Stock
			}
		}
	}
	f.version++
	return f.version, nil
}

type fakeLedger struct {
	mu       sync.Mutex
	err      error
	balances map[string]decimal.Decimal
	calls    []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[string]decimal.Decimal{}}
}

func (f *fakeLedger) LookupCustomer(ctx context.Context, name string) (*settlement.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	return &settlement.Customer{Name: name, Balance: b}, nil
}

func (f *fakeLedger) AddCredit(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error) {
	return f.apply("addCredit", name, amount)
}

func (f *fakeLedger) ApplyPayment(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error) {
	return f.apply("payment", name, amount.Neg())
}

func (f *fakeLedger) apply(action, name string, delta decimal.Decimal) (*settlement.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, action+":"+name+":"+delta.Abs().StringFixed(2))
	if f.err != nil {
		return nil, f.err
	}
	key := strings.ToLower(name)
	f.balances[key] = f.balances[key].Add(delta)
	return &settlement.Customer{Name: name, Balance: f.balances[key]}, nil
}

type fakeQueue struct {
	mu  sync.Mutex
	err error
	ops []settlement.LedgerOp
}

func (f *fakeQueue) Enqueue(ctx context.Context, terminalID, ref string, op settlement.LedgerOp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.ops = append(f.ops, op)
	return nil
}

type fakeTerminal struct {
	result  *terminal.ChargeResult
	err     error
	charged []decimal.Decimal
}

func (f *fakeTerminal) Charge(ctx context.Context, amount decimal.Decimal) (*terminal.ChargeResult, error) {
	f.charged = append(f.charged, amount)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fixture struct {
	txs      *fakeTransactions
	inv      *fakeInventory
	ledger   *fakeLedger
	queue    *fakeQueue
	terminal *fakeTerminal
	clock    *clock.FakeClock
	manager  *Manager
	session  *Session
}

func newFixture(autofill bool) *fixture {
	f := &fixture{
		txs: &fakeTransactions{},
		inv: &fakeInventory{version: 1, items: []cart.Item{
			{ID: "p1", Code: "100", Name: "Soda Can", Price: decimal.RequireFromString("1.50"), Category: "Drinks", Taxable: true, Stock: 10},
			{ID: "p2", Code: "200", Name: "Apple Pie", Price: decimal.RequireFromString("6.00"), Category: "Bakery", Stock: 1},
			{ID: "p3", Code: "300", Name: "Apple Juice", Price: decimal.RequireFromString("2.00"), Category: "Drinks", Taxable: true, Stock: 5},
		}},
		ledger:   newFakeLedger(),
		queue:    &fakeQueue{},
		terminal: &fakeTerminal{result: &terminal.ChargeResult{Success: true, TransactionID: "ch-1", CardType: "VISA", Last4: "4242"}},
		clock:    clock.NewFakeClock(time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)),
	}
	f.manager = NewManager(Deps{
		Transactions:   f.txs,
		Inventory:      f.inv,
		Ledger:         f.ledger,
		Terminal:       f.terminal,
		Queue:          f.queue,
		Clock:          f.clock,
		Log:            zap.NewNop(),
		AutofillTender: autofill,
		RequestTimeout: time.Second,
	})
	f.session = f.manager.Session("till-1")
	return f
}
