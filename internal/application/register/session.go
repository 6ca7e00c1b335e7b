// Package register runs the per-terminal checkout workflow: cart edits,
// scanner tokens, tender entry, settlement and the commit saga.
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
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/pricing"
	"github.com/sangkips/tillpoint/internal/domain/scanner"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/internal/observability/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrCheckoutFailed covers every persistence failure, timeouts included.
	ErrCheckoutFailed  = errors.New("failed to complete transaction")
	ErrUnknownItem     = errors.New("item not found in inventory")
	ErrTerminalDecline = errors.New("card payment was not approved")
	ErrNoCustomer      = errors.New("customer name is required")
	ErrEmptyToken      = errors.New("search term is required")
)

// Warnings surfaced after a committed sale.
const (
	WarnLedgerQueued     = "credit account update failed; it has been queued for retry"
	WarnLedgerLost       = "credit account update failed and could not be queued; update the account manually"
	WarnInventoryPending = "inventory update failed; stock will reconcile on the next refresh"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Transactions TransactionAPI
	Inventory    InventoryAPI
	Ledger       CreditLedger
	Terminal     PaymentTerminal
	Queue        LedgerQueue
	Reconciler   *settlement.Reconciler
	Clock        clock.Clock
	Metrics      *metrics.Metrics
	Log          *zap.Logger

	ScannerThreshold time.Duration
	AutofillTender   bool
	RequestTimeout   time.Duration
}

// ManualDraft is the manual-entry form opened when a token matches nothing.
type ManualDraft struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
	ApplyTax bool   `json:"apply_tax"`
	Quantity int    `json:"quantity"`
}

// Outcome of resolving a token against the catalog.
type Outcome string

const (
	OutcomeAdded  Outcome = "added"
	OutcomeChoose Outcome = "choose"
	OutcomeManual Outcome = "manual"
)

type Resolution struct {
	Token   string       `json:"token"`
	Outcome Outcome      `json:"outcome"`
	Line    *cart.Line   `json:"line,omitempty"`
	Matches []cart.Item  `json:"matches,omitempty"`
	Draft   *ManualDraft `json:"draft,omitempty"`
}

// KeyEvent is a raw keystroke. A zero At is stamped with the session clock.
type KeyEvent struct {
	Key          rune
	At           time.Time
	InputFocused bool
}

// TenderInput is the tender form together with the credit-sale switches.
type TenderInput struct {
	Tender     settlement.RawTender
	CreditSale bool
	CreditMode enum.CreditMode
}

type CheckoutResult struct {
	TransactionID    string                 `json:"transaction_id"`
	Transaction      settlement.Transaction `json:"transaction"`
	CustomerBalance  *decimal.Decimal       `json:"customer_balance,omitempty"`
	InventoryVersion int64                  `json:"inventory_version"`
	Warnings         []string               `json:"warnings,omitempty"`
}

// State is a read-only view of a session with every total derived fresh.
type State struct {
	TerminalID       string                `json:"terminal_id"`
	Lines            []cart.Line           `json:"lines"`
	Units            int                   `json:"units"`
	Totals           pricing.Totals        `json:"totals"`
	AmountDue        decimal.Decimal       `json:"amount_due"`
	Modifiers        pricing.RawModifiers  `json:"modifiers"`
	Tender           settlement.RawTender  `json:"tender"`
	CreditSale       bool                  `json:"credit_sale"`
	CreditMode       enum.CreditMode       `json:"credit_mode"`
	CustomerName     string                `json:"customer_name,omitempty"`
	SelectedCustomer *settlement.Customer  `json:"selected_customer,omitempty"`
	PaymentError     string                `json:"payment_error,omitempty"`
	Warnings         []string              `json:"warnings,omitempty"`
	SearchResults    []cart.Item           `json:"search_results,omitempty"`
	ManualDraft      *ManualDraft          `json:"manual_draft,omitempty"`
	LastTransaction  *CommittedTransaction `json:"last_transaction,omitempty"`
	InventoryVersion int64                 `json:"inventory_version"`
	ScanBuffer       string                `json:"scan_buffer,omitempty"`
}

// Session is one terminal's register. Every operation holds the session
// lock for its whole duration, checkout included, so a terminal processes
// one command at a time. The scanner classifier has its own lock.
type Session struct {
	mu         sync.Mutex
	terminalID string
	deps       *Deps
	log        *zap.Logger

	cart      *cart.Cart
	inventory *Inventory
	scanner   *scanner.Classifier

	modifiers        pricing.RawModifiers
	tender           settlement.RawTender
	creditSale       bool
	creditMode       enum.CreditMode
	customerName     string
	selectedCustomer *settlement.Customer

	paymentError  string
	warnings      []string
	searchResults []cart.Item
	manualDraft   *ManualDraft
	lastCommitted *CommittedTransaction
}

func newSession(terminalID string, deps *Deps) *Session {
	return &Session{
		terminalID: terminalID,
		deps:       deps,
		log:        deps.Log.With(zap.String("terminal_id", terminalID)),
		cart:       cart.New(),
		inventory:  NewInventory(),
		scanner:    scanner.NewClassifier(deps.Clock, deps.ScannerThreshold),
		creditMode: enum.CreditModeAuto,
	}
}

func (s *Session) TerminalID() string {
	return s.terminalID
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	lines := s.cart.Lines()
	totals := pricing.Calculate(lines, s.modifiers.Parse(), s.deps.Reconciler.Config())

	st := State{
		TerminalID:       s.terminalID,
		Lines:            lines,
		Units:            s.cart.Units(),
		Totals:           totals.Rounded(),
		AmountDue:        totals.AmountDue(),
		Modifiers:        s.modifiers,
		Tender:           s.tender,
		CreditSale:       s.creditSale,
		CreditMode:       s.creditMode,
		CustomerName:     s.customerName,
		PaymentError:     s.paymentError,
		Warnings:         append([]string(nil), s.warnings...),
		SearchResults:    append([]cart.Item(nil), s.searchResults...),
		LastTransaction:  s.lastCommitted,
		InventoryVersion: s.inventory.Version(),
		ScanBuffer:       s.scanner.Buffer(),
	}
	if s.selectedCustomer != nil {
		c := *s.selectedCustomer
		st.SelectedCustomer = &c
	}
	if s.manualDraft != nil {
		d := *s.manualDraft
		st.ManualDraft = &d
	}
	return st
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.deps.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.deps.RequestTimeout)
}

// RefreshInventory pulls the catalog from the server. Server stock always
// replaces what the register held.
func (s *Session) RefreshInventory(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	snap, err := s.deps.Inventory.List(ctx)
	if err != nil {
		return s.inventory.Version(), fmt.Errorf("refresh inventory: %w", err)
	}
	if !s.inventory.Apply(*snap) {
		s.log.Debug("ignored stale inventory snapshot",
			zap.Int64("snapshot_version", snap.Version),
			zap.Int64("held_version", s.inventory.Version()),
		)
	}
	for _, l := range s.cart.Lines() {
		if !l.IsManual {
			s.cart.UpdateStock(l.Identity, s.inventory.Available(l.ProductID))
		}
	}
	return s.inventory.Version(), nil
}

func (s *Session) ensureInventory(ctx context.Context) error {
	if s.inventory.Loaded() {
		return nil
	}
	_, err := s.refreshLocked(ctx)
	return err
}

// AddItem adds one unit of a catalog item and reserves it locally.
func (s *Session) AddItem(ctx context.Context, productID string) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureInventory(ctx); err != nil {
		return cart.Line{}, err
	}
	return s.addLocked(productID)
}

func (s *Session) addLocked(productID string) (cart.Line, error) {
	item, ok := s.inventory.Get(productID)
	if !ok {
		return cart.Line{}, ErrUnknownItem
	}
	line, err := s.cart.Add(item)
	if err != nil {
		return cart.Line{}, err
	}
	s.inventory.Reserve(productID, 1)
	s.cart.UpdateStock(line.Identity, s.inventory.Available(productID))
	line, _ = s.cart.Line(line.Identity)

	s.searchResults = nil
	s.paymentError = ""
	return line, nil
}

// Lookup resolves a token typed into the search field and submitted with
// Enter: one match is added, several are offered for a choice, none opens
// a manual-entry draft named after the token.
func (s *Session) Lookup(ctx context.Context, token string) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(ctx, token)
}

func (s *Session) lookupLocked(ctx context.Context, token string) (*Resolution, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	if err := s.ensureInventory(ctx); err != nil {
		return nil, err
	}

	res := &Resolution{Token: token}
	matches := s.inventory.Resolve(token)
	switch len(matches) {
	case 1:
		line, err := s.addLocked(matches[0].ID)
		if err != nil {
			return nil, err
		}
		res.Outcome = OutcomeAdded
		res.Line = &line
	case 0:
		s.searchResults = nil
		s.manualDraft = &ManualDraft{Name: token, Quantity: 1}
		res.Outcome = OutcomeManual
		d := *s.manualDraft
		res.Draft = &d
	default:
		s.searchResults = matches
		res.Outcome = OutcomeChoose
		res.Matches = matches
	}
	return res, nil
}

// Scan resolves a token produced by a barcode scanner.
func (s *Session) Scan(ctx context.Context, token string) (*Resolution, error) {
	s.deps.Metrics.ScannerToken()
	return s.Lookup(ctx, token)
}

// Keys feeds raw keystrokes to the scanner classifier and resolves every
// token it emits. Keystrokes are classified before the session lock is
// taken so they are never held up by a checkout in flight.
func (s *Session) Keys(ctx context.Context, events []KeyEvent) ([]Resolution, error) {
	var tokens []string
	for _, ev := range events {
		k := scanner.Keystroke{Key: ev.Key, InputFocused: ev.InputFocused}
		var (
			token string
			done  bool
		)
		if ev.At.IsZero() {
			token, done = s.scanner.Observe(k)
		} else {
			token, done = s.scanner.ObserveAt(k, ev.At)
		}
		if done {
			tokens = append(tokens, token)
		}
	}

	var out []Resolution
	for _, token := range tokens {
		res, err := s.Scan(ctx, token)
		if err != nil {
			return out, err
		}
		out = append(out, *res)
	}
	return out, nil
}

// AddManual adds an item that is not in the catalog and closes the draft.
func (s *Session) AddManual(name, price, category string, applyTax bool, quantity int) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, err := pricing.ParseAmount(price)
	if err != nil {
		return cart.Line{}, err
	}
	if quantity == 0 {
		quantity = 1
	}
	line, err := s.cart.AddManual(name, amount, category, applyTax, quantity)
	if err != nil {
		return cart.Line{}, err
	}
	s.manualDraft = nil
	s.searchResults = nil
	s.paymentError = ""
	return line, nil
}

// DismissDraft closes the manual-entry draft without adding anything.
func (s *Session) DismissDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualDraft = nil
}

// ChangeQuantity adjusts a line by delta; a line reaching zero is removed.
func (s *Session) ChangeQuantity(identity string, delta int) (cart.Line, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.cart.Line(identity)
	if !ok {
		return cart.Line{}, false, cart.ErrLineNotFound
	}
	line, present, err := s.cart.ChangeQuantity(identity, delta)
	if err != nil {
		return cart.Line{}, false, err
	}
	if !before.IsManual {
		s.inventory.Reserve(before.ProductID, line.Quantity-before.Quantity)
		if present {
			s.cart.UpdateStock(identity, s.inventory.Available(before.ProductID))
			line, _ = s.cart.Line(identity)
		}
	}
	s.paymentError = ""
	return line, present, nil
}

func (s *Session) ToggleTax(identity string) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentError = ""
	return s.cart.ToggleTax(identity)
}

// Remove deletes a line and returns its units to local stock.
func (s *Session) Remove(identity string) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.cart.Remove(identity)
	if err != nil {
		return cart.Line{}, err
	}
	if !line.IsManual {
		s.inventory.Reserve(line.ProductID, -line.Quantity)
	}
	s.paymentError = ""
	return line, nil
}

// Void abandons the sale: cart, modifiers, tender and customer are cleared
// and reservations released.
func (s *Session) Void() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory.Release()
	s.resetLocked()
	s.warnings = nil
}

func (s *Session) resetLocked() {
	s.cart.Clear()
	s.modifiers = pricing.RawModifiers{}
	s.tender = settlement.RawTender{}
	s.creditSale = false
	s.creditMode = enum.CreditModeAuto
	s.customerName = ""
	s.selectedCustomer = nil
	s.paymentError = ""
	s.searchResults = nil
	s.manualDraft = nil
}

func (s *Session) SetModifiers(m pricing.RawModifiers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modifiers = m
	s.paymentError = ""
	if s.deps.AutofillTender {
		s.autofillLocked()
	}
}

// SetTender stores the tender form. With autofill on, the field opposite
// the one last edited is derived from the amount due.
func (s *Session) SetTender(in TenderInput) settlement.RawTender {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tender = in.Tender
	s.creditSale = in.CreditSale
	s.creditMode = in.CreditMode
	if s.creditMode == "" {
		s.creditMode = enum.CreditModeAuto
	}
	if !s.creditSale {
		s.tender.Credit = ""
	}
	s.paymentError = ""
	if s.deps.AutofillTender && !s.creditSale {
		s.autofillLocked()
	}
	return s.tender
}

func (s *Session) autofillLocked() {
	if s.tender.LastEdited == enum.TenderFieldNone {
		return
	}
	mods := s.modifiers.Parse()
	totals := pricing.Calculate(s.cart.Lines(), mods, s.deps.Reconciler.Config())
	due := totals.AmountDue()
	if mods.CashbackAmount.IsPositive() {
		due = totals.CardDue()
	}
	s.tender = settlement.Autofill(s.tender, due, mods.CashbackAmount.IsPositive())
}

// SelectCustomer sets the customer for a credit sale or balance payment
// and loads their account. An unknown name is kept so a first credit sale
// can open the account.
func (s *Session) SelectCustomer(ctx context.Context, name string) (*settlement.Customer, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, ErrNoCustomer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	customer, err := s.deps.Ledger.LookupCustomer(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}
	s.customerName = name
	s.selectedCustomer = customer
	s.paymentError = ""
	if customer == nil {
		return nil, nil
	}
	c := *customer
	return &c, nil
}

func (s *Session) ClearCustomer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerName = ""
	s.selectedCustomer = nil
	s.paymentError = ""
}

// Checkout settles the sale. Validation failures set the payment error and
// change nothing else. Once the transaction is persisted the sale stands:
// inventory and ledger failures become warnings, and a failed ledger call
// is queued for retry.
func (s *Session) Checkout(ctx context.Context) (*CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutLocked(ctx)
}

func (s *Session) checkoutLocked(ctx context.Context) (*CheckoutResult, error) {
	start := s.now()
	s.warnings = nil

	in := settlement.Input{
		Lines:            s.cart.Lines(),
		Modifiers:        s.modifiers.Parse(),
		Tender:           s.tender.Parse(),
		CreditSale:       s.creditSale,
		CreditMode:       s.creditMode,
		CustomerName:     s.customerName,
		SelectedCustomer: s.selectedCustomer,
	}
	result, err := s.deps.Reconciler.Reconcile(in)
	if err != nil {
		s.paymentError = err.Error()
		s.deps.Metrics.ObserveCheckout(metrics.CheckoutRejected, s.since(start))
		return nil, err
	}

	commitCtx, cancel := s.withTimeout(ctx)
	committed, err := s.deps.Transactions.Create(commitCtx, s.terminalID, result.Transaction)
	cancel()
	if err != nil {
		s.log.Error("transaction commit failed", zap.Error(err))
		s.paymentError = ErrCheckoutFailed.Error()
		s.deps.Metrics.ObserveCheckout(metrics.CheckoutFailed, s.since(start))
		return nil, ErrCheckoutFailed
	}

	out := &CheckoutResult{
		TransactionID: committed.ID,
		Transaction:   result.Transaction,
	}

	if result.DecrementInventory {
		if err := s.decrementLocked(ctx, result.Transaction.GoodsLines()); err != nil {
			s.log.Warn("inventory update failed", zap.String("transaction_id", committed.ID), zap.Error(err))
			s.warnings = append(s.warnings, WarnInventoryPending)
		}
	} else {
		s.inventory.Release()
	}
	out.InventoryVersion = s.inventory.Version()

	if result.Ledger != nil {
		balance, warning := s.runLedgerLocked(ctx, committed.ID, *result.Ledger)
		if warning != "" {
			s.warnings = append(s.warnings, warning)
			if result.ProjectedBalance != nil {
				projected := *result.ProjectedBalance
				out.CustomerBalance = &projected
			}
		} else {
			out.CustomerBalance = balance
		}
	}

	s.resetLocked()
	s.lastCommitted = committed
	out.Warnings = append([]string(nil), s.warnings...)

	s.deps.Metrics.ObserveCheckout(metrics.CheckoutCommitted, s.since(start))
	s.log.Info("checkout committed",
		zap.String("transaction_id", committed.ID),
		zap.String("final_total", result.Transaction.FinalTotal.StringFixed(2)),
		zap.Int("warnings", len(out.Warnings)),
	)
	return out, nil
}

// decrementLocked writes post-sale stock for goods lines. Stock is taken
// from a fresh server read when one is available, falling back to the
// register's last snapshot.
func (s *Session) decrementLocked(ctx context.Context, goods []settlement.Item) error {
	if len(goods) == 0 {
		return nil
	}
	if _, err := s.refreshLocked(ctx); err != nil {
		s.log.Warn("inventory refresh before decrement failed", zap.Error(err))
	}

	sold := map[string]int{}
	var order []string
	for _, it := range goods {
		if it.ProductID == "" {
			continue
		}
		if _, seen := sold[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		sold[it.ProductID] += it.Quantity
	}

	levels := make([]StockLevel, 0, len(order))
	for _, id := range order {
		stock, ok := s.inventory.ServerStock(id)
		if !ok {
			continue
		}
		post := stock - sold[id]
		if post < 0 {
			post = 0
		}
		levels = append(levels, StockLevel{ID: id, Stock: post})
	}
	if len(levels) == 0 {
		s.inventory.Release()
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	version, err := s.deps.Inventory.Update(ctx, levels)
	if err != nil {
		// The cart is gone either way; the next refresh brings the real
		// levels back.
		s.inventory.Release()
		return err
	}
	s.inventory.Commit(version, levels)
	return nil
}

// runLedgerLocked applies op and returns the balance the ledger reports.
// On failure op is queued and a warning returned instead.
func (s *Session) runLedgerLocked(ctx context.Context, ref string, op settlement.LedgerOp) (*decimal.Decimal, string) {
	ledgerCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		customer *settlement.Customer
		err      error
	)
	switch op.Action {
	case enum.LedgerActionPayment:
		customer, err = s.deps.Ledger.ApplyPayment(ledgerCtx, op.CustomerName, op.Amount, ref)
	default:
		customer, err = s.deps.Ledger.AddCredit(ledgerCtx, op.CustomerName, op.Amount, ref)
	}
	if err == nil && customer != nil {
		balance := customer.Balance
		return &balance, ""
	}
	if err == nil {
		err = errors.New("ledger returned no account")
	}

	s.log.Warn("credit ledger update failed",
		zap.String("transaction_id", ref),
		zap.String("action", op.Action.String()),
		zap.String("customer", op.CustomerName),
		zap.Error(err),
	)
	if s.deps.Queue == nil {
		return nil, WarnLedgerLost
	}
	if qerr := s.deps.Queue.Enqueue(ctx, s.terminalID, ref, op); qerr != nil {
		s.log.Error("could not queue ledger op", zap.String("transaction_id", ref), zap.Error(qerr))
		return nil, WarnLedgerLost
	}
	return nil, WarnLedgerQueued
}

// TerminalResult pairs the card charge with the checkout it triggered.
type TerminalResult struct {
	Charge   ChargeSummary   `json:"charge"`
	Checkout *CheckoutResult `json:"checkout,omitempty"`
}

type ChargeSummary struct {
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id,omitempty"`
	CardType      string          `json:"card_type,omitempty"`
	Last4         string          `json:"last4,omitempty"`
}

// PayWithTerminal charges amount on the card terminal. A zero amount
// charges whatever cash does not cover. On approval the card tender is set
// to the charged amount and checkout runs; on decline the processor's
// message becomes the payment error and tender is left alone.
func (s *Session) PayWithTerminal(ctx context.Context, amount decimal.Decimal) (*TerminalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !amount.IsPositive() {
		mods := s.modifiers.Parse()
		totals := pricing.Calculate(s.cart.Lines(), mods, s.deps.Reconciler.Config())
		if mods.CashbackAmount.IsPositive() {
			amount = totals.CardDue()
		} else {
			cash := pricing.AmountOrZero(s.tender.Cash)
			amount = pricing.NonNegative(totals.AmountDue().Sub(cash))
		}
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		s.paymentError = settlement.ErrNothingToProcess.Error()
		return nil, settlement.ErrNothingToProcess
	}

	chargeCtx, cancel := s.withTimeout(ctx)
	charge, err := s.deps.Terminal.Charge(chargeCtx, amount)
	cancel()
	if err != nil {
		s.log.Error("terminal charge failed", zap.Error(err))
		s.paymentError = fmt.Sprintf("payment terminal unavailable: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrTerminalDecline, err)
	}
	if !charge.Success {
		msg := charge.Message
		if msg == "" {
			msg = ErrTerminalDecline.Error()
		}
		s.paymentError = msg
		return nil, fmt.Errorf("%w: %s", ErrTerminalDecline, msg)
	}

	s.tender.Card = amount.StringFixed(2)
	res := &TerminalResult{Charge: ChargeSummary{
		Amount:        amount,
		TransactionID: charge.TransactionID,
		CardType:      charge.CardType,
		Last4:         charge.Last4,
	}}
	checkout, err := s.checkoutLocked(ctx)
	if err != nil {
		return res, err
	}
	res.Checkout = checkout
	return res, nil
}

func (s *Session) now() time.Time {
	if s.deps.Clock == nil {
		return time.Now()
	}
	return s.deps.Clock.Now()
}

func (s *Session) since(t time.Time) time.Duration {
	return s.now().Sub(t)
}
