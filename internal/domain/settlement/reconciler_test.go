package settlement

import (
	"testing"

	"github.com/sangkips/tillpoint/internal/domain/cart"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), msgAndArgs...)
}

// untaxed builds a single non-taxable line so totals are easy to read.
func untaxed(price string) []cart.Line {
	return []cart.Line{{Identity: "p-1", ProductID: "p-1", Name: "Groceries", UnitPrice: d(price), Quantity: 1, Category: "General"}}
}

func newReconciler() *Reconciler {
	return NewReconciler(pricing.DefaultConfig())
}

func methods(tx Transaction) []enum.PaymentMethod {
	out := make([]enum.PaymentMethod, 0, len(tx.PaymentBreakdown))
	for _, p := range tx.PaymentBreakdown {
		out = append(out, p.Method)
	}
	return out
}

func TestReconcile_CashWithChange(t *testing.T) {
	lines := []cart.Line{{Identity: "p-1", Name: "Gum", UnitPrice: d("1.50"), Quantity: 2, ApplyTax: true}}

	s, err := newReconciler().Reconcile(Input{Lines: lines, Tender: Tender{Cash: d("5.00")}})
	require.NoError(t, err)

	tx := s.Transaction
	assertMoney(t, "3.39", tx.FinalTotal)
	assertMoney(t, "1.61", tx.Change)
	require.Len(t, tx.PaymentBreakdown, 1)
	assertMoney(t, "3.39", tx.PaymentBreakdown[0].Amount)
	assert.Nil(t, tx.CreditStatus)
	assert.True(t, s.DecrementInventory)
	assert.Nil(t, s.Ledger)
}

func TestReconcile_MixedTenderConserves(t *testing.T) {
	lines := []cart.Line{
		{Identity: "a", Name: "A", UnitPrice: d("7.99"), Quantity: 3, ApplyTax: true},
		{Identity: "b", Name: "B", UnitPrice: d("2.35"), Quantity: 1},
	}
	mods := pricing.Modifiers{Discount: d("1.10"), CardFeeEnabled: true}

	for _, tender := range []Tender{
		{Cash: d("40")},
		{Card: d("30.00"), Cash: d("5")},
		{Card: d("100")},
	} {
		s, err := newReconciler().Reconcile(Input{Lines: lines, Modifiers: mods, Tender: tender})
		require.NoError(t, err)
		tx := s.Transaction
		assert.True(t, tx.Settled().Sub(tx.FinalTotal).Abs().LessThanOrEqual(d("0.01")),
			"breakdown %s vs final %s", tx.Settled(), tx.FinalTotal)
	}
}

func TestReconcile_Shortfall(t *testing.T) {
	_, err := newReconciler().Reconcile(Input{Lines: untaxed("10.00"), Tender: Tender{Cash: d("4.25")}})

	var sf *ShortfallError
	require.ErrorAs(t, err, &sf)
	assertMoney(t, "5.75", sf.Owed())
	assert.Contains(t, err.Error(), "5.75")
	assert.True(t, IsValidation(err))
}

func TestReconcile_NothingToProcess(t *testing.T) {
	_, err := newReconciler().Reconcile(Input{Tender: Tender{Cash: d("5")}})
	assert.ErrorIs(t, err, ErrNothingToProcess)
}

func TestReconcile_Cashback(t *testing.T) {
	mods := pricing.Modifiers{CashbackAmount: d("20.00"), CashbackFee: d("1.00")}
	in := Input{Lines: untaxed("10.00"), Modifiers: mods, Tender: Tender{Cash: d("50"), Card: d("30.99")}}

	_, err := newReconciler().Reconcile(in)
	var sf *ShortfallError
	require.ErrorAs(t, err, &sf, "cash does not count while cashback is active")
	assertMoney(t, "31.00", sf.Required)

	in.Tender = Tender{Card: d("31.00")}
	s, err := newReconciler().Reconcile(in)
	require.NoError(t, err)

	tx := s.Transaction
	assertMoney(t, "31.00", tx.FinalTotal)
	assert.True(t, tx.Change.IsZero())
	assert.Equal(t, []enum.PaymentMethod{enum.PaymentMethodCash, enum.PaymentMethodCard}, methods(tx))
	assertMoney(t, "-20.00", tx.PaymentBreakdown[0].Amount)
	assertMoney(t, "31.00", tx.PaymentBreakdown[1].Amount)

	kinds := make([]enum.LineKind, 0)
	for _, it := range tx.Items {
		kinds = append(kinds, it.Kind)
	}
	assert.Equal(t, []enum.LineKind{enum.LineKindItem, enum.LineKindCashback, enum.LineKindCashbackFee}, kinds)
}

func TestReconcile_CashbackWithLottoStillNeedsFullCard(t *testing.T) {
	mods := pricing.Modifiers{CashbackAmount: d("20.00"), CashbackFee: d("1.00"), LottoWinnings: d("5.00")}
	in := Input{Lines: untaxed("10.00"), Modifiers: mods, Tender: Tender{Card: d("26.00")}}

	_, err := newReconciler().Reconcile(in)
	var sf *ShortfallError
	require.ErrorAs(t, err, &sf, "winnings do not lower what the card must cover")
	assertMoney(t, "31.00", sf.Required)

	in.Tender = Tender{Card: d("31.00")}
	s, err := newReconciler().Reconcile(in)
	require.NoError(t, err)

	tx := s.Transaction
	assertMoney(t, "26.00", tx.FinalTotal)
	assert.Equal(t, []enum.PaymentMethod{enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodLotto}, methods(tx))
	assertMoney(t, "-25.00", tx.PaymentBreakdown[0].Amount, "drawer pays cashback and winnings")
	assertMoney(t, "31.00", tx.PaymentBreakdown[1].Amount)
	assertMoney(t, "5.00", tx.PaymentBreakdown[2].Amount)
	assert.True(t, tx.Change.IsZero())
	assert.True(t, tx.Settled().Add(tx.CashbackAmount).Equal(tx.FinalTotal))
}

func TestReconcile_CashbackWithoutItems(t *testing.T) {
	mods := pricing.Modifiers{CashbackAmount: d("40"), CashbackFee: d("1.50")}

	s, err := newReconciler().Reconcile(Input{Modifiers: mods, Tender: Tender{Card: d("41.50")}})
	require.NoError(t, err)
	assertMoney(t, "41.50", s.Transaction.FinalTotal)
	assert.False(t, s.DecrementInventory)
}

func TestReconcile_LottoExceedsDue(t *testing.T) {
	mods := pricing.Modifiers{LottoWinnings: d("15.00")}

	s, err := newReconciler().Reconcile(Input{Lines: untaxed("10.00"), Modifiers: mods})
	require.NoError(t, err)

	tx := s.Transaction
	assertMoney(t, "-5.00", tx.FinalTotal)
	cash, ok := tx.PaymentFor(enum.PaymentMethodCash)
	require.True(t, ok)
	assertMoney(t, "-5.00", cash.Amount)
	_, hasCard := tx.PaymentFor(enum.PaymentMethodCard)
	assert.False(t, hasCard)
	lotto, ok := tx.PaymentFor(enum.PaymentMethodLotto)
	require.True(t, ok)
	assertMoney(t, "15.00", lotto.Amount)
	assert.True(t, tx.Settled().Equal(tx.FinalTotal))

	last := tx.Items[len(tx.Items)-1]
	assert.Equal(t, enum.LineKindLottery, last.Kind)
	assertMoney(t, "-15.00", last.UnitPrice)
}

func TestReconcile_LottoOnlyNoItems(t *testing.T) {
	s, err := newReconciler().Reconcile(Input{Modifiers: pricing.Modifiers{LottoWinnings: d("3")}})
	require.NoError(t, err)
	assertMoney(t, "-3.00", s.Transaction.FinalTotal)
	assert.False(t, s.DecrementInventory)
}

func TestReconcile_DiscountPseudoLine(t *testing.T) {
	s, err := newReconciler().Reconcile(Input{
		Lines:     untaxed("10.00"),
		Modifiers: pricing.Modifiers{Discount: d("12"), CardFeeEnabled: true},
		Tender:    Tender{Card: d("0.50")},
	})
	require.NoError(t, err)

	tx := s.Transaction
	require.Len(t, tx.Items, 3)
	assert.Equal(t, enum.LineKindCardFee, tx.Items[1].Kind)
	assert.Equal(t, enum.LineKindDiscount, tx.Items[2].Kind)
	assertMoney(t, "-10.00", tx.Items[2].UnitPrice, "discount line carries the effective discount")

	sum := decimal.Zero
	for _, it := range tx.Items {
		sum = sum.Add(it.Amount())
	}
	assertMoney(t, "0.50", sum)
}

func TestReconcile_SpecifiedCredit(t *testing.T) {
	in := Input{
		Lines:        untaxed("25.00"),
		CreditSale:   true,
		CreditMode:   enum.CreditModeSpecified,
		CustomerName: "Dana",
		Tender:       Tender{Cash: d("15.00"), Credit: d("10.00")},
	}

	s, err := newReconciler().Reconcile(in)
	require.NoError(t, err)

	tx := s.Transaction
	assert.Equal(t, []enum.PaymentMethod{enum.PaymentMethodCash, enum.PaymentMethodCredit}, methods(tx))
	assertMoney(t, "15.00", tx.PaymentBreakdown[0].Amount)
	assertMoney(t, "10.00", tx.PaymentBreakdown[1].Amount)
	assert.Equal(t, "Dana", tx.PaymentBreakdown[1].CustomerName)
	assert.True(t, tx.IsCreditSale)
	assert.True(t, tx.IsPartialPayment)
	require.NotNil(t, tx.CreditStatus)
	assert.Equal(t, enum.CreditStatusUnpaid, *tx.CreditStatus)
	assert.True(t, tx.CreditBalance.Add(d("15")).Equal(tx.FinalTotal))
	assert.True(t, s.DecrementInventory, "partial payment delivers goods")
	require.NotNil(t, s.Ledger)
	assert.Equal(t, enum.LedgerActionAddCredit, s.Ledger.Action)
	assertMoney(t, "10.00", s.Ledger.Amount)

	in.Tender.Cash = d("14.00")
	_, err = newReconciler().Reconcile(in)
	var sf *ShortfallError
	require.ErrorAs(t, err, &sf)
	assertMoney(t, "1.00", sf.Owed())
}

func TestReconcile_SpecifiedCreditAboveDueIsSatisfied(t *testing.T) {
	s, err := newReconciler().Reconcile(Input{
		Lines:        untaxed("5.00"),
		CreditSale:   true,
		CreditMode:   enum.CreditModeSpecified,
		CustomerName: "Lee",
		Tender:       Tender{Credit: d("8.00")},
	})
	require.NoError(t, err)
	assertMoney(t, "8.00", s.Transaction.CreditBalance)
	assert.False(t, s.DecrementInventory, "nothing paid")
}

func TestReconcile_CreditSaleLottoExceedsDue(t *testing.T) {
	for _, mode := range []enum.CreditMode{enum.CreditModeAuto, enum.CreditModeSpecified} {
		t.Run(mode.String(), func(t *testing.T) {
			s, err := newReconciler().Reconcile(Input{
				Lines:        untaxed("10.00"),
				Modifiers:    pricing.Modifiers{LottoWinnings: d("15.00")},
				CreditSale:   true,
				CreditMode:   mode,
				CustomerName: "Ann",
			})
			require.NoError(t, err)

			tx := s.Transaction
			assertMoney(t, "-5.00", tx.FinalTotal)
			assertMoney(t, "0.00", tx.CreditBalance)
			cash, ok := tx.PaymentFor(enum.PaymentMethodCash)
			require.True(t, ok)
			assertMoney(t, "-5.00", cash.Amount)
			assert.True(t, tx.Settled().Add(tx.CreditBalance).Equal(tx.FinalTotal))
			require.NotNil(t, tx.CreditStatus)
			assert.Equal(t, enum.CreditStatusPaid, *tx.CreditStatus)
			assert.Nil(t, s.Ledger)
			assert.True(t, s.DecrementInventory)
		})
	}
}

func TestReconcile_AutoCredit(t *testing.T) {
	cases := []struct {
		name      string
		cash      string
		credit    string
		partial   bool
		status    enum.CreditStatus
		decrement bool
	}{
		{name: "unpaid", cash: "0", credit: "20.00", partial: false, status: enum.CreditStatusUnpaid, decrement: false},
		{name: "partial", cash: "5", credit: "15.00", partial: true, status: enum.CreditStatusUnpaid, decrement: true},
		{name: "covered", cash: "25", credit: "0.00", partial: false, status: enum.CreditStatusPaid, decrement: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := newReconciler().Reconcile(Input{
				Lines:        untaxed("20.00"),
				CreditSale:   true,
				CreditMode:   enum.CreditModeAuto,
				CustomerName: "Sam",
				Tender:       Tender{Cash: d(tc.cash)},
			})
			require.NoError(t, err)

			tx := s.Transaction
			assertMoney(t, tc.credit, tx.CreditBalance)
			expected := pricing.NonNegative(tx.FinalTotal.Sub(d(tc.cash)))
			assert.True(t, tx.CreditBalance.Equal(expected))
			assert.Equal(t, tc.partial, tx.IsPartialPayment)
			require.NotNil(t, tx.CreditStatus)
			assert.Equal(t, tc.status, *tx.CreditStatus)
			assert.Equal(t, tc.decrement, s.DecrementInventory)
		})
	}
}

func TestReconcile_CreditNeedsCustomerName(t *testing.T) {
	in := Input{Lines: untaxed("20.00"), CreditSale: true, Tender: Tender{Cash: d("5")}}

	_, err := newReconciler().Reconcile(in)
	assert.ErrorIs(t, err, ErrCustomerNameRequired)

	in.SelectedCustomer = &Customer{Name: "Pat"}
	s, err := newReconciler().Reconcile(in)
	require.NoError(t, err)
	assert.Equal(t, "Pat", s.Transaction.CustomerName)

	in.SelectedCustomer = nil
	in.Tender = Tender{Cash: d("20")}
	_, err = newReconciler().Reconcile(in)
	assert.NoError(t, err, "fully paid credit sale has no balance and needs no name")
}

func TestReconcile_CashbackOnCreditRejected(t *testing.T) {
	_, err := newReconciler().Reconcile(Input{
		Lines:        untaxed("20.00"),
		Modifiers:    pricing.Modifiers{CashbackAmount: d("10")},
		CreditSale:   true,
		CustomerName: "Kim",
	})
	assert.ErrorIs(t, err, ErrCashbackOnCredit)
}

func TestReconcile_BalancePayment(t *testing.T) {
	s, err := newReconciler().Reconcile(Input{
		SelectedCustomer: &Customer{Name: "Alex", Balance: d("40.00")},
		Tender:           Tender{Cash: d("25.00")},
	})
	require.NoError(t, err)

	tx := s.Transaction
	assert.True(t, tx.IsBalancePayment)
	require.Len(t, tx.Items, 1)
	assert.Equal(t, "Balance Payment", tx.Items[0].Name)
	assertMoney(t, "25.00", tx.FinalTotal)
	assert.False(t, s.DecrementInventory)
	require.NotNil(t, s.ProjectedBalance)
	assertMoney(t, "15.00", *s.ProjectedBalance)
	require.NotNil(t, s.Ledger)
	assert.Equal(t, enum.LedgerActionPayment, s.Ledger.Action)
	assertMoney(t, "25.00", s.Ledger.Amount)
}

func TestReconcile_BalancePaymentOverpay(t *testing.T) {
	s, err := newReconciler().Reconcile(Input{
		SelectedCustomer: &Customer{Name: "Alex", Balance: d("12.00")},
		Tender:           Tender{Cash: d("20.00")},
	})
	require.NoError(t, err)

	assertMoney(t, "8.00", s.Transaction.Change)
	assertMoney(t, "12.00", s.Ledger.Amount)
	assertMoney(t, "0.00", *s.ProjectedBalance)
	assert.True(t, s.Transaction.Settled().Equal(s.Transaction.FinalTotal))
}

func TestReconcile_BalancePaymentNeedsTender(t *testing.T) {
	_, err := newReconciler().Reconcile(Input{SelectedCustomer: &Customer{Name: "Alex", Balance: d("5")}})
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestReconcile_SelectedCustomerWithCartIsNormalSale(t *testing.T) {
	s, err := newReconciler().Reconcile(Input{
		Lines:            untaxed("3.00"),
		SelectedCustomer: &Customer{Name: "Alex", Balance: d("40")},
		Tender:           Tender{Cash: d("3")},
	})
	require.NoError(t, err)
	assert.False(t, s.Transaction.IsBalancePayment)
	assert.Nil(t, s.Ledger)
}
