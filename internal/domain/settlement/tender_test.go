package settlement

import (
	"testing"

	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/stretchr/testify/assert"
)

func TestAutofill(t *testing.T) {
	due := d("12.40")

	out := Autofill(RawTender{Cash: "10", LastEdited: enum.TenderFieldCash}, due, false)
	assert.Equal(t, "10", out.Cash)
	assert.Equal(t, "2.40", out.Card)

	out = Autofill(RawTender{Card: "20", Cash: "4", LastEdited: enum.TenderFieldCard}, due, false)
	assert.Equal(t, "20", out.Card)
	assert.Equal(t, "0.00", out.Cash, "overpaying one field never drives the other negative")

	out = Autofill(RawTender{Cash: "1", Card: "2"}, due, false)
	assert.Equal(t, "1", out.Cash)
	assert.Equal(t, "2", out.Card)
}

func TestAutofill_IsOneDirectional(t *testing.T) {
	due := d("10.00")

	first := Autofill(RawTender{Cash: "4", LastEdited: enum.TenderFieldCash}, due, false)
	second := Autofill(first, due, false)

	assert.Equal(t, first, second)
}

func TestAutofill_CashbackForcesCard(t *testing.T) {
	out := Autofill(RawTender{Cash: "5", LastEdited: enum.TenderFieldCash}, d("31"), true)
	assert.Empty(t, out.Cash)
	assert.Equal(t, "31.00", out.Card)
}

func TestRawTender_Parse(t *testing.T) {
	tender := RawTender{Cash: "5", Card: "bad", Credit: "-2"}.Parse()
	assert.Equal(t, "5", tender.Cash.String())
	assert.True(t, tender.Card.IsZero())
	assert.True(t, tender.Credit.IsZero())
	assert.Equal(t, "5", tender.Paid().String())
}
