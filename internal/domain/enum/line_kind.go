package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// LineKind distinguishes goods lines from the synthetic modifier lines
// recorded on a transaction.
type LineKind string

const (
	LineKindItem           LineKind = "item"
	LineKindManual         LineKind = "manual"
	LineKindCashback       LineKind = "cashback"
	LineKindCashbackFee    LineKind = "cashback_fee"
	LineKindCardFee        LineKind = "card_fee"
	LineKindLottery        LineKind = "lottery"
	LineKindDiscount       LineKind = "discount"
	LineKindBalancePayment LineKind = "balance_payment"
)

func (k LineKind) String() string {
	return string(k)
}

// IsPseudo reports whether the line exists only to describe a modifier.
func (k LineKind) IsPseudo() bool {
	return k != LineKindItem && k != LineKindManual
}

func (k LineKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(k))
}

func (k *LineKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*k = LineKind(str)
	return nil
}

func (k LineKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *LineKind) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*k = LineKind(v)
	case []byte:
		*k = LineKind(string(v))
	case nil:
		*k = LineKindItem
	}
	return nil
}
