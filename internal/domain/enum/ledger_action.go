package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LedgerAction is a mutation against a customer's credit account
type LedgerAction string

const (
	LedgerActionAddCredit LedgerAction = "addCredit"
	LedgerActionPayment   LedgerAction = "payment"
)

func (a LedgerAction) String() string {
	return string(a)
}

func (a LedgerAction) Valid() bool {
	return a == LedgerActionAddCredit || a == LedgerActionPayment
}

func (a LedgerAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

func (a *LedgerAction) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	la := LedgerAction(str)
	if !la.Valid() {
		return fmt.Errorf("unknown ledger action %q", str)
	}
	*a = la
	return nil
}

func (a LedgerAction) Value() (driver.Value, error) {
	return string(a), nil
}

func (a *LedgerAction) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*a = LedgerAction(v)
	case []byte:
		*a = LedgerAction(string(v))
	}
	return nil
}
