package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CreditStatus is the settlement state of a credit sale. Sales that are not
// credit sales carry no status at all (a nil *CreditStatus).
type CreditStatus string

const (
	CreditStatusPaid   CreditStatus = "paid"
	CreditStatusUnpaid CreditStatus = "unpaid"
)

func (s CreditStatus) String() string {
	return string(s)
}

// Ptr returns a pointer to a copy of s.
func (s CreditStatus) Ptr() *CreditStatus {
	return &s
}

func (s CreditStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *CreditStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = CreditStatus(str)
	return nil
}

func (s CreditStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *CreditStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*s = CreditStatus(v)
	case []byte:
		*s = CreditStatus(string(v))
	}
	return nil
}
