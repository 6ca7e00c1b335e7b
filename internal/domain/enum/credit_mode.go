package enum

import "encoding/json"

// CreditMode selects how the credit portion of a credit sale is derived
type CreditMode string

const (
	// CreditModeAuto puts whatever the tender does not cover on credit.
	CreditModeAuto CreditMode = "auto"
	// CreditModeSpecified puts a cashier-stated amount on credit.
	CreditModeSpecified CreditMode = "specified"
)

func (m CreditMode) String() string {
	if m == "" {
		return string(CreditModeAuto)
	}
	return string(m)
}

func (m CreditMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *CreditMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch CreditMode(str) {
	case CreditModeSpecified:
		*m = CreditModeSpecified
	default:
		*m = CreditModeAuto
	}
	return nil
}
