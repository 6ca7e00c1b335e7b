package enum

import (
	"encoding/json"
)

// TenderField records which tender input the cashier edited last
type TenderField int

const (
	TenderFieldNone TenderField = 0
	TenderFieldCash TenderField = 1
	TenderFieldCard TenderField = 2
)

func (f TenderField) String() string {
	names := [...]string{"none", "cash", "card"}
	if int(f) < 0 || int(f) >= len(names) {
		return "none"
	}
	return names[f]
}

func (f TenderField) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *TenderField) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*f = TenderField(i)
		return nil
	}
	switch str {
	case "cash":
		*f = TenderFieldCash
	case "card":
		*f = TenderFieldCard
	default:
		*f = TenderFieldNone
	}
	return nil
}
