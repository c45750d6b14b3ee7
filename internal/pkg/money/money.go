package money

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Money is a monetary amount with its currency code.
// Reverb-style APIs send it as {"amount":"100.00","currency":"USD"};
// some endpoints send the amount as a bare number instead.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type wire struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*m = Money{}
		return nil
	}
	// bare number
	if s != "" && s[0] != '{' && s[0] != '"' {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*m = Money{Amount: v}
		return nil
	}
	// quoted amount without an object wrapper
	if s != "" && s[0] == '"' {
		var q string
		if err := json.Unmarshal(b, &q); err != nil {
			return err
		}
		v, err := ParseAmount(q)
		if err != nil {
			return err
		}
		*m = Money{Amount: v}
		return nil
	}
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	var amt float64
	if w.Amount != "" {
		v, err := ParseAmount(string(w.Amount))
		if err != nil {
			return err
		}
		amt = v
	}
	*m = Money{Amount: amt, Currency: strings.ToUpper(strings.TrimSpace(w.Currency))}
	return nil
}

// ParseAmount parses a decimal amount, tolerating thousands separators
// and a leading currency sign ("$1,234.50" → 1234.5).
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
