package handler

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// amountField accepts a JSON number or numeric string and keeps the literal
// text so precision is never lost to float parsing.
type amountField struct {
	raw string
	set bool
}

func (a *amountField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	a.set = true
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		a.raw = strings.TrimSpace(value)
		return nil
	}
	a.raw = string(data)
	return nil
}

func (a amountField) value() (decimal.Decimal, error) {
	return decimal.NewFromString(a.raw)
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

// optionalString returns nil for absent or blank values.
func optionalString(value *string) *string {
	if v := trimmed(value); v != "" {
		return &v
	}
	return nil
}
