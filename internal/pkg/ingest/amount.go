package ingest

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// flexAmount holds an upstream money value in decimal major units, received
// either as a JSON number or as a string ("19.90", "19,90", "1.234,56").
type flexAmount string

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			*a = ""
			return nil
		}
		s = v
	}
	if s == "null" || strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		s = ""
	}
	*a = flexAmount(strings.TrimSpace(s))
	return nil
}

// MinorUnits converts the amount to integer cents. An absent amount is 0.
func (a flexAmount) MinorUnits() (int64, error) {
	return ToMinorUnits(string(a))
}

// ToMinorUnits converts a decimal major-unit string to integer minor units.
// Rounding is half away from zero at the cent: "19.995" -> 2000,
// "19.994" -> 1999, "-19.995" -> -2000. No float is involved at any step.
func ToMinorUnits(major string) (int64, error) {
	s := normalizeDecimal(major)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Round(2).Shift(2).IntPart(), nil
}

// normalizeDecimal accepts "1234.56", "1,234.56" and Brazilian "1.234,56".
// A comma is the decimal mark only when it is the last separator and the
// only comma; otherwise commas group thousands.
func normalizeDecimal(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)

	lastComma := strings.LastIndex(s, ",")
	if lastComma < 0 {
		return s
	}
	if lastComma > strings.LastIndex(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	}
	return strings.ReplaceAll(s, ",", "")
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
