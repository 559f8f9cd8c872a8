package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NumText is a numeric form field kept as the text the user typed.
// JSON accepts strings, numbers and null; parsing into an amount happens in
// utils.ParseAmountOrZero so that garbage reads as zero.
type NumText string

func (n *NumText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null" || len(b) == 0:
		*n = ""
		return nil
	case len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = NumText(strings.TrimSpace(str))
		return nil
	default:
		// number/bool -> stringify best-effort
		*n = NumText(strings.Trim(string(b), `"`))
		return nil
	}
}

func (n NumText) String() string { return string(n) }

// IsBlank reports whether nothing was entered.
func (n NumText) IsBlank() bool { return strings.TrimSpace(string(n)) == "" }
