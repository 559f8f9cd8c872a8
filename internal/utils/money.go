package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmountOrZero reads a free-text amount or quantity. Anything that does
// not parse as a number is treated as zero; callers never see an error.
func ParseAmountOrZero(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, " ", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParsePercentOrZero reads a percentage such as "12.5" or "12.5%".
// Same zero-on-failure policy as ParseAmountOrZero.
func ParsePercentOrZero(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	return ParseAmountOrZero(s)
}

// ApplyPercent returns amount * percent / 100 at full precision.
func ApplyPercent(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

