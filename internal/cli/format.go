package cli

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes rendered money amounts.
var CurrencySymbol = "₹"

// FormatMoney renders d with two decimals and thousands separators.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	return sign + CurrencySymbol + groupThousands(whole) + "." + frac
}

// FormatPercent renders d as a percentage with one decimal.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
