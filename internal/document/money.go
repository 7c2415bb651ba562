package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

// nbsp separates thousands in pt-AO amounts.
const nbsp = '\u00a0'

// FormatKwanza renders an amount the pt-AO way: two decimals, comma as the
// decimal mark and a non-breaking space between thousands ("25 000,00").
func FormatKwanza(v decimal.Decimal) string {
	rounded := v.Round(2)
	fixed := rounded.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(nbsp)
		}
		b.WriteRune(digit)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// CurrencySymbol printed after amounts; unknown codes print as-is.
func CurrencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "", "AOA":
		return "Kz"
	case "EUR":
		return "€"
	case "USD":
		return "US$"
	default:
		return code
	}
}

// FormatMoney is FormatKwanza followed by the currency symbol.
func FormatMoney(v decimal.Decimal, currency string) string {
	return FormatKwanza(v) + " " + CurrencySymbol(currency)
}
