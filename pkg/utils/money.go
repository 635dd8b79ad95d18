package utils

import "github.com/shopspring/decimal"

// FormatPrice renders an amount with the store currency symbol and two decimals.
func FormatPrice(symbol string, amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + symbol + amount.Abs().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}
