// Package utils provides formatting, ticker and calendar helpers for the
// SmartB3 dashboard.
package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL formats a monetary value in reais fixed to 2 decimal digits.
// e.g., 122.1 → "R$ 122.10"
func FormatBRL(amount float64) string {
	return "R$ " + decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatPct formats a variation with sign and suffix.
// e.g., 1.2 → "+1.20%", -0.5 → "-0.50%"
func FormatPct(pct float64) string {
	s := decimal.NewFromFloat(pct).StringFixed(2)
	if pct >= 0 {
		return "+" + s + "%"
	}
	// Values that round to zero lose their sign in decimal.
	if !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s + "%"
}

// FormatPercent formats an unsigned percentage such as a model error.
// e.g., 0.57 → "0.57%"
func FormatPercent(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(2) + "%"
}

// FormatFixed formats a number with the given number of decimal places.
func FormatFixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// FormatCount formats a count, rounding to the nearest integer.
// e.g., 120.0 → "120"
func FormatCount(v float64) string {
	return decimal.NewFromFloat(v).Round(0).String()
}
