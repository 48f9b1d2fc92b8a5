package utils

import (
	"regexp"
	"strings"
)

// b3TickerPattern matches B3 cash-market tickers: a four-character root
// starting with a letter (roots such as "B3SA" carry digits), a share-class
// digit group and an optional fractional-market "F".
var b3TickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}[0-9]{1,2}F?$`)

// NormalizeTicker normalizes a user-input ticker to the canonical B3 form.
// It handles uppercasing, whitespace, a "$" prefix and the ".SA" suffix
// used by Yahoo Finance.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")
	ticker = strings.TrimSuffix(ticker, ".SA")
	return ticker
}

// IsValidTicker reports whether the ticker looks like a B3 stock code.
func IsValidTicker(ticker string) bool {
	return b3TickerPattern.MatchString(NormalizeTicker(ticker))
}
