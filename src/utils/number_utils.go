package utils

import (
	"strconv"
	"strings"
)

// ParseCleanNumber parses a spreadsheet cell as a number. Thousands
// separators, currency symbols and units are stripped first, so "1,234.5 USDT"
// parses as 1234.5.
func ParseCleanNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
