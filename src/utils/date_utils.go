package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var epochRe = regexp.MustCompile(`^-?\d+$`)

// Fallback layouts tried after the ISO forms, in order. Day-first is tried
// before month-first.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"02/01/2006 15:04",
	"1/2/06 15:04",
	"1/2/06",
}

// ParseTradeTime parses the timestamp formats found in exchange exports.
// Inputs without a zone are read as UTC. A bare integer is an epoch in
// milliseconds.
func ParseTradeTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	if epochRe.MatchString(s) {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	return time.Time{}, false
}
