package models

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// Candle is one OHLCV bar from the external market feed. Series are sorted
// ascending by Time and treated as read-only.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// CandleSet holds one candle series per trading pair, keyed by PairKey.
type CandleSet map[string][]Candle

// PairKey maps "BTC/USDT", "btc-usdt" and "BTCUSDT" to the same key.
func PairKey(pair string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '-', '_', ' ':
			return -1
		}
		return unicode.ToUpper(r)
	}, pair)
}

// For returns the series for pair, or nil when none was loaded.
func (s CandleSet) For(pair string) []Candle {
	if s == nil {
		return nil
	}
	return s[PairKey(pair)]
}

func (s CandleSet) Put(pair string, candles []Candle) {
	s[PairKey(pair)] = candles
}

// Pairs returns the keys in sorted order.
func (s CandleSet) Pairs() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
