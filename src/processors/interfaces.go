package processors

import (
	"github.com/username/tradelens/src/models"
)

// RowProcessor turns raw upload rows into canonical trades.
type RowProcessor interface {
	Process(rows []models.RawRow, defaultPair string, candles models.CandleSet) ProcessOutput
}

// TradeMatcher pairs buys with sells across every pair in the batch.
type TradeMatcher interface {
	MatchAll(trades []models.CanonicalTrade) models.LedgerResult
}

// MatcherFactory builds a matcher for one upload's lot method.
type MatcherFactory func(method models.Method) TradeMatcher

// NewTradeMatcher is the MatcherFactory backed by LedgerMatcher.
func NewTradeMatcher(method models.Method) TradeMatcher {
	return NewLedgerMatcher(method)
}

// BehaviorClassifier flags trading mistakes and market-only markers.
type BehaviorClassifier interface {
	Classify(matched []models.MatchedTrade, candles models.CandleSet) []models.MistakeRecord
	OversoldMarkers(candles models.CandleSet) []models.MarketMarker
}

var (
	_ RowProcessor       = (*TradeProcessor)(nil)
	_ TradeMatcher       = (*LedgerMatcher)(nil)
	_ MatcherFactory     = NewTradeMatcher
	_ BehaviorClassifier = (*MistakeClassifier)(nil)
)
