package models

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic codes.
const (
	CodeFieldEstimated        = "field_estimated"
	CodeStatisticalOutlier    = "statistical_outlier"
	CodeThresholdOutlier      = "threshold_outlier"
	CodeMarketPriceDeviation  = "market_price_deviation"
	CodeOrderingViolation     = "ordering_violation"
	CodeAmountCorrected       = "amount_corrected"
	CodeReasonCorrected       = "reason_corrected"
	CodeTimeGapAnomaly        = "time_gap_anomaly"
	CodeRowsRejected          = "rows_rejected"
	CodeMarketDataUnavailable = "market_data_unavailable"
)

// Diagnostic is an advisory event returned with the result. Row is 1-based;
// 0 marks a batch-level event.
type Diagnostic struct {
	Row      int      `json:"row"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Rejection records a row dropped during normalization.
type Rejection struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Summary aggregates realized results over all matched trades.
type Summary struct {
	TotalTrades    int            `json:"totalTrades"`
	TotalProfit    float64        `json:"totalProfit"`
	TotalLoss      float64        `json:"totalLoss"`
	FinalPnL       float64        `json:"finalPnl"`
	AvgPnL         float64        `json:"avgPnl"`
	WinRate        float64        `json:"winRate"`
	MaxProfit      float64        `json:"maxProfit"`
	MaxLoss        float64        `json:"maxLoss"`
	AvgHoldDays    float64        `json:"avgHoldDays"`
	ShortTermCount int            `json:"shortTermCount"`
	LongTermCount  int            `json:"longTermCount"`
	Mistakes       MistakeSummary `json:"mistakes"`
}

// AnalysisResult is the bundle produced by one upload.
type AnalysisResult struct {
	SessionID   string             `json:"sessionId"`
	UserID      int64              `json:"-"`
	FileName    string             `json:"fileName"`
	Method      Method             `json:"method"`
	CreatedAt   time.Time          `json:"createdAt"`
	NoValidData bool               `json:"noValidData"`
	Trades      []CanonicalTrade   `json:"trades"`
	Matched     []MatchedTrade     `json:"matched"`
	Unmatched   []UnmatchedResidue `json:"unmatched"`
	Rejections  []Rejection        `json:"rejections"`
	Diagnostics []Diagnostic       `json:"diagnostics"`
	Mistakes    []MistakeRecord    `json:"mistakes"`
	Markers     []MarketMarker     `json:"markers"`
	Summary     Summary            `json:"summary"`
}
