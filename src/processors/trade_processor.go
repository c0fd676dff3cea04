package processors

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/tradelens/src/config"
	"github.com/username/tradelens/src/models"
)

// ProcessOutput is the result of turning raw rows into canonical trades.
type ProcessOutput struct {
	Trades      []models.CanonicalTrade
	Rejections  []models.Rejection
	Diagnostics []models.Diagnostic
}

// TradeProcessor runs the per-row fold: normalize, impute, infer, validate and
// audit, followed by the batch enhancement pass.
type TradeProcessor struct {
	rules            *config.AnalysisRules
	fallbackQuantity float64
}

func NewTradeProcessor(rules *config.AnalysisRules, fallbackQuantity float64) *TradeProcessor {
	return &TradeProcessor{rules: rules, fallbackQuantity: fallbackQuantity}
}

// Process converts rows in upload order. defaultPair fills blank pair cells.
// Market-based checks use only the candles loaded for each trade's own pair
// and are skipped for pairs missing from candles.
func (p *TradeProcessor) Process(rows []models.RawRow, defaultPair string, candles models.CandleSet) ProcessOutput {
	normalizer := NewRowNormalizer(defaultPair)
	imputer := NewFieldImputer(p.rules.Imputation.FeeRate, p.fallbackQuantity)
	inferrer := NewReasonInferrer(p.rules)

	normalized := normalizer.Normalize(rows)
	drafts := make([]models.TradeDraft, len(normalized))
	for i, row := range normalized {
		drafts[i] = normalizer.ToDraft(row)
	}
	auditor := NewQualityAuditor(p.rules, drafts)

	out := ProcessOutput{
		Trades:      []models.CanonicalTrade{},
		Rejections:  []models.Rejection{},
		Diagnostics: []models.Diagnostic{},
	}
	var history PriceHistory

	for _, d := range drafts {
		if d.Timestamp.IsZero() {
			out.Rejections = append(out.Rejections, rejection(d.Row(), models.FieldTimestamp,
				fmt.Errorf("%w: %q", models.ErrMissingTimestamp, d.TimestampRaw)))
			continue
		}
		if !d.Side.Valid() {
			out.Rejections = append(out.Rejections, rejection(d.Row(), models.FieldSide,
				fmt.Errorf("%w: %q", models.ErrInvalidSide, d.SideRaw)))
			continue
		}

		d, history = imputer.Impute(d, history)
		if d.Reason == "" {
			d.Reason = inferrer.Infer(d, out.Trades, candles.For(d.Pair))
			d.MarkEstimated(models.EstimatedReason)
		}

		trade, err := models.NewCanonicalTrade(d)
		if err != nil {
			var rowErr *models.RowError
			if errors.As(err, &rowErr) {
				out.Rejections = append(out.Rejections, rejection(rowErr.Row, rowErr.Field, rowErr.Err))
			} else {
				out.Rejections = append(out.Rejections, rejection(d.Row(), "", err))
			}
			continue
		}

		if diag := EstimationDiagnostic(d); diag != nil {
			out.Diagnostics = append(out.Diagnostics, *diag)
		}
		var prev *models.CanonicalTrade
		if n := len(out.Trades); n > 0 {
			prev = &out.Trades[n-1]
		}
		out.Diagnostics = append(out.Diagnostics, auditor.Audit(trade, prev, candles.For(trade.Pair))...)
		out.Trades = append(out.Trades, trade)
	}

	if len(out.Rejections) > 0 {
		out.Diagnostics = append(out.Diagnostics, models.Diagnostic{
			Severity: models.SeverityWarning,
			Code:     models.CodeRowsRejected,
			Message:  fmt.Sprintf("%d of %d rows rejected", len(out.Rejections), len(rows)),
		})
	}

	if len(out.Trades) > 0 {
		enhanced, diags := NewQualityEnhancer(p.rules).Enhance(out.Trades)
		out.Trades = enhanced
		out.Diagnostics = append(out.Diagnostics, diags...)
	}
	return out
}

func rejection(row int, field string, err error) models.Rejection {
	return models.Rejection{Row: row, Field: field, Reason: err.Error()}
}

// TradePairs returns the distinct pairs named by rows in first-seen order,
// falling back to defaultPair for blank cells.
func TradePairs(rows []models.RawRow, defaultPair string) []string {
	n := NewRowNormalizer(defaultPair)
	seen := make(map[string]bool)
	var pairs []string
	for _, row := range n.Normalize(rows) {
		pair := n.ToDraft(row).Pair
		if pair == "" || seen[models.PairKey(pair)] {
			continue
		}
		seen[models.PairKey(pair)] = true
		pairs = append(pairs, pair)
	}
	return pairs
}

// TradeTimeRange returns the earliest and latest parseable timestamps in rows.
func TradeTimeRange(rows []models.RawRow) (start, end time.Time, ok bool) {
	n := NewRowNormalizer("")
	for _, row := range n.Normalize(rows) {
		d := n.ToDraft(row)
		if d.Timestamp.IsZero() {
			continue
		}
		if !ok || d.Timestamp.Before(start) {
			start = d.Timestamp
		}
		if !ok || d.Timestamp.After(end) {
			end = d.Timestamp
		}
		ok = true
	}
	return start, end, ok
}
