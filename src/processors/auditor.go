package processors

import (
	"fmt"
	"math"
	"time"

	"github.com/username/tradelens/src/config"
	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/utils"
)

// marketWindow is the distance within which a candle counts as market context
// for a trade.
const marketWindow = 24 * time.Hour

// QualityAuditor flags suspicious trades without altering them. It is built
// once per batch from the raw price and fee distributions.
type QualityAuditor struct {
	rules  *config.AnalysisRules
	prices []float64
	fees   []float64
}

func NewQualityAuditor(rules *config.AnalysisRules, drafts []models.TradeDraft) *QualityAuditor {
	a := &QualityAuditor{rules: rules}
	for _, d := range drafts {
		if d.Price > 0 {
			a.prices = append(a.prices, d.Price)
		}
		if d.Fee > 0 {
			a.fees = append(a.fees, d.Fee)
		}
	}
	return a
}

// Audit returns the findings for one accepted trade. prev is the previously
// accepted trade, or nil for the first one.
func (a *QualityAuditor) Audit(t models.CanonicalTrade, prev *models.CanonicalTrade, candles []models.Candle) []models.Diagnostic {
	var out []models.Diagnostic
	q := a.rules.Quality

	if outlier, lo, hi := utils.IsStatisticalOutlier(t.Price, a.prices, q.IQRMultiplier, q.MinObservations); outlier {
		out = append(out, warning(t.Row, models.CodeStatisticalOutlier,
			fmt.Sprintf("price %.2f outside [%.2f, %.2f]", t.Price, lo, hi)))
	}
	if t.Price > q.MaxPrice {
		out = append(out, warning(t.Row, models.CodeThresholdOutlier,
			fmt.Sprintf("price %.2f exceeds %.0f", t.Price, q.MaxPrice)))
	}
	if outlier, lo, hi := utils.IsStatisticalOutlier(t.Fee, a.fees, q.IQRMultiplier, q.MinObservations); outlier {
		out = append(out, warning(t.Row, models.CodeStatisticalOutlier,
			fmt.Sprintf("fee %.4f outside [%.4f, %.4f]", t.Fee, lo, hi)))
	}
	if t.Fee > q.MaxFee {
		out = append(out, warning(t.Row, models.CodeThresholdOutlier,
			fmt.Sprintf("fee %.2f exceeds %.0f", t.Fee, q.MaxFee)))
	}

	if avg, ok := averageCloseNear(candles, t.Timestamp); ok && avg > 0 {
		deviation := math.Abs(t.Price-avg) / avg * 100
		if deviation > q.MarketDeviationPct {
			out = append(out, warning(t.Row, models.CodeMarketPriceDeviation,
				fmt.Sprintf("price %.2f deviates %.1f%% from market average %.2f", t.Price, deviation, avg)))
		}
	}

	if prev != nil && t.Timestamp.Before(prev.Timestamp) {
		out = append(out, warning(t.Row, models.CodeOrderingViolation,
			fmt.Sprintf("timestamp %s is earlier than row %d", t.Timestamp.Format(time.RFC3339), prev.Row)))
	}
	return out
}

func averageCloseNear(candles []models.Candle, at time.Time) (float64, bool) {
	var sum float64
	var n int
	for _, c := range candles {
		if absDuration(c.Time.Sub(at)) < marketWindow {
			sum += c.Close
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func warning(row int, code, msg string) models.Diagnostic {
	return models.Diagnostic{Row: row, Severity: models.SeverityWarning, Code: code, Message: msg}
}
