package processors

import (
	"fmt"
	"math"
	"sort"

	"github.com/username/tradelens/src/config"
	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/utils"
)

// QualityEnhancer runs batch-level checks once every row has been accepted:
// time-gap anomalies, amount reconciliation and reason consolidation.
type QualityEnhancer struct {
	rules *config.AnalysisRules
}

func NewQualityEnhancer(rules *config.AnalysisRules) *QualityEnhancer {
	return &QualityEnhancer{rules: rules}
}

// Enhance returns a corrected copy of trades and the diagnostics describing
// every change.
func (e *QualityEnhancer) Enhance(trades []models.CanonicalTrade) ([]models.CanonicalTrade, []models.Diagnostic) {
	out := make([]models.CanonicalTrade, len(trades))
	for i, t := range trades {
		t.EstimatedFields = append([]string{}, t.EstimatedFields...)
		out[i] = t
	}

	var diags []models.Diagnostic
	if d := e.timeGapAnomaly(out); d != nil {
		diags = append(diags, *d)
	}
	diags = append(diags, e.reconcileAmounts(out)...)
	diags = append(diags, e.consolidateReasons(out)...)
	return out, diags
}

func (e *QualityEnhancer) timeGapAnomaly(trades []models.CanonicalTrade) *models.Diagnostic {
	if len(trades) < 2 {
		return nil
	}
	times := make([]float64, len(trades))
	for i, t := range trades {
		times[i] = float64(t.Timestamp.Unix())
	}
	sort.Float64s(times)
	gaps := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, times[i]-times[i-1])
	}
	if len(gaps) < e.rules.Quality.MinGapsForGapAnomaly {
		return nil
	}
	mean, std := utils.MeanStdDev(gaps)
	limit := mean + e.rules.Quality.GapSigma*std
	anomalies := 0
	for _, g := range gaps {
		if g > limit {
			anomalies++
		}
	}
	if anomalies == 0 {
		return nil
	}
	return &models.Diagnostic{
		Severity: models.SeverityWarning,
		Code:     models.CodeTimeGapAnomaly,
		Message:  fmt.Sprintf("%d unusually long gaps between trades", anomalies),
	}
}

func (e *QualityEnhancer) reconcileAmounts(trades []models.CanonicalTrade) []models.Diagnostic {
	var diags []models.Diagnostic
	for i := range trades {
		t := &trades[i]
		expected := t.Price * t.ExecutedQuantity
		if expected == 0 {
			continue
		}
		if math.Abs(expected-t.Amount) > expected*e.rules.Quality.AmountTolerancePct/100 {
			diags = append(diags, models.Diagnostic{
				Row:      t.Row,
				Severity: models.SeverityInfo,
				Code:     models.CodeAmountCorrected,
				Message:  fmt.Sprintf("amount %.2f replaced with price x quantity %.2f", t.Amount, expected),
			})
			t.Amount = expected
			t.EstimatedFields = models.AppendUnique(t.EstimatedFields, models.EstimatedAmountCorrected)
		}
	}
	return diags
}

// consolidateReasons replaces an inferred reason with the most frequent reason
// among same-side trades at a similar price. Ties keep the first one seen.
func (e *QualityEnhancer) consolidateReasons(trades []models.CanonicalTrade) []models.Diagnostic {
	original := make([]string, len(trades))
	for i, t := range trades {
		original[i] = t.Reason
	}

	var diags []models.Diagnostic
	for i := range trades {
		t := &trades[i]
		if !containsString(t.EstimatedFields, models.EstimatedReason) || t.Price <= 0 {
			continue
		}

		counts := make(map[string]int)
		var order []string
		for j, other := range trades {
			if other.Side != t.Side || original[j] == "" {
				continue
			}
			if math.Abs(other.Price-t.Price)/t.Price*100 >= e.rules.Reason.SimilarPricePct {
				continue
			}
			if counts[original[j]] == 0 {
				order = append(order, original[j])
			}
			counts[original[j]]++
		}

		best, bestCount := "", 0
		for _, reason := range order {
			if counts[reason] > bestCount {
				best, bestCount = reason, counts[reason]
			}
		}
		if best == "" || best == t.Reason {
			continue
		}
		diags = append(diags, models.Diagnostic{
			Row:      t.Row,
			Severity: models.SeverityInfo,
			Code:     models.CodeReasonCorrected,
			Message:  fmt.Sprintf("reason %q replaced with %q from similar trades", t.Reason, best),
		})
		t.Reason = best
		t.EstimatedFields = models.AppendUnique(t.EstimatedFields, models.EstimatedReasonCorrected)
	}
	return diags
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
