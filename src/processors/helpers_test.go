package processors

import (
	"time"

	"github.com/username/tradelens/src/config"
	"github.com/username/tradelens/src/models"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return baseTime.Add(time.Duration(n) * 24 * time.Hour) }

func trade(row int, side models.Side, at time.Time, price, qty, fee float64) models.CanonicalTrade {
	return models.CanonicalTrade{
		Row:              row,
		Timestamp:        at,
		Pair:             "BTC/USDT",
		Side:             side,
		Price:            price,
		ExecutedQuantity: qty,
		Amount:           price * qty,
		Fee:              fee,
		Reason:           "manual",
	}
}

func testRules() *config.AnalysisRules { return config.DefaultRules() }

func codes(diags []models.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}
