package processors

import (
	"math"
	"time"

	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/utils"
)

// BuildSummary aggregates realized results. TotalLoss is the (negative) sum of
// losing slices; trades held up to shortTerm count as short-term.
func BuildSummary(matched []models.MatchedTrade, mistakes models.MistakeSummary, shortTerm time.Duration) models.Summary {
	s := models.Summary{TotalTrades: len(matched), Mistakes: mistakes}
	if len(matched) == 0 {
		return s
	}

	var wins int
	var holdDays float64
	maxProfit, maxLoss := math.Inf(-1), math.Inf(1)
	for _, m := range matched {
		switch {
		case m.PnL > 0:
			s.TotalProfit += m.PnL
			wins++
		case m.PnL < 0:
			s.TotalLoss += m.PnL
		}
		maxProfit = math.Max(maxProfit, m.PnL)
		maxLoss = math.Min(maxLoss, m.PnL)
		holdDays += m.HoldDays

		if m.HoldDuration() <= shortTerm {
			s.ShortTermCount++
		} else {
			s.LongTermCount++
		}
	}

	n := float64(len(matched))
	s.FinalPnL = utils.RoundFloat(s.TotalProfit+s.TotalLoss, 2)
	s.AvgPnL = utils.RoundFloat((s.TotalProfit+s.TotalLoss)/n, 2)
	s.TotalProfit = utils.RoundFloat(s.TotalProfit, 2)
	s.TotalLoss = utils.RoundFloat(s.TotalLoss, 2)
	s.WinRate = utils.RoundFloat(float64(wins)/n*100, 2)
	s.MaxProfit = utils.RoundFloat(maxProfit, 2)
	s.MaxLoss = utils.RoundFloat(maxLoss, 2)
	s.AvgHoldDays = utils.RoundFloat(holdDays/n, 1)
	return s
}
