package processors

import (
	"math"

	"github.com/username/tradelens/src/config"
	"github.com/username/tradelens/src/models"
)

const (
	ReasonSupportAccumulation  = "Support level accumulation"
	ReasonResistanceProfit     = "Resistance level profit taking"
	ReasonBuyTheDip            = "Buy the dip"
	ReasonMomentumFollow       = "Momentum follow through"
	ReasonTakeProfitUptrend    = "Take profit on uptrend"
	ReasonCutLossDowntrend     = "Cut loss on downtrend"
	ReasonConsistentAccumulate = "Consistent accumulation strategy"
	ReasonSystematicProfit     = "Systematic profit taking"
	ReasonMarketDipBuy         = "Market dip buy opportunity"
	ReasonMarketPeakSell       = "Market peak sell"
	ReasonRegularAccumulation  = "Regular accumulation"
	ReasonRegularProfitTaking  = "Regular profit taking"
)

// ReasonInferrer fills a missing trade rationale from the trades before it
// and, when available, the surrounding market.
type ReasonInferrer struct {
	rules *config.AnalysisRules
}

func NewReasonInferrer(rules *config.AnalysisRules) *ReasonInferrer {
	return &ReasonInferrer{rules: rules}
}

// Infer returns a non-empty reason for the draft. prev holds the trades already
// accepted, oldest first.
func (ri *ReasonInferrer) Infer(d models.TradeDraft, prev []models.CanonicalTrade, candles []models.Candle) string {
	r := ri.rules.Reason
	buy := d.Side == models.SideBuy

	recent := prev
	if len(recent) > r.LookbackTrades {
		recent = recent[len(recent)-r.LookbackTrades:]
	}

	if d.Price > 0 {
		similar := 0
		for _, t := range recent {
			if math.Abs(t.Price-d.Price)/d.Price*100 < r.SimilarPricePct {
				similar++
			}
		}
		if similar >= r.MinSimilarTrades {
			return pick(buy, ReasonSupportAccumulation, ReasonResistanceProfit)
		}
	}

	if len(recent) > 2 {
		last := recent[len(recent)-3:]
		a, b, c := last[0].Price, last[1].Price, last[2].Price
		falling := a > b && b > c
		rising := a < b && b < c
		switch {
		case buy && falling:
			return ReasonBuyTheDip
		case buy && rising:
			return ReasonMomentumFollow
		case !buy && rising:
			return ReasonTakeProfitUptrend
		case !buy && falling:
			return ReasonCutLossDowntrend
		}
	}

	lastThree := prev
	if len(lastThree) > 3 {
		lastThree = lastThree[len(lastThree)-3:]
	}
	sameSide := 0
	for _, t := range lastThree {
		if t.Side == d.Side {
			sameSide++
		}
	}
	if sameSide >= 2 {
		return pick(buy, ReasonConsistentAccumulate, ReasonSystematicProfit)
	}

	for _, c := range candles {
		if absDuration(c.Time.Sub(d.Timestamp)) >= marketWindow || c.Close <= 0 {
			continue
		}
		diff := (d.Price - c.Close) / c.Close * 100
		if buy && diff < -r.MarketMovePct {
			return ReasonMarketDipBuy
		}
		if !buy && diff > r.MarketMovePct {
			return ReasonMarketPeakSell
		}
		break
	}

	return pick(buy, ReasonRegularAccumulation, ReasonRegularProfitTaking)
}

func pick(buy bool, ifBuy, ifSell string) string {
	if buy {
		return ifBuy
	}
	return ifSell
}
