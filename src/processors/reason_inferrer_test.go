package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/tradelens/src/models"
)

func reasonDraft(side models.Side, price float64) models.TradeDraft {
	return models.TradeDraft{Timestamp: day(10), Side: side, Price: price}
}

func TestInfer_Precedence(t *testing.T) {
	ri := NewReasonInferrer(testRules())

	tests := []struct {
		name    string
		draft   models.TradeDraft
		prev    []models.CanonicalTrade
		candles []models.Candle
		want    string
	}{
		{
			name:  "revisited price level beats trend",
			draft: reasonDraft(models.SideBuy, 100.5),
			prev: []models.CanonicalTrade{
				trade(1, models.SideSell, day(1), 120, 1, 0),
				trade(2, models.SideSell, day(2), 101, 1, 0),
				trade(3, models.SideSell, day(3), 100, 1, 0),
			},
			want: ReasonSupportAccumulation,
		},
		{
			name:  "similar sells",
			draft: reasonDraft(models.SideSell, 100),
			prev: []models.CanonicalTrade{
				trade(1, models.SideBuy, day(1), 99.5, 1, 0),
				trade(2, models.SideBuy, day(2), 100.5, 1, 0),
			},
			want: ReasonResistanceProfit,
		},
		{
			name:  "buy into falling prices",
			draft: reasonDraft(models.SideBuy, 70),
			prev: []models.CanonicalTrade{
				trade(1, models.SideSell, day(1), 100, 1, 0),
				trade(2, models.SideSell, day(2), 90, 1, 0),
				trade(3, models.SideSell, day(3), 80, 1, 0),
			},
			want: ReasonBuyTheDip,
		},
		{
			name:  "buy into rising prices",
			draft: reasonDraft(models.SideBuy, 130),
			prev: []models.CanonicalTrade{
				trade(1, models.SideSell, day(1), 80, 1, 0),
				trade(2, models.SideSell, day(2), 90, 1, 0),
				trade(3, models.SideSell, day(3), 100, 1, 0),
			},
			want: ReasonMomentumFollow,
		},
		{
			name:  "sell into rising prices",
			draft: reasonDraft(models.SideSell, 130),
			prev: []models.CanonicalTrade{
				trade(1, models.SideBuy, day(1), 80, 1, 0),
				trade(2, models.SideBuy, day(2), 90, 1, 0),
				trade(3, models.SideBuy, day(3), 100, 1, 0),
			},
			want: ReasonTakeProfitUptrend,
		},
		{
			name:  "sell into falling prices",
			draft: reasonDraft(models.SideSell, 50),
			prev: []models.CanonicalTrade{
				trade(1, models.SideBuy, day(1), 100, 1, 0),
				trade(2, models.SideBuy, day(2), 90, 1, 0),
				trade(3, models.SideBuy, day(3), 80, 1, 0),
			},
			want: ReasonCutLossDowntrend,
		},
		{
			name:  "repeated buys",
			draft: reasonDraft(models.SideBuy, 400),
			prev: []models.CanonicalTrade{
				trade(1, models.SideBuy, day(1), 100, 1, 0),
				trade(2, models.SideBuy, day(2), 200, 1, 0),
				trade(3, models.SideSell, day(3), 150, 1, 0),
			},
			want: ReasonConsistentAccumulate,
		},
		{
			name:  "repeated sells",
			draft: reasonDraft(models.SideSell, 400),
			prev: []models.CanonicalTrade{
				trade(1, models.SideSell, day(1), 100, 1, 0),
				trade(2, models.SideBuy, day(2), 200, 1, 0),
				trade(3, models.SideSell, day(3), 150, 1, 0),
			},
			want: ReasonSystematicProfit,
		},
		{
			name:    "buy below market",
			draft:   reasonDraft(models.SideBuy, 95),
			candles: []models.Candle{{Time: day(10), Close: 100}},
			want:    ReasonMarketDipBuy,
		},
		{
			name:    "sell above market",
			draft:   reasonDraft(models.SideSell, 104),
			candles: []models.Candle{{Time: day(10), Close: 100}},
			want:    ReasonMarketPeakSell,
		},
		{
			name:    "only the first nearby candle counts",
			draft:   reasonDraft(models.SideBuy, 99),
			candles: []models.Candle{{Time: day(10), Close: 100}, {Time: day(10), Close: 200}},
			want:    ReasonRegularAccumulation,
		},
		{
			name:    "distant candles are ignored",
			draft:   reasonDraft(models.SideSell, 150),
			candles: []models.Candle{{Time: day(2), Close: 100}},
			want:    ReasonRegularProfitTaking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ri.Infer(tt.draft, tt.prev, tt.candles))
		})
	}
}

func TestInfer_LooksAtRecentTradesOnly(t *testing.T) {
	ri := NewReasonInferrer(testRules())
	prev := []models.CanonicalTrade{
		trade(1, models.SideSell, day(1), 100, 1, 0),
		trade(2, models.SideSell, day(2), 100, 1, 0),
		trade(3, models.SideBuy, day(3), 300, 1, 0),
		trade(4, models.SideSell, day(4), 200, 1, 0),
		trade(5, models.SideBuy, day(5), 400, 1, 0),
		trade(6, models.SideSell, day(6), 250, 1, 0),
		trade(7, models.SideBuy, day(7), 500, 1, 0),
	}
	assert.Equal(t, ReasonConsistentAccumulate, ri.Infer(reasonDraft(models.SideBuy, 100), prev, nil))
}
