package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradelens/src/models"
)

func matchedAt(buyRow int, buyDay int, buyPrice, sellPrice, qty float64) models.MatchedTrade {
	return models.MatchedTrade{
		Pair:          "BTC/USDT",
		BuyRow:        buyRow,
		SellRow:       buyRow + 100,
		BuyTimestamp:  day(buyDay),
		SellTimestamp: day(buyDay + 1),
		BuyPrice:      buyPrice,
		SellPrice:     sellPrice,
		ExecutedQty:   qty,
	}
}

// risingCandles builds n daily candles ending on day(n-1) with closes rising
// by step and a volume spike on the last bar.
func risingCandles(n int, start, step, lastVolume float64) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		c := start + float64(i)*step
		out[i] = models.Candle{Time: day(i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	out[n-1].Volume = lastVolume
	return out
}

func btc(candles []models.Candle) models.CandleSet {
	return models.CandleSet{"BTCUSDT": candles}
}

func recordTypes(recs []models.MistakeRecord) []models.MistakeType {
	out := make([]models.MistakeType, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Type)
	}
	return out
}

func TestClassify_PanicSell(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	recs := mc.Classify([]models.MatchedTrade{
		matchedAt(1, 0, 100, 90, 2),
		matchedAt(2, 0, 100, 110, 2),
	}, nil)

	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, models.MistakePanicSell, r.Type)
	require.NotNil(t, r.PnL)
	assert.Equal(t, -20.0, *r.PnL)
	assert.Equal(t, 10.0, r.Evidence["gap"])
	assert.Equal(t, 101, r.SellRow)
}

func TestClassify_FOMO(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	candles := risingCandles(10, 50, 5, 100)
	// last close and high: 95 on day 9

	recs := mc.Classify([]models.MatchedTrade{
		matchedAt(1, 9, 92, 120, 1),
		matchedAt(1, 9, 92, 120, 1),
		matchedAt(2, 9, 80, 120, 1),
	}, btc(candles))

	require.Equal(t, []models.MistakeType{models.MistakeFOMOBuy}, recordTypes(recs))
	assert.Equal(t, 1, recs[0].BuyRow)
	assert.Equal(t, 95.0, recs[0].Evidence["maxHigh"])
	assert.Nil(t, recs[0].PnL)
}

func TestClassify_FOMOIgnoresOldHighs(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	candles := []models.Candle{
		{Time: day(0), High: 100, Close: 100},
		{Time: day(8), High: 50, Close: 50},
		{Time: day(9), High: 60, Close: 60},
	}

	recs := mc.Classify([]models.MatchedTrade{matchedAt(1, 9, 59, 70, 1)}, btc(candles))
	require.Len(t, recs, 1)
	assert.Equal(t, 60.0, recs[0].Evidence["maxHigh"])
}

func TestClassify_MomentumChase(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	candles := risingCandles(20, 100, 10, 1000)
	// last close 290; RSI over the last 14 closes is about 90

	recs := mc.Classify([]models.MatchedTrade{matchedAt(1, 19, 292.9, 300, 1)}, btc(candles))

	types := recordTypes(recs)
	assert.Contains(t, types, models.MistakeMomentumChase)
	assert.Contains(t, types, models.MistakeFOMOBuy)
	for _, r := range recs {
		if r.Type == models.MistakeMomentumChase {
			assert.Greater(t, r.Evidence["rsi"], 70.0)
			assert.Equal(t, 290.0, r.Evidence["close"])
		}
	}
}

func TestClassify_MomentumNeedsVolumeSpike(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	candles := risingCandles(20, 100, 10, 100)

	recs := mc.Classify([]models.MatchedTrade{matchedAt(1, 19, 292.9, 300, 1)}, btc(candles))
	assert.NotContains(t, recordTypes(recs), models.MistakeMomentumChase)
}

func TestClassify_MomentumNeedsHistory(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	candles := risingCandles(19, 100, 10, 1000)

	recs := mc.Classify([]models.MatchedTrade{matchedAt(1, 18, 281, 300, 1)}, btc(candles))
	assert.NotContains(t, recordTypes(recs), models.MistakeMomentumChase)
}

func TestClassify_MomentumIgnoresStaleCandles(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	candles := risingCandles(20, 100, 10, 1000)

	tests := []struct {
		name   string
		buyDay int
		want   bool
	}{
		{"buy on the last bar", 19, true},
		{"buy a day later", 20, true},
		{"price window too thin", 21, false},
		{"buy three weeks later", 40, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := mc.Classify([]models.MatchedTrade{matchedAt(1, tt.buyDay, 292.9, 300, 1)}, btc(candles))
			if tt.want {
				assert.Contains(t, recordTypes(recs), models.MistakeMomentumChase)
			} else {
				assert.NotContains(t, recordTypes(recs), models.MistakeMomentumChase)
			}
		})
	}
}

func TestClassify_UsesOnlyTheTradesOwnPair(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	eth := risingCandles(20, 100, 10, 1000)
	matched := []models.MatchedTrade{matchedAt(1, 19, 292.9, 300, 1)}

	tests := []struct {
		name    string
		candles models.CandleSet
		want    []models.MistakeType
	}{
		{"other pair only", models.CandleSet{"ETHUSDT": eth}, []models.MistakeType{}},
		{"own pair", models.CandleSet{"ETHUSDT": eth, "BTCUSDT": eth}, []models.MistakeType{models.MistakeFOMOBuy, models.MistakeMomentumChase}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordTypes(mc.Classify(matched, tt.candles)))
		})
	}
}

func TestOversoldMarkers(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	candles := risingCandles(20, 300, -10, 10)

	markers := mc.OversoldMarkers(btc(candles))
	require.Len(t, markers, 1)
	assert.Equal(t, models.MarkerOversoldLowActivity, markers[0].Type)
	assert.Equal(t, day(19), markers[0].Time)
	assert.Equal(t, 110.0, markers[0].Price)
	assert.Equal(t, "BTCUSDT", markers[0].Symbol)
}

func TestOversoldMarkers_PerPair(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	set := models.CandleSet{
		"ETHUSDT": risingCandles(20, 300, -10, 10),
		"BTCUSDT": risingCandles(20, 300, -10, 10),
		"SOLUSDT": risingCandles(30, 100, 0, 10),
	}

	markers := mc.OversoldMarkers(set)
	require.Len(t, markers, 2)
	assert.Equal(t, "BTCUSDT", markers[0].Symbol)
	assert.Equal(t, "ETHUSDT", markers[1].Symbol)
}

func TestOversoldMarkers_FlatSeries(t *testing.T) {
	mc := NewMistakeClassifier(testRules())
	assert.Empty(t, mc.OversoldMarkers(btc(risingCandles(30, 100, 0, 10))))
	assert.Empty(t, mc.OversoldMarkers(btc(risingCandles(10, 300, -10, 10))))
}

func TestSummarize(t *testing.T) {
	recs := []models.MistakeRecord{
		{Type: models.MistakePanicSell},
		{Type: models.MistakeFOMOBuy},
		{Type: models.MistakeMomentumChase},
	}
	s := Summarize(recs, 4)

	assert.Equal(t, 3, s.TotalMistakes)
	assert.Equal(t, 0.5, s.ImpulsiveRatio)
	assert.Equal(t, 1, s.Counts[models.MistakeFOMOBuy])
	assert.Len(t, s.Grouped[models.MistakePanicSell], 1)

	assert.Zero(t, Summarize(nil, 0).ImpulsiveRatio)
}
