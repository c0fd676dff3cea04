package processors

import (
	"fmt"
	"math"
	"time"

	"github.com/username/tradelens/src/config"
	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/utils"
)

// MistakeClassifier tags behavioral patterns on matched trades and computes
// market-only markers over the candle series.
type MistakeClassifier struct {
	rules *config.AnalysisRules
}

func NewMistakeClassifier(rules *config.AnalysisRules) *MistakeClassifier {
	return &MistakeClassifier{rules: rules}
}

// Classify returns the mistake records for matched trades. Candle-based rules
// see only the series of the trade's own pair and are evaluated at most once
// per source buy row.
func (mc *MistakeClassifier) Classify(matched []models.MatchedTrade, candles models.CandleSet) []models.MistakeRecord {
	records := []models.MistakeRecord{}
	seenBuys := make(map[int]bool)

	for _, m := range matched {
		if m.SellPrice < m.BuyPrice {
			pnl := utils.RoundFloat((m.SellPrice-m.BuyPrice)*m.ExecutedQty, 2)
			gap := m.BuyPrice - m.SellPrice
			records = append(records, models.MistakeRecord{
				Type:      models.MistakePanicSell,
				Timestamp: m.SellTimestamp,
				Price:     m.SellPrice,
				PnL:       &pnl,
				BuyRow:    m.BuyRow,
				SellRow:   m.SellRow,
				Evidence: map[string]float64{
					"buyPrice":  m.BuyPrice,
					"sellPrice": m.SellPrice,
					"gap":       gap,
				},
				Description: fmt.Sprintf("Sold at %.2f, %.2f below the %.2f entry", m.SellPrice, gap, m.BuyPrice),
			})
		}

		series := candles.For(m.Pair)
		if len(series) == 0 || seenBuys[m.BuyRow] {
			continue
		}
		seenBuys[m.BuyRow] = true

		if rec, ok := mc.fomo(m, series); ok {
			records = append(records, rec)
		}
		if rec, ok := mc.momentumChase(m, series); ok {
			records = append(records, rec)
		}
	}
	return records
}

func (mc *MistakeClassifier) fomo(m models.MatchedTrade, candles []models.Candle) (models.MistakeRecord, bool) {
	r := mc.rules.Mistakes
	from := m.BuyTimestamp.Add(-time.Duration(r.FOMOWindowDays) * 24 * time.Hour)
	maxHigh := 0.0
	found := false
	for _, c := range candles {
		if c.Time.Before(from) || c.Time.After(m.BuyTimestamp) {
			continue
		}
		found = true
		maxHigh = math.Max(maxHigh, c.High)
	}
	if !found || maxHigh <= 0 {
		return models.MistakeRecord{}, false
	}
	threshold := maxHigh * (1 - r.FOMONearHighPct/100)
	if m.BuyPrice < threshold {
		return models.MistakeRecord{}, false
	}
	return models.MistakeRecord{
		Type:      models.MistakeFOMOBuy,
		Timestamp: m.BuyTimestamp,
		Price:     m.BuyPrice,
		BuyRow:    m.BuyRow,
		Evidence: map[string]float64{
			"buyPrice": m.BuyPrice,
			"maxHigh":  maxHigh,
		},
		Description: fmt.Sprintf("Bought at %.2f within %.0f%% of the %d-day high %.2f",
			m.BuyPrice, r.FOMONearHighPct, r.FOMOWindowDays, maxHigh),
	}, true
}

func (mc *MistakeClassifier) momentumChase(m models.MatchedTrade, candles []models.Candle) (models.MistakeRecord, bool) {
	r := mc.rules.Mistakes
	prices := trailingDays(candles, m.BuyTimestamp, r.RSIPeriod)
	volumes := trailingDays(candles, m.BuyTimestamp, r.VolumePeriod)
	if len(prices) < r.RSIPeriod || len(volumes) < r.VolumePeriod {
		return models.MistakeRecord{}, false
	}

	ind, ok := mc.indicators(prices, volumes)
	if !ok || ind.close <= 0 {
		return models.MistakeRecord{}, false
	}
	nearClose := math.Abs(m.BuyPrice-ind.close)/ind.close*100 < r.EntryNearClosePct
	if !(ind.rsi > r.RSIOverbought && ind.close > ind.ema && ind.volume > r.VolumeSpikeMult*ind.volSMA && nearClose) {
		return models.MistakeRecord{}, false
	}
	return models.MistakeRecord{
		Type:        models.MistakeMomentumChase,
		Timestamp:   m.BuyTimestamp,
		Price:       m.BuyPrice,
		BuyRow:      m.BuyRow,
		Evidence:    ind.evidence(),
		Description: fmt.Sprintf("Bought into an overbought move (RSI %.1f) on a volume spike", ind.rsi),
	}, true
}

// trailingDays returns the candles within the given number of days up to and
// including at.
func trailingDays(candles []models.Candle, at time.Time, days int) []models.Candle {
	from := at.Add(-time.Duration(days) * 24 * time.Hour)
	var out []models.Candle
	for _, c := range candles {
		if !c.Time.Before(from) && !c.Time.After(at) {
			out = append(out, c)
		}
	}
	return out
}

// OversoldMarkers scans every pair's series for oversold, low-volume bars.
// Markers are grouped by pair in key order.
func (mc *MistakeClassifier) OversoldMarkers(candles models.CandleSet) []models.MarketMarker {
	markers := []models.MarketMarker{}
	for _, pair := range candles.Pairs() {
		markers = append(markers, mc.oversold(pair, candles[pair])...)
	}
	return markers
}

func (mc *MistakeClassifier) oversold(symbol string, candles []models.Candle) []models.MarketMarker {
	r := mc.rules.Mistakes
	var markers []models.MarketMarker
	window := r.VolumePeriod
	if r.RSIPeriod > window {
		window = r.RSIPeriod
	}
	for i := window - 1; i < len(candles); i++ {
		win := candles[i-window+1 : i+1]
		ind, ok := mc.indicators(win, win)
		if !ok {
			continue
		}
		if ind.rsi < r.RSIOversold && ind.close < ind.ema && ind.volume < r.VolumeDryMult*ind.volSMA {
			markers = append(markers, models.MarketMarker{
				Type:        models.MarkerOversoldLowActivity,
				Symbol:      symbol,
				Time:        candles[i].Time,
				Price:       ind.close,
				Evidence:    ind.evidence(),
				Description: fmt.Sprintf("Oversold (RSI %.1f) on thin volume", ind.rsi),
			})
		}
	}
	return markers
}

type indicatorSnapshot struct {
	rsi, ema, volSMA, close, volume float64
}

func (s indicatorSnapshot) evidence() map[string]float64 {
	return map[string]float64{
		"rsi":       utils.RoundFloat(s.rsi, 2),
		"ema":       utils.RoundFloat(s.ema, 2),
		"close":     s.close,
		"volume":    s.volume,
		"volumeSMA": utils.RoundFloat(s.volSMA, 2),
	}
}

// indicators evaluates RSI and EMA over the last RSIPeriod closes of prices
// and the volume SMA over the last VolumePeriod bars of volumeSeries. Both
// series end on the same bar.
func (mc *MistakeClassifier) indicators(prices, volumeSeries []models.Candle) (indicatorSnapshot, bool) {
	r := mc.rules.Mistakes
	if len(prices) == 0 || len(volumeSeries) == 0 {
		return indicatorSnapshot{}, false
	}
	closes := make([]float64, len(prices))
	for i, c := range prices {
		closes[i] = c.Close
	}
	volumes := make([]float64, len(volumeSeries))
	for i, c := range volumeSeries {
		volumes[i] = c.Volume
	}
	recent := utils.Last(closes, r.RSIPeriod)
	rsi, ok := utils.RSI(recent, r.RSIPeriod)
	if !ok {
		return indicatorSnapshot{}, false
	}
	ema, ok := utils.EMA(recent, r.RSIPeriod)
	if !ok {
		return indicatorSnapshot{}, false
	}
	volSMA, ok := utils.SMA(volumes, r.VolumePeriod)
	if !ok {
		return indicatorSnapshot{}, false
	}
	last := prices[len(prices)-1]
	return indicatorSnapshot{rsi: rsi, ema: ema, volSMA: volSMA, close: last.Close, volume: volumeSeries[len(volumeSeries)-1].Volume}, true
}

// Summarize counts and groups mistake records. The impulsive ratio relates
// panic sells and FOMO buys to the number of matched trades.
func Summarize(records []models.MistakeRecord, matchedCount int) models.MistakeSummary {
	s := models.MistakeSummary{
		Counts:  make(map[models.MistakeType]int),
		Grouped: make(map[models.MistakeType][]models.MistakeRecord),
	}
	for _, rec := range records {
		s.Counts[rec.Type]++
		s.Grouped[rec.Type] = append(s.Grouped[rec.Type], rec)
	}
	s.TotalMistakes = len(records)
	if matchedCount > 0 {
		impulsive := s.Counts[models.MistakePanicSell] + s.Counts[models.MistakeFOMOBuy]
		s.ImpulsiveRatio = utils.RoundFloat(float64(impulsive)/float64(matchedCount), 4)
	}
	return s
}
