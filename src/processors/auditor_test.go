package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/username/tradelens/src/models"
)

func auditorWithPrices(prices ...float64) *QualityAuditor {
	drafts := make([]models.TradeDraft, len(prices))
	for i, p := range prices {
		drafts[i] = models.TradeDraft{Price: p}
	}
	return NewQualityAuditor(testRules(), drafts)
}

func TestAudit_OutlierBoundary(t *testing.T) {
	a := auditorWithPrices(10, 20, 30, 40, 50, 60, 70, 80)

	onFence := a.Audit(trade(1, models.SideBuy, day(0), 130, 1, 0), nil, nil)
	assert.NotContains(t, codes(onFence), models.CodeStatisticalOutlier)

	above := a.Audit(trade(1, models.SideBuy, day(0), 131, 1, 0), nil, nil)
	assert.Contains(t, codes(above), models.CodeStatisticalOutlier)
}

func TestAudit_TooFewObservations(t *testing.T) {
	a := auditorWithPrices(10, 20, 30, 40)
	diags := a.Audit(trade(1, models.SideBuy, day(0), 5000, 1, 0), nil, nil)
	assert.Empty(t, diags)
}

func TestAudit_ThresholdsIndependentOfIQR(t *testing.T) {
	a := auditorWithPrices(10, 20, 30, 40, 50, 60, 70, 80)
	diags := a.Audit(trade(1, models.SideBuy, day(0), 2_000_000, 1, 1500), nil, nil)

	got := codes(diags)
	assert.Contains(t, got, models.CodeStatisticalOutlier)
	assert.Contains(t, got, models.CodeThresholdOutlier)
	thresholdHits := 0
	for _, c := range got {
		if c == models.CodeThresholdOutlier {
			thresholdHits++
		}
	}
	assert.Equal(t, 2, thresholdHits, "price and fee caps both fire")
}

func TestAudit_MarketDeviation(t *testing.T) {
	a := auditorWithPrices()
	candles := []models.Candle{
		{Time: day(0), Close: 100},
		{Time: day(0).Add(12 * time.Hour), Close: 100},
		{Time: day(3), Close: 500},
	}

	far := a.Audit(trade(1, models.SideBuy, day(0), 120, 1, 0), nil, candles)
	assert.Equal(t, []string{models.CodeMarketPriceDeviation}, codes(far))

	near := a.Audit(trade(1, models.SideBuy, day(0), 105, 1, 0), nil, candles)
	assert.Empty(t, near)
}

func TestAudit_OrderingViolation(t *testing.T) {
	a := auditorWithPrices()
	prev := trade(1, models.SideBuy, day(2), 100, 1, 0)

	diags := a.Audit(trade(2, models.SideSell, day(1), 100, 1, 0), &prev, nil)
	assert.Equal(t, []string{models.CodeOrderingViolation}, codes(diags))
	assert.Equal(t, 2, diags[0].Row)

	diags = a.Audit(trade(2, models.SideSell, day(3), 100, 1, 0), &prev, nil)
	assert.Empty(t, diags)
}
