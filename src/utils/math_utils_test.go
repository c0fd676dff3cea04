package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 4979.0, RoundFloat(4979.0000001, 2))
	assert.Equal(t, 1.01, RoundFloat(1.005, 2))
	assert.Equal(t, -2.35, RoundFloat(-2.345, 2))
	assert.Equal(t, 2.5, RoundFloat(2.46, 1))
}

func TestQuartileBounds(t *testing.T) {
	values := []float64{80, 10, 70, 20, 60, 30, 50, 40}

	lower, upper, ok := QuartileBounds(values, 1.5, 5)
	assert.True(t, ok)
	// q1 = sorted[2] = 30, q3 = sorted[6] = 70, IQR = 40
	assert.Equal(t, -30.0, lower)
	assert.Equal(t, 130.0, upper)
	assert.Equal(t, []float64{80, 10, 70, 20, 60, 30, 50, 40}, values, "input must not be reordered")

	_, _, ok = QuartileBounds(values[:4], 1.5, 5)
	assert.False(t, ok, "fewer than five observations skips the test")
}

func TestIsStatisticalOutlier_Boundary(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80}

	flagged, _, upper := IsStatisticalOutlier(130, values, 1.5, 5)
	assert.Equal(t, 130.0, upper)
	assert.False(t, flagged, "a value exactly on Q3+1.5*IQR is not flagged")

	flagged, _, _ = IsStatisticalOutlier(131, values, 1.5, 5)
	assert.True(t, flagged, "one unit above the fence is flagged")

	flagged, _, _ = IsStatisticalOutlier(-31, values, 1.5, 5)
	assert.True(t, flagged)

	flagged, _, _ = IsStatisticalOutlier(1000, values[:3], 1.5, 5)
	assert.False(t, flagged)
}

func TestMeanStdDev(t *testing.T) {
	mean, std := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, std)

	mean, std = MeanStdDev(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}
