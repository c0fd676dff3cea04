package utils

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// RoundFloat rounds a float64 to a specified number of decimal places,
// half away from zero. Non-finite values are returned unchanged.
func RoundFloat(val float64, precision int32) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	return decimal.NewFromFloat(val).Round(precision).InexactFloat64()
}

// QuartileBounds returns the Tukey fences q1-k*IQR and q3+k*IQR, where the
// quartiles are read from the sorted values at floor(n*0.25) and floor(n*0.75).
// ok is false when fewer than minObs values are available.
func QuartileBounds(values []float64, k float64, minObs int) (lower, upper float64, ok bool) {
	n := len(values)
	if n == 0 || n < minObs {
		return 0, 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 := sorted[int(math.Floor(float64(n)*0.25))]
	q3 := sorted[int(math.Floor(float64(n)*0.75))]
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr, true
}

// IsStatisticalOutlier reports whether v falls strictly outside the quartile
// fences of values. A value on a fence is not an outlier.
func IsStatisticalOutlier(v float64, values []float64, k float64, minObs int) (bool, float64, float64) {
	lower, upper, ok := QuartileBounds(values, k, minObs)
	if !ok || v == 0 {
		return false, lower, upper
	}
	return v < lower || v > upper, lower, upper
}

// MeanStdDev returns the population mean and standard deviation.
func MeanStdDev(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		std += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(std / float64(len(values)))
}
