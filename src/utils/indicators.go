package utils

// RSI computes the relative strength index over the first period closes.
// Gains and losses are averaged over period, and a zero average loss is
// floored at 1 so a rising series never divides by zero. ok is false when
// there are fewer than period closes or the window never moves.
func RSI(closes []float64, period int) (float64, bool) {
	if period < 2 || len(closes) < period {
		return 0, false
	}
	var gains, losses float64
	for i := 1; i < period; i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}
	if gains == 0 && losses == 0 {
		return 0, false
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		avgLoss = 1
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// EMA folds every supplied close into an exponential moving average seeded
// with the first one, using k = 2/(period+1).
func EMA(closes []float64, period int) (float64, bool) {
	if period < 1 || len(closes) < period {
		return 0, false
	}
	k := 2 / float64(period+1)
	ema := closes[0]
	for _, c := range closes[1:] {
		ema = c*k + ema*(1-k)
	}
	return ema, true
}

// SMA is the mean of the last period values.
func SMA(values []float64, period int) (float64, bool) {
	if period < 1 || len(values) < period {
		return 0, false
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// Last returns the trailing n values, or all of them when fewer exist.
func Last(values []float64, n int) []float64 {
	if n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}
