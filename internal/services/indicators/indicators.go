package indicators

import "math"

// Pure indicator math over price/volume series. All functions are
// deterministic, side-effect free, and tolerant of short inputs: when a
// series is shorter than the indicator's window they return a neutral
// default instead of failing, so callers can treat "not enough history" as
// an ordinary no-signal condition.

const (
	DefaultRSIPeriod = 14
	DefaultBBPeriod  = 20
	DefaultBBStdDev  = 2.0
	DefaultATRPeriod = 20
)

// RSI computes the Relative Strength Index over the trailing period deltas
// using average gain/loss. Returns 50 (neutral) when fewer than period+1
// prices are available, and 100 when the average loss is exactly zero.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50.0
	}

	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses += -delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// BollingerBands returns (lower, middle, upper) as SMA ± stdDev multiples of
// the population standard deviation over the trailing period prices. With
// fewer than period prices the band collapses to the last price rather than
// erroring out.
func BollingerBands(prices []float64, period int, stdDev float64) (lower, middle, upper float64) {
	if len(prices) < period {
		last := prices[len(prices)-1]
		return last, last, last
	}

	window := prices[len(prices)-period:]
	sma := Mean(window)
	std := PopulationStd(window, sma)

	return sma - stdDev*std, sma, sma + stdDev*std
}

// MACD returns (line, signal, histogram) using a deliberately simplified
// estimator carried over from the original strategy for behavioral parity:
// the fast EMA is approximated by the last price, the slow EMA by the mean
// of the trailing slow window, and the signal line is 0.9x the MACD line.
// This is not textbook MACD; do not "fix" it without revalidating the
// thresholds tuned against it.
func MACD(prices []float64, fast, slow, signal int) (line, signalLine, histogram float64) {
	if len(prices) < slow {
		return 0, 0, 0
	}

	emaFast := prices[len(prices)-1]
	emaSlow := Mean(prices[len(prices)-slow:])

	line = emaFast - emaSlow
	signalLine = line * 0.9
	histogram = line - signalLine
	return line, signalLine, histogram
}

// VolumePatternScore compares the mean of the last 5 volumes against the
// mean of the 15 before them and rescales the ratio to a 0-100 score.
// Returns 50 (neutral) with fewer than 10 samples or a zero baseline.
func VolumePatternScore(volumes []float64) float64 {
	if len(volumes) < 10 {
		return 50.0
	}

	recent := Mean(tail(volumes, 5))
	historical := Mean(slice(volumes, -20, -5))
	if historical == 0 {
		return 50.0
	}

	ratio := recent / historical
	score := (ratio - 0.5) * 100
	return math.Min(100, math.Max(0, score))
}

// ATR computes the mean high-low spread over the trailing period bars.
// Highs and lows must be aligned; the shorter of the two bounds the window.
func ATR(highs, lows []float64, period int) float64 {
	n := len(highs)
	if len(lows) < n {
		n = len(lows)
	}
	if n == 0 {
		return 0
	}
	if n > period {
		highs = highs[len(highs)-period:]
		lows = lows[len(lows)-period:]
		n = period
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += highs[len(highs)-n+i] - lows[len(lows)-n+i]
	}
	return sum / float64(n)
}

// BBPosition returns the price's relative location between the lower and
// upper band in [0,1], 0.5 when the band is degenerate.
func BBPosition(price, lower, upper float64) float64 {
	if upper == lower {
		return 0.5
	}
	return (price - lower) / (upper - lower)
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// PopulationStd returns the population standard deviation around mean.
func PopulationStd(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(xs)))
}

// tail returns the last n elements (the whole slice if shorter).
func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

// slice indexes python-style with negative offsets from the end, clamped.
func slice(xs []float64, from, to int) []float64 {
	n := len(xs)
	if from < 0 {
		from = n + from
	}
	if to < 0 {
		to = n + to
	}
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return nil
	}
	return xs[from:to]
}
