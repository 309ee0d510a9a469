package features

import (
	"math"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/services/indicators"
)

// NumFeatures is the fixed width of the feature vector.
const NumFeatures = 16

// Vector is the fixed-order numeric feature array derived from a candle
// window plus a TechnicalSnapshot. The positional layout is a contract: the
// ensemble sub-models index into it, so order and semantics must stay in
// sync with the index constants below.
type Vector [NumFeatures]float64

// Feature indices. Keep in sync with Extract.
const (
	PriceChange5 = iota
	PriceChange10
	PriceChange20
	Volatility5
	Volatility10
	VolumeRatio
	VolumeTrend
	BBPosition
	BBWidth
	RSINormalized
	RSIOverbought
	RSIOversold
	MACDCross
	MACDStrength
	TrendAlignment
	Momentum
)

// Extract builds the feature vector for the latest bar of the window.
// Every derived ratio guards division by zero by substituting a neutral
// value: 0 for changes and trends, 1 for ratios.
func Extract(closes, highs, lows, volumes []float64, snap models.TechnicalSnapshot) Vector {
	var v Vector
	price := closes[len(closes)-1]

	v[PriceChange5] = pctChange(closes, 5)
	v[PriceChange10] = pctChange(closes, 10)
	v[PriceChange20] = pctChange(closes, 20)

	v[Volatility5] = relVolatility(closes, 5)
	v[Volatility10] = relVolatility(closes, 10)

	v[VolumeRatio] = 1
	if len(volumes) >= 20 {
		base := indicators.Mean(volumes[len(volumes)-20:])
		if base > 0 {
			v[VolumeRatio] = volumes[len(volumes)-1] / base
		}
	}
	if len(volumes) >= 20 {
		hist := indicators.Mean(volumes[len(volumes)-20 : len(volumes)-5])
		if hist > 0 {
			recent := indicators.Mean(volumes[len(volumes)-5:])
			v[VolumeTrend] = (recent - hist) / hist
		}
	}

	v[BBPosition] = indicators.BBPosition(price, snap.BBLower, snap.BBUpper)
	if snap.BBMiddle > 0 {
		v[BBWidth] = (snap.BBUpper - snap.BBLower) / snap.BBMiddle
	}

	v[RSINormalized] = snap.RSI / 100.0
	if snap.RSI > 70 {
		v[RSIOverbought] = 1
	}
	if snap.RSI < 30 {
		v[RSIOversold] = 1
	}

	v[MACDCross] = -1
	if snap.MACDHistogram > 0 {
		v[MACDCross] = 1
	}
	v[MACDStrength] = math.Abs(snap.MACDHistogram) / (math.Abs(snap.MACDLine) + 1e-6)

	sma5, sma20 := price, price
	if len(closes) >= 5 {
		sma5 = indicators.Mean(closes[len(closes)-5:])
	}
	if len(closes) >= 20 {
		sma20 = indicators.Mean(closes[len(closes)-20:])
	}
	v[TrendAlignment] = -1
	if sma5 > sma20 {
		v[TrendAlignment] = 1
	}

	if len(closes) >= 2 && price != 0 {
		v[Momentum] = (price - closes[len(closes)-2]) / price
	}

	return v
}

// pctChange returns the relative change against the price lookback bars
// from the end, 0 when the window is too short or the base is zero.
func pctChange(closes []float64, lookback int) float64 {
	if len(closes) < lookback {
		return 0
	}
	base := closes[len(closes)-lookback]
	if base == 0 {
		return 0
	}
	return (closes[len(closes)-1] - base) / base
}

// relVolatility returns population std over mean for the trailing window,
// 0 when the window is too short.
func relVolatility(closes []float64, window int) float64 {
	if len(closes) < window {
		return 0
	}
	w := closes[len(closes)-window:]
	mean := indicators.Mean(w)
	if mean == 0 {
		return 0
	}
	return indicators.PopulationStd(w, mean) / mean
}
