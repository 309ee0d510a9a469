package indicators

import (
	"math"
	"testing"
)

func constSeries(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRSIShortSeriesNeutral(t *testing.T) {
	for n := 1; n < 15; n++ {
		prices := make([]float64, n)
		for i := range prices {
			prices[i] = 100 + float64(i)
		}
		if got := RSI(prices, DefaultRSIPeriod); got != 50.0 {
			t.Fatalf("RSI of %d prices = %v, want 50", n, got)
		}
	}
}

func TestRSIAllGains(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	if got := RSI(prices, DefaultRSIPeriod); got != 100.0 {
		t.Fatalf("RSI with no losses = %v, want 100", got)
	}
}

func TestRSIAllLosses(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}
	got := RSI(prices, DefaultRSIPeriod)
	if got != 0 {
		t.Fatalf("RSI with no gains = %v, want 0", got)
	}
}

func TestRSIOversoldOnDecline(t *testing.T) {
	// Monotonically decreasing series must read deeply oversold.
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100 - 1.2*float64(i)
	}
	if got := RSI(prices, DefaultRSIPeriod); got >= 30 {
		t.Fatalf("RSI on steady decline = %v, want < 30", got)
	}
}

func TestBollingerFlatSeriesCollapses(t *testing.T) {
	prices := constSeries(100, 100)
	lower, middle, upper := BollingerBands(prices, DefaultBBPeriod, DefaultBBStdDev)
	if lower != 100 || middle != 100 || upper != 100 {
		t.Fatalf("bands on flat series = (%v, %v, %v), want all 100", lower, middle, upper)
	}
}

func TestBollingerShortSeriesDegenerate(t *testing.T) {
	prices := []float64{98, 99, 101}
	lower, middle, upper := BollingerBands(prices, DefaultBBPeriod, DefaultBBStdDev)
	if lower != 101 || middle != 101 || upper != 101 {
		t.Fatalf("short-series bands = (%v, %v, %v), want last price", lower, middle, upper)
	}
}

func TestBollingerOrdering(t *testing.T) {
	prices := []float64{
		100, 102, 99, 101, 103, 98, 100, 104, 97, 102,
		101, 99, 103, 100, 98, 105, 96, 101, 102, 100,
	}
	lower, middle, upper := BollingerBands(prices, DefaultBBPeriod, DefaultBBStdDev)
	if !(lower < middle && middle < upper) {
		t.Fatalf("band ordering violated: (%v, %v, %v)", lower, middle, upper)
	}
	sma := Mean(prices)
	if math.Abs(middle-sma) > 1e-9 {
		t.Fatalf("middle band = %v, want SMA %v", middle, sma)
	}
}

func TestMACDSimplifiedEstimator(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)*0.5
	}
	line, signal, hist := MACD(prices, 12, 26, 9)

	wantLine := prices[len(prices)-1] - Mean(prices[len(prices)-26:])
	if math.Abs(line-wantLine) > 1e-9 {
		t.Fatalf("macd line = %v, want %v", line, wantLine)
	}
	if math.Abs(signal-0.9*line) > 1e-9 {
		t.Fatalf("signal line = %v, want 0.9*line", signal)
	}
	if math.Abs(hist-(line-signal)) > 1e-9 {
		t.Fatalf("histogram = %v, want line-signal", hist)
	}
}

func TestMACDShortSeriesZero(t *testing.T) {
	line, signal, hist := MACD(constSeries(100, 10), 12, 26, 9)
	if line != 0 || signal != 0 || hist != 0 {
		t.Fatalf("short-series MACD = (%v, %v, %v), want zeros", line, signal, hist)
	}
}

func TestVolumePatternScoreNeutralWhenShort(t *testing.T) {
	if got := VolumePatternScore(constSeries(1000, 9)); got != 50.0 {
		t.Fatalf("score with 9 samples = %v, want 50", got)
	}
}

func TestVolumePatternScoreSurge(t *testing.T) {
	volumes := constSeries(1000, 20)
	for i := 15; i < 20; i++ {
		volumes[i] = 3000
	}
	got := VolumePatternScore(volumes)
	if got <= 50 {
		t.Fatalf("score on volume surge = %v, want > 50", got)
	}
}

func TestVolumePatternScoreClamped(t *testing.T) {
	volumes := constSeries(100, 20)
	for i := 15; i < 20; i++ {
		volumes[i] = 100000
	}
	if got := VolumePatternScore(volumes); got != 100 {
		t.Fatalf("score = %v, want clamp at 100", got)
	}
}

func TestATRMeanSpread(t *testing.T) {
	highs := constSeries(105, 25)
	lows := constSeries(100, 25)
	if got := ATR(highs, lows, DefaultATRPeriod); math.Abs(got-5) > 1e-9 {
		t.Fatalf("ATR = %v, want 5", got)
	}
}

func TestATREmpty(t *testing.T) {
	if got := ATR(nil, nil, DefaultATRPeriod); got != 0 {
		t.Fatalf("ATR on empty input = %v, want 0", got)
	}
}

func TestBBPositionDegenerateBand(t *testing.T) {
	if got := BBPosition(100, 100, 100); got != 0.5 {
		t.Fatalf("position on flat band = %v, want 0.5", got)
	}
}

func TestBBPositionBounds(t *testing.T) {
	if got := BBPosition(95, 95, 105); got != 0 {
		t.Fatalf("position at lower band = %v, want 0", got)
	}
	if got := BBPosition(105, 95, 105); got != 1 {
		t.Fatalf("position at upper band = %v, want 1", got)
	}
	if got := BBPosition(100, 95, 105); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("midband position = %v, want 0.5", got)
	}
}
