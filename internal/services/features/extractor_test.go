package features

import (
	"math"
	"testing"

	"TradePulse/internal/domain/models"
)

func series(vals ...float64) []float64 { return vals }

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestExtractShortWindowNeutralDefaults(t *testing.T) {
	closes := series(100, 101, 102)
	v := Extract(closes, closes, closes, series(1000, 1000, 1000), models.TechnicalSnapshot{})

	if v[PriceChange5] != 0 || v[PriceChange10] != 0 || v[PriceChange20] != 0 {
		t.Fatalf("price changes on short window = %v/%v/%v, want zeros",
			v[PriceChange5], v[PriceChange10], v[PriceChange20])
	}
	if v[Volatility5] != 0 || v[Volatility10] != 0 {
		t.Fatalf("volatility on short window = %v/%v, want zeros", v[Volatility5], v[Volatility10])
	}
	if v[VolumeRatio] != 1 {
		t.Fatalf("volume ratio default = %v, want 1", v[VolumeRatio])
	}
	if v[VolumeTrend] != 0 {
		t.Fatalf("volume trend default = %v, want 0", v[VolumeTrend])
	}
}

func TestExtractPriceChanges(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	v := Extract(closes, closes, closes, repeat(1000, 25), models.TechnicalSnapshot{})

	want := (closes[24] - closes[20]) / closes[20]
	if math.Abs(v[PriceChange5]-want) > 1e-12 {
		t.Fatalf("price_change_5 = %v, want %v", v[PriceChange5], want)
	}
	want = (closes[24] - closes[5]) / closes[5]
	if math.Abs(v[PriceChange20]-want) > 1e-12 {
		t.Fatalf("price_change_20 = %v, want %v", v[PriceChange20], want)
	}
	if v[TrendAlignment] != 1 {
		t.Fatalf("trend alignment on rising series = %v, want 1", v[TrendAlignment])
	}
	wantMomentum := (closes[24] - closes[23]) / closes[24]
	if math.Abs(v[Momentum]-wantMomentum) > 1e-12 {
		t.Fatalf("momentum = %v, want %v", v[Momentum], wantMomentum)
	}
}

func TestExtractVolumeFeatures(t *testing.T) {
	closes := repeat(100, 20)
	volumes := repeat(1000, 20)
	for i := 15; i < 20; i++ {
		volumes[i] = 3000
	}
	v := Extract(closes, closes, closes, volumes, models.TechnicalSnapshot{})

	base := (15*1000.0 + 5*3000.0) / 20
	wantRatio := 3000 / base
	if math.Abs(v[VolumeRatio]-wantRatio) > 1e-12 {
		t.Fatalf("volume_ratio = %v, want %v", v[VolumeRatio], wantRatio)
	}
	wantTrend := (3000.0 - 1000.0) / 1000.0
	if math.Abs(v[VolumeTrend]-wantTrend) > 1e-12 {
		t.Fatalf("volume_trend = %v, want %v", v[VolumeTrend], wantTrend)
	}
}

func TestExtractIndicatorDerivedFields(t *testing.T) {
	closes := repeat(100, 20)
	snap := models.TechnicalSnapshot{
		RSI:           75,
		BBLower:       95,
		BBMiddle:      100,
		BBUpper:       105,
		MACDLine:      2,
		MACDHistogram: 0.2,
	}
	v := Extract(closes, closes, closes, repeat(1000, 20), snap)

	if v[RSINormalized] != 0.75 {
		t.Fatalf("rsi_normalized = %v, want 0.75", v[RSINormalized])
	}
	if v[RSIOverbought] != 1 || v[RSIOversold] != 0 {
		t.Fatalf("rsi flags = %v/%v, want 1/0", v[RSIOverbought], v[RSIOversold])
	}
	if v[MACDCross] != 1 {
		t.Fatalf("macd_cross = %v, want 1 for positive histogram", v[MACDCross])
	}
	wantStrength := 0.2 / (2 + 1e-6)
	if math.Abs(v[MACDStrength]-wantStrength) > 1e-12 {
		t.Fatalf("macd_strength = %v, want %v", v[MACDStrength], wantStrength)
	}
	if math.Abs(v[BBPosition]-0.5) > 1e-12 {
		t.Fatalf("bb_position = %v, want 0.5", v[BBPosition])
	}
	if math.Abs(v[BBWidth]-0.1) > 1e-12 {
		t.Fatalf("bb_width = %v, want 0.1", v[BBWidth])
	}
}

func TestExtractDegenerateBandNeutralPosition(t *testing.T) {
	closes := repeat(100, 20)
	snap := models.TechnicalSnapshot{BBLower: 100, BBUpper: 100}
	v := Extract(closes, closes, closes, repeat(1000, 20), snap)
	if v[BBPosition] != 0.5 {
		t.Fatalf("bb_position on flat band = %v, want 0.5", v[BBPosition])
	}
	if v[MACDCross] != -1 {
		t.Fatalf("macd_cross with zero histogram = %v, want -1", v[MACDCross])
	}
}
