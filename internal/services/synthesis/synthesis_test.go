package synthesis

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/services/ensemble"
)

func window(base float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base
	}
	return out
}

func TestLevelsStraddleEntry(t *testing.T) {
	target, stop := Levels(models.DirectionLong, 100, 2, 80)
	if !(stop < 100 && 100 < target) {
		t.Fatalf("long levels do not straddle entry: stop=%v target=%v", stop, target)
	}

	target, stop = Levels(models.DirectionShort, 100, 2, 80)
	if !(target < 100 && 100 < stop) {
		t.Fatalf("short levels do not straddle entry: stop=%v target=%v", stop, target)
	}
}

func TestLevelsConfidenceScaling(t *testing.T) {
	// Higher confidence reaches further and stops tighter.
	loTarget, loStop := Levels(models.DirectionLong, 100, 2, 65)
	hiTarget, hiStop := Levels(models.DirectionLong, 100, 2, 95)
	if hiTarget <= loTarget {
		t.Fatalf("target did not grow with confidence: %v vs %v", hiTarget, loTarget)
	}
	if hiStop <= loStop {
		t.Fatalf("stop did not tighten with confidence: %v vs %v", hiStop, loStop)
	}
}

func TestSynthesizeRejectsZeroATR(t *testing.T) {
	in := Input{
		Symbol:    "BTC/USDT",
		Timeframe: "1h",
		Closes:    window(100, 50),
		Volumes:   window(1000, 50),
		Snapshot:  models.TechnicalSnapshot{ATR: 0},
		Prediction: &ensemble.Prediction{
			Direction:  models.DirectionLong,
			Confidence: 80,
		},
		Now: time.Now(),
	}
	_, err := New(0).Synthesize(in)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
}

func TestSynthesizeRejectsLowConfidence(t *testing.T) {
	in := Input{
		Symbol:    "BTC/USDT",
		Timeframe: "1h",
		Closes:    window(100, 50),
		Volumes:   window(1000, 50),
		Snapshot:  models.TechnicalSnapshot{ATR: 2},
		Prediction: &ensemble.Prediction{
			Direction:  models.DirectionLong,
			Confidence: 55,
		},
		Now: time.Now(),
	}
	_, err := New(0).Synthesize(in)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
}

func TestSynthesizeEmitsSignal(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in := Input{
		Symbol:    "ETH/USDT",
		Timeframe: "1h",
		Closes:    window(100, 50),
		Highs:     window(101, 50),
		Lows:      window(99, 50),
		Volumes:   window(1000, 50),
		Snapshot: models.TechnicalSnapshot{
			RSI:           30,
			BBPosition:    0.1,
			MACDHistogram: 0.5,
			VolumeScore:   70,
			ATR:           2,
		},
		Prediction: &ensemble.Prediction{
			Direction:  models.DirectionLong,
			Confidence: 80,
		},
		Now: now,
	}

	sig, err := New(0).Synthesize(in)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	if sig.Strategy != StrategyName || sig.StrategyID != StrategyID {
		t.Fatalf("strategy = %s/%s", sig.Strategy, sig.StrategyID)
	}
	if sig.RiskRewardRatio < MinRiskReward {
		t.Fatalf("emitted signal with rr %v below %v", sig.RiskRewardRatio, MinRiskReward)
	}
	if !(sig.StopLoss < sig.EntryPrice && sig.EntryPrice < sig.TargetPrice) {
		t.Fatalf("long levels do not straddle entry: %v / %v / %v", sig.StopLoss, sig.EntryPrice, sig.TargetPrice)
	}
	if !sig.IsActive {
		t.Fatal("new signal must be active")
	}
	if got := sig.ExpiresAt.Sub(sig.CreatedAt); got != DefaultTTL {
		t.Fatalf("ttl = %v, want %v", got, DefaultTTL)
	}

	var rationale []string
	if err := json.Unmarshal([]byte(sig.Rationale), &rationale); err != nil {
		t.Fatalf("rationale is not a JSON string list: %v", err)
	}
	if len(rationale) == 0 || len(rationale) > 3 {
		t.Fatalf("rationale has %d entries, want 1-3", len(rationale))
	}

	var regime map[string]string
	if err := json.Unmarshal([]byte(sig.Regime), &regime); err != nil {
		t.Fatalf("regime is not a JSON object: %v", err)
	}
	for _, key := range []string{"trend", "vol", "liq"} {
		if _, ok := regime[key]; !ok {
			t.Fatalf("regime missing key %q: %v", key, regime)
		}
	}
}

func TestQualityScoreBonus(t *testing.T) {
	got := QualityScore(70, 2.5)
	want := 70*0.7 + 2.5*10*0.3 + 5
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("quality = %v, want %v", got, want)
	}

	if got := QualityScore(70, 1.5); math.Abs(got-(70*0.7+1.5*10*0.3)) > 1e-9 {
		t.Fatalf("quality without bonus = %v", got)
	}
}

func TestRationalePriorityAndCap(t *testing.T) {
	snap := models.TechnicalSnapshot{
		RSI:           25,
		BBPosition:    0.1,
		MACDHistogram: 1,
		VolumeScore:   80,
	}
	got := Rationale(snap, models.DirectionLong, "bullish")
	if len(got) != 3 {
		t.Fatalf("rationale has %d entries, want cap of 3", len(got))
	}
	if !strings.HasPrefix(got[0], "RSI at 25.0") {
		t.Fatalf("first entry should be the RSI factor, got %q", got[0])
	}
	if !strings.Contains(got[1], "lower Bollinger Band") {
		t.Fatalf("second entry should be band proximity, got %q", got[1])
	}
}

func TestRationaleGenericFallback(t *testing.T) {
	snap := models.TechnicalSnapshot{RSI: 50, BBPosition: 0.5, MACDHistogram: -1, VolumeScore: 50}
	got := Rationale(snap, models.DirectionLong, "neutral")
	if len(got) != 1 {
		t.Fatalf("fallback rationale has %d entries, want 1", len(got))
	}
	if !strings.Contains(got[0], "upward") {
		t.Fatalf("fallback should name the direction, got %q", got[0])
	}
}

func TestClassifyRegimeBuckets(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	for i := 25; i < 30; i++ {
		closes[i] = 110
	}
	got := ClassifyRegime(closes, window(1000, 30))
	want := models.Regime{Trend: "up", Vol: "high", Liquidity: "normal"}
	if got != want {
		t.Fatalf("regime = %+v, want %+v", got, want)
	}

	flat := ClassifyRegime(window(100, 30), window(1000, 30))
	if flat.Trend != "sideways" || flat.Liquidity != "normal" {
		t.Fatalf("flat regime = %+v", flat)
	}
}

func TestMarketConditionsVotes(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	if got := MarketConditions(closes, 50, 1); got != "bullish" {
		t.Fatalf("conditions = %s, want bullish", got)
	}
	if got := MarketConditions(window(100, 5), 50, 1); got != "neutral" {
		t.Fatalf("short-window conditions = %s, want neutral", got)
	}
}
