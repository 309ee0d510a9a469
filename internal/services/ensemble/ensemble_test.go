package ensemble

import (
	"testing"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/services/features"
)

func TestPredictStrongLongConsensus(t *testing.T) {
	snap := models.TechnicalSnapshot{
		RSI:           25,
		MACDHistogram: 0.5,
		BBPosition:    0.05,
	}
	var v features.Vector
	v[features.PriceChange5] = 0.015
	v[features.TrendAlignment] = 1
	v[features.BBPosition] = 0.05
	v[features.Volatility5] = 0.01
	v[features.BBWidth] = 0.05
	v[features.VolumeRatio] = 1.0

	pred := New().Predict(v, snap)
	if pred == nil {
		t.Fatal("expected a prediction, got nil")
	}
	if pred.Direction != models.DirectionLong {
		t.Fatalf("direction = %s, want LONG", pred.Direction)
	}
	if pred.Confidence < MinConfidence {
		t.Fatalf("confidence = %v, want >= %v", pred.Confidence, MinConfidence)
	}
	if len(pred.Votes) != 4 {
		t.Fatalf("votes = %d, want 4", len(pred.Votes))
	}
}

func TestPredictAmbiguousScoresNoSignal(t *testing.T) {
	// Neutral indicators push the weighted long and short scores inside the
	// ambiguity band, which must yield no prediction at all.
	snap := models.TechnicalSnapshot{
		RSI:           50,
		MACDHistogram: -0.0001,
		BBPosition:    0.5,
	}
	var v features.Vector
	v[features.PriceChange5] = 0.001
	v[features.VolumeRatio] = 1.0
	v[features.BBPosition] = 0.45
	v[features.BBWidth] = 0.05

	if pred := New().Predict(v, snap); pred != nil {
		t.Fatalf("expected nil on ambiguous votes, got %+v", pred)
	}
}

func TestPredictLowConfidenceRejected(t *testing.T) {
	// Clear short lean but only weak scores behind it: separation clears the
	// ambiguity band while the winning confidence stays under the floor.
	snap := models.TechnicalSnapshot{
		RSI:           58,
		MACDHistogram: -0.2,
		BBPosition:    0.6,
	}
	var v features.Vector
	v[features.PriceChange5] = -0.015
	v[features.TrendAlignment] = -1
	v[features.VolumeRatio] = 1.0
	v[features.BBPosition] = 0.6
	v[features.BBWidth] = 0.05

	if pred := New().Predict(v, snap); pred != nil {
		t.Fatalf("expected nil on low confidence, got %+v", pred)
	}
}

func TestTechnicalModelAlignedRules(t *testing.T) {
	snap := models.TechnicalSnapshot{RSI: 25, MACDHistogram: 1, BBPosition: 0.1}
	vote := technicalModel{}.Vote(features.Vector{}, snap)
	if vote.Direction != models.DirectionLong {
		t.Fatalf("direction = %s, want LONG", vote.Direction)
	}
	if vote.Score != 1.0 {
		t.Fatalf("score = %v, want clamp at 1.0", vote.Score)
	}
}

func TestTechnicalModelConflictingMACDPenalty(t *testing.T) {
	// Oversold RSI pushes long, a negative histogram disagrees: the penalty
	// applies and the directional tally ties, which resolves short.
	snap := models.TechnicalSnapshot{RSI: 25, MACDHistogram: -1, BBPosition: 0.5}
	vote := technicalModel{}.Vote(features.Vector{}, snap)
	if diff := vote.Score - 0.3; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("score = %v, want 0.3 after penalty", vote.Score)
	}
	if vote.Direction != models.DirectionShort {
		t.Fatalf("direction = %s, want SHORT on tie", vote.Direction)
	}
}

func TestMomentumModelStrongMove(t *testing.T) {
	var v features.Vector
	v[features.PriceChange5] = 0.03
	v[features.PriceChange10] = 0.04
	v[features.VolumeRatio] = 1.5

	vote := momentumModel{}.Vote(v, models.TechnicalSnapshot{})
	if vote.Score != 0.8 || vote.Direction != models.DirectionLong {
		t.Fatalf("vote = %+v, want score 0.8 LONG", vote)
	}
}

func TestMeanReversionVolatilityDiscount(t *testing.T) {
	var v features.Vector
	v[features.BBPosition] = 0.05
	v[features.Volatility5] = 0.08

	vote := meanReversionModel{}.Vote(v, models.TechnicalSnapshot{RSI: 25})
	if vote.Direction != models.DirectionLong {
		t.Fatalf("direction = %s, want LONG", vote.Direction)
	}
	want := 0.9 * 0.7
	if diff := vote.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("score = %v, want %v after volatility discount", vote.Score, want)
	}
}

func TestVolatilityBreakoutUpside(t *testing.T) {
	var v features.Vector
	v[features.BBWidth] = 0.01
	v[features.VolumeRatio] = 2.0
	v[features.BBPosition] = 0.8
	v[features.Momentum] = 0.002

	vote := volatilityBreakoutModel{}.Vote(v, models.TechnicalSnapshot{})
	if vote.Score != 0.85 || vote.Direction != models.DirectionLong {
		t.Fatalf("vote = %+v, want score 0.85 LONG", vote)
	}
}
