package synthesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/services/ensemble"
	"TradePulse/internal/services/indicators"
)

// ErrRejected means the chosen direction did not survive the final
// risk/reward and confidence gates. An ordinary no-signal outcome.
var ErrRejected = errors.New("signal rejected by risk gates")

const (
	StrategyName = "enhanced-mean-reversion"
	StrategyID   = "emr-v1"

	// Final acceptance gates, applied after the ensemble's own threshold.
	MinRiskReward = 1.2
	MinConfidence = 60.0

	DefaultTTL     = 24 * time.Hour
	DefaultRiskPct = 0.5
)

// Input carries everything one synthesis run needs. Closes/Highs/Lows/Volumes
// are the same window the snapshot and prediction were computed from.
type Input struct {
	Symbol    string
	Timeframe string

	Closes  []float64
	Highs   []float64
	Lows    []float64
	Volumes []float64

	Snapshot   models.TechnicalSnapshot
	Prediction *ensemble.Prediction

	Now time.Time
}

// Synthesizer turns an accepted ensemble prediction into a fully populated
// Signal, or rejects it at the final gates.
type Synthesizer struct {
	ttl time.Duration
}

func New(ttl time.Duration) *Synthesizer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Synthesizer{ttl: ttl}
}

// Synthesize computes levels, gates, scoring, rationale and regime for the
// predicted direction. Returns ErrRejected when the risk/reward ratio or
// confidence falls short; the caller records it as a skip, not a failure.
// LatencyMS is left zero for the caller to fill in.
func (s *Synthesizer) Synthesize(in Input) (*models.Signal, error) {
	pred := in.Prediction
	entry := in.Closes[len(in.Closes)-1]

	target, stop := Levels(pred.Direction, entry, in.Snapshot.ATR, pred.Confidence)

	risk := abs(entry - stop)
	reward := abs(target - entry)
	var rr float64
	if risk > 0 {
		rr = reward / risk
	}

	if rr < MinRiskReward || pred.Confidence < MinConfidence {
		return nil, fmt.Errorf("%s rr=%.2f confidence=%.1f: %w", in.Symbol, rr, pred.Confidence, ErrRejected)
	}

	conditions := MarketConditions(in.Closes, in.Snapshot.RSI, in.Snapshot.MACDHistogram)
	rationale := Rationale(in.Snapshot, pred.Direction, conditions)
	regime := ClassifyRegime(in.Closes, in.Volumes)

	// Placeholder estimates derived from confidence and risk/reward. Real
	// backtest numbers come from the explicit backtest operation, which is
	// too heavy to run inline on every evaluation.
	btWinRate := 0.55 + pred.Confidence/1000
	btProfitFactor := 1.5 + rr/10

	return &models.Signal{
		Symbol:              in.Symbol,
		Timeframe:           in.Timeframe,
		Direction:           pred.Direction,
		EntryPrice:          entry,
		TargetPrice:         target,
		StopLoss:            stop,
		Strategy:            StrategyName,
		StrategyID:          StrategyID,
		Confidence:          pred.Confidence,
		QualityScore:        QualityScore(pred.Confidence, rr),
		RiskRewardRatio:     rr,
		VolumeScore:         in.Snapshot.VolumeScore,
		TechnicalIndicators: encodeJSON(in.Snapshot),
		Rationale:           encodeJSON(rationale),
		Regime:              encodeJSON(regime),
		MarketConditions:    conditions,
		BTWinRate:           btWinRate,
		BTProfitFactor:      btProfitFactor,
		RiskPct:             DefaultRiskPct,
		IsActive:            true,
		ExpiresAt:           in.Now.Add(s.ttl),
		CreatedAt:           in.Now,
	}, nil
}

// Levels returns the target and stop prices for a direction. Both scale off
// the ATR expressed as a fraction of entry: the target multiplier grows with
// confidence (1.5 to 3.0) while the stop multiplier shrinks (1.5 down to
// 0.8), so higher-confidence signals reach further and stop tighter.
func Levels(direction models.Direction, entry, atr, confidence float64) (target, stop float64) {
	atrPct := 0.0
	if entry > 0 {
		atrPct = atr / entry
	}
	cm := confidence / 100.0
	targetMult := 1.5 + cm*1.5
	stopMult := 1.5 - cm*0.7

	if direction == models.DirectionLong {
		target = entry * (1 + atrPct*targetMult)
		stop = entry * (1 - atrPct*stopMult)
		return target, stop
	}
	target = entry * (1 - atrPct*targetMult)
	stop = entry * (1 + atrPct*stopMult)
	return target, stop
}

// QualityScore blends confidence and risk/reward into a 0-100 score, with a
// small bonus on top for unusually generous risk/reward.
func QualityScore(confidence, rr float64) float64 {
	q := confidence*0.7 + rr*10*0.3
	if q > 100 {
		q = 100
	}
	if q < 0 {
		q = 0
	}
	if rr > 2 {
		q += 5
	}
	return q
}

// MarketConditions tallies simple bullish and bearish votes from the 10-bar
// price trend, RSI extremes and the MACD histogram sign.
func MarketConditions(closes []float64, rsi, macdHistogram float64) string {
	if len(closes) < 10 {
		return "neutral"
	}

	trend := (closes[len(closes)-1] - closes[len(closes)-10]) / closes[len(closes)-10]

	var bullish, bearish int
	if trend > 0.02 {
		bullish++
	} else if trend < -0.02 {
		bearish++
	}
	if rsi > 70 {
		bearish++
	} else if rsi < 30 {
		bullish++
	}
	if macdHistogram > 0 {
		bullish++
	} else {
		bearish++
	}

	switch {
	case bullish > bearish:
		return "bullish"
	case bearish > bullish:
		return "bearish"
	default:
		return "neutral"
	}
}

// Rationale builds the human-readable explanation list. Factors are checked
// in a fixed priority order (RSI, band proximity, MACD, volume, overall
// conditions) and capped at three entries, with a generic directional
// fallback so the list is never empty.
func Rationale(snap models.TechnicalSnapshot, direction models.Direction, conditions string) []string {
	var out []string

	if direction == models.DirectionLong && snap.RSI < 40 {
		out = append(out, fmt.Sprintf("RSI at %.1f indicates oversold conditions, suggesting potential reversal", snap.RSI))
	} else if direction == models.DirectionShort && snap.RSI > 60 {
		out = append(out, fmt.Sprintf("RSI at %.1f indicates overbought conditions, suggesting potential correction", snap.RSI))
	}

	if direction == models.DirectionLong && snap.BBPosition < 0.3 {
		out = append(out, fmt.Sprintf("Price near lower Bollinger Band (%.1f%%), suggesting support level", snap.BBPosition*100))
	} else if direction == models.DirectionShort && snap.BBPosition > 0.7 {
		out = append(out, fmt.Sprintf("Price near upper Bollinger Band (%.1f%%), suggesting resistance level", snap.BBPosition*100))
	}

	if direction == models.DirectionLong && snap.MACDHistogram > 0 {
		out = append(out, "Positive MACD histogram showing bullish momentum")
	} else if direction == models.DirectionShort && snap.MACDHistogram < 0 {
		out = append(out, "Negative MACD histogram showing bearish momentum")
	}

	if snap.VolumeScore > 60 {
		out = append(out, fmt.Sprintf("Above-average volume (%.1f%%) increasing confidence in the move", snap.VolumeScore))
	}

	if direction == models.DirectionLong && conditions == "bullish" {
		out = append(out, "Overall bullish market conditions support upward movement")
	} else if direction == models.DirectionShort && conditions == "bearish" {
		out = append(out, "Overall bearish market conditions support downward movement")
	}

	if len(out) == 0 {
		if direction == models.DirectionLong {
			out = append(out, "Technical indicators suggest potential upward price movement")
		} else {
			out = append(out, "Technical indicators suggest potential downward price movement")
		}
	}

	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// ClassifyRegime buckets trend, volatility and liquidity by comparing short
// windows against longer baselines with fixed tolerance bands.
func ClassifyRegime(closes, volumes []float64) models.Regime {
	shortTrend := indicators.Mean(tail(closes, 5))
	longTrend := indicators.Mean(tail(closes, 20))
	trend := "sideways"
	if shortTrend > longTrend*1.005 {
		trend = "up"
	} else if shortTrend < longTrend*0.995 {
		trend = "down"
	}

	vol := "normal"
	recentVol := relStd(tail(closes, 10))
	historicalVol := relStd(tail(closes, 30))
	if recentVol > historicalVol*1.2 {
		vol = "high"
	} else if recentVol < historicalVol*0.8 {
		vol = "low"
	}

	liq := "normal"
	recentVolume := indicators.Mean(tail(volumes, 5))
	historicalVolume := indicators.Mean(tail(volumes, 20))
	if recentVolume > historicalVolume*1.2 {
		liq = "high"
	} else if recentVolume < historicalVolume*0.8 {
		liq = "low"
	}

	return models.Regime{Trend: trend, Vol: vol, Liquidity: liq}
}

// encodeJSON marshals values whose types are statically known to be
// serializable; a failure is a programming error, not a runtime condition.
func encodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("encode signal field: %v", err))
	}
	return string(data)
}

func relStd(xs []float64) float64 {
	mean := indicators.Mean(xs)
	if mean == 0 {
		return 0
	}
	return indicators.PopulationStd(xs, mean) / mean
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
