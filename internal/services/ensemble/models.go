package ensemble

import (
	"TradePulse/internal/domain/models"
	"TradePulse/internal/services/features"
)

var (
	_ SubModel = technicalModel{}
	_ SubModel = momentumModel{}
	_ SubModel = meanReversionModel{}
	_ SubModel = volatilityBreakoutModel{}
)

// technicalModel scores off RSI extremes, MACD histogram sign, and Bollinger
// position. Each rule pushes a direction onto a tally; the final direction is
// the majority of those pushes, the score is the accumulated rule weight
// clamped to [0,1].
type technicalModel struct{}

func (technicalModel) Name() string { return ModelTechnical }

func (technicalModel) Vote(_ features.Vector, snap models.TechnicalSnapshot) models.ModelVote {
	var score float64
	var pushes []models.Direction

	has := func(d models.Direction) bool {
		for _, p := range pushes {
			if p == d {
				return true
			}
		}
		return false
	}

	switch {
	case snap.RSI < 30:
		score += 0.4
		pushes = append(pushes, models.DirectionLong)
	case snap.RSI > 70:
		score += 0.4
		pushes = append(pushes, models.DirectionShort)
	case snap.RSI < 45:
		score += 0.2
		pushes = append(pushes, models.DirectionLong)
	case snap.RSI > 55:
		score += 0.2
		pushes = append(pushes, models.DirectionShort)
	}

	// MACD agrees with an existing push or seeds the tally; a conflicting
	// histogram sign costs a small penalty instead.
	if snap.MACDHistogram > 0 {
		if has(models.DirectionLong) || len(pushes) == 0 {
			score += 0.3
		} else {
			score -= 0.1
		}
		if !has(models.DirectionLong) {
			pushes = append(pushes, models.DirectionLong)
		}
	} else {
		if has(models.DirectionShort) || len(pushes) == 0 {
			score += 0.3
		} else {
			score -= 0.1
		}
		if !has(models.DirectionShort) {
			pushes = append(pushes, models.DirectionShort)
		}
	}

	if snap.BBPosition < 0.2 {
		if has(models.DirectionLong) {
			score += 0.3
		} else {
			score += 0.1
			pushes = append(pushes, models.DirectionLong)
		}
	} else if snap.BBPosition > 0.8 {
		if has(models.DirectionShort) {
			score += 0.3
		} else {
			score += 0.1
			pushes = append(pushes, models.DirectionShort)
		}
	}

	var longs, shorts int
	for _, p := range pushes {
		if p == models.DirectionLong {
			longs++
		} else {
			shorts++
		}
	}
	direction := models.DirectionShort
	if longs > shorts {
		direction = models.DirectionLong
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return models.ModelVote{Model: ModelTechnical, Score: score, Direction: direction}
}

// momentumModel scores sustained directional price change confirmed by
// volume or trend alignment.
type momentumModel struct{}

func (momentumModel) Name() string { return ModelMomentum }

func (momentumModel) Vote(v features.Vector, _ models.TechnicalSnapshot) models.ModelVote {
	change5 := v[features.PriceChange5]
	change10 := v[features.PriceChange10]
	volumeRatio := v[features.VolumeRatio]
	trend := v[features.TrendAlignment]

	var score float64
	var direction models.Direction

	switch {
	case change5 > 0.02 && change10 > 0.03 && volumeRatio > 1.2:
		score, direction = 0.8, models.DirectionLong
	case change5 < -0.02 && change10 < -0.03 && volumeRatio > 1.2:
		score, direction = 0.8, models.DirectionShort
	case change5 > 0.01 && trend > 0:
		score, direction = 0.6, models.DirectionLong
	case change5 < -0.01 && trend < 0:
		score, direction = 0.6, models.DirectionShort
	default:
		score = 0.3
		direction = models.DirectionShort
		if change5 > 0 {
			direction = models.DirectionLong
		}
	}

	return models.ModelVote{Model: ModelMomentum, Score: score, Direction: direction}
}

// meanReversionModel fades band extremes confirmed by RSI, discounted in
// high short-term volatility where reversion is less reliable.
type meanReversionModel struct{}

func (meanReversionModel) Name() string { return ModelMeanReversion }

func (meanReversionModel) Vote(v features.Vector, snap models.TechnicalSnapshot) models.ModelVote {
	bbPos := v[features.BBPosition]
	volatility := v[features.Volatility5]

	var score float64
	var direction models.Direction

	switch {
	case bbPos < 0.1 && snap.RSI < 30:
		score, direction = 0.9, models.DirectionLong
	case bbPos > 0.9 && snap.RSI > 70:
		score, direction = 0.9, models.DirectionShort
	case bbPos < 0.3 && snap.RSI < 40:
		score, direction = 0.6, models.DirectionLong
	case bbPos > 0.7 && snap.RSI > 60:
		score, direction = 0.6, models.DirectionShort
	default:
		score = 0.2
		direction = models.DirectionShort
		if bbPos < 0.5 {
			direction = models.DirectionLong
		}
	}

	if volatility > 0.05 {
		score *= 0.7
	}

	return models.ModelVote{Model: ModelMeanReversion, Score: score, Direction: direction}
}

// volatilityBreakoutModel looks for a tight band plus a volume surge, then
// follows last-bar momentum out of the consolidation.
type volatilityBreakoutModel struct{}

func (volatilityBreakoutModel) Name() string { return ModelVolatilityBreakout }

func (volatilityBreakoutModel) Vote(v features.Vector, _ models.TechnicalSnapshot) models.ModelVote {
	bbWidth := v[features.BBWidth]
	volumeRatio := v[features.VolumeRatio]
	bbPos := v[features.BBPosition]
	momentum := v[features.Momentum]

	var score float64
	var direction models.Direction

	if bbWidth < 0.02 && volumeRatio > 1.5 {
		switch {
		case bbPos > 0.7 && momentum > 0:
			score, direction = 0.85, models.DirectionLong
		case bbPos < 0.3 && momentum < 0:
			score, direction = 0.85, models.DirectionShort
		default:
			score = 0.4
			direction = models.DirectionShort
			if momentum > 0 {
				direction = models.DirectionLong
			}
		}
	} else {
		score = 0.3
		direction = models.DirectionShort
		if bbPos > 0.5 {
			direction = models.DirectionLong
		}
	}

	return models.ModelVote{Model: ModelVolatilityBreakout, Score: score, Direction: direction}
}
