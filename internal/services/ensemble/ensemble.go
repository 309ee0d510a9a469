package ensemble

import (
	"TradePulse/internal/domain/models"
	"TradePulse/internal/services/features"
)

// Model names. Weights are keyed by these and the vote breakdown in the
// prediction reports them verbatim.
const (
	ModelTechnical          = "technical"
	ModelMomentum           = "momentum"
	ModelMeanReversion      = "mean_reversion"
	ModelVolatilityBreakout = "volatility_breakout"
)

const (
	// AmbiguityBand is the minimum long/short weighted-score separation.
	// Anything closer means the models disagree and no direction is taken.
	AmbiguityBand = 0.15

	// MinConfidence rejects weak predictions before synthesis even runs.
	MinConfidence = 65.0
)

// SubModel scores one strategy family over the shared feature vector and
// indicator snapshot. Scores are in [0,1]; every model always names a
// direction, weak opinions just carry a low score.
type SubModel interface {
	Name() string
	Vote(v features.Vector, snap models.TechnicalSnapshot) models.ModelVote
}

// Prediction is the aggregated ensemble output for one evaluation.
type Prediction struct {
	Direction  models.Direction
	Confidence float64 // 0-100
	LongScore  float64
	ShortScore float64
	Votes      []models.ModelVote
}

// Ensemble combines a fixed set of sub-models by weighted vote.
type Ensemble struct {
	models  []SubModel
	weights map[string]float64
}

// New returns the production ensemble: four sub-models with fixed weights.
func New() *Ensemble {
	return &Ensemble{
		models: []SubModel{
			technicalModel{},
			momentumModel{},
			meanReversionModel{},
			volatilityBreakoutModel{},
		},
		weights: map[string]float64{
			ModelTechnical:          0.3,
			ModelMomentum:           0.3,
			ModelMeanReversion:      0.2,
			ModelVolatilityBreakout: 0.2,
		},
	}
}

// Predict runs every sub-model and aggregates the votes. Returns nil when
// the weighted long and short scores sit inside the ambiguity band, or when
// the winning side's confidence falls below MinConfidence. Both are ordinary
// no-signal outcomes.
func (e *Ensemble) Predict(v features.Vector, snap models.TechnicalSnapshot) *Prediction {
	votes := make([]models.ModelVote, 0, len(e.models))
	var longScore, shortScore float64

	for _, m := range e.models {
		vote := m.Vote(v, snap)
		votes = append(votes, vote)

		weighted := vote.Score * e.weights[vote.Model]
		if vote.Direction == models.DirectionLong {
			longScore += weighted
		} else {
			shortScore += weighted
		}
	}

	diff := longScore - shortScore
	if diff < 0 {
		diff = -diff
	}
	if diff < AmbiguityBand {
		return nil
	}

	direction := models.DirectionShort
	confidence := shortScore * 100
	if longScore > shortScore {
		direction = models.DirectionLong
		confidence = longScore * 100
	}
	if confidence < MinConfidence {
		return nil
	}

	return &Prediction{
		Direction:  direction,
		Confidence: confidence,
		LongScore:  longScore,
		ShortScore: shortScore,
		Votes:      votes,
	}
}
