package models

import "time"

// Direction of a trading signal.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Opposite returns the inverse direction.
func (d Direction) Opposite() Direction {
	if d == DirectionLong {
		return DirectionShort
	}
	return DirectionLong
}

// TechnicalSnapshot holds the indicator values computed at one point in time
// for one symbol. Derived and ephemeral; it is recomputed per evaluation and
// only persisted as part of the Signal it produced.
type TechnicalSnapshot struct {
	RSI           float64 `json:"rsi"`
	BBLower       float64 `json:"bb_lower"`
	BBMiddle      float64 `json:"bb_middle"`
	BBUpper       float64 `json:"bb_upper"`
	BBPosition    float64 `json:"bollinger_position"` // 0-1 location between bands
	MACDLine      float64 `json:"macd_line"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`
	VolumeScore   float64 `json:"volume_score"`
	ATR           float64 `json:"atr"`
}

// ModelVote is one sub-model's opinion: a score in [0,1] and a direction.
type ModelVote struct {
	Model     string    `json:"model"`
	Score     float64   `json:"score"`
	Direction Direction `json:"direction"`
}

// Regime classifies current market state into trend/volatility/liquidity
// buckets. Serialized with exactly the three keys trend/vol/liq.
type Regime struct {
	Trend     string `json:"trend"` // up, down, sideways
	Vol       string `json:"vol"`   // high, low, normal
	Liquidity string `json:"liq"`   // high, low, normal
}

// Signal is the persisted output of one accepted evaluation. Immutable once
// created; only the expiry sweep flips IsActive after ExpiresAt elapses.
type Signal struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Symbol          string    `gorm:"index" json:"symbol"`
	Timeframe       string    `json:"timeframe"`
	Direction       Direction `json:"direction"`
	EntryPrice      float64   `json:"entry_price"`
	TargetPrice     float64   `json:"target_price"`
	StopLoss        float64   `json:"stop_loss"`
	Strategy        string    `json:"strategy"`
	StrategyID      string    `json:"strategy_id"`
	Confidence      float64   `json:"confidence"`    // 0-100
	QualityScore    float64   `json:"quality_score"` // 0-100
	RiskRewardRatio float64   `json:"risk_reward_ratio"`
	VolumeScore     float64   `json:"volume_score"`

	// JSON-encoded sub-objects; the persistence boundary owns the encoding,
	// the engine guarantees the values are losslessly serializable.
	TechnicalIndicators string `gorm:"type:jsonb" json:"technical_indicators"`
	Rationale           string `gorm:"type:jsonb" json:"rationale"` // list of 1-3 plain strings
	Regime              string `gorm:"type:jsonb" json:"regime"`    // trend/vol/liq triple

	MarketConditions string  `json:"market_conditions"` // bullish, bearish, neutral
	LatencyMS        int64   `json:"latency_ms"`
	BTWinRate        float64 `json:"bt_winrate"` // placeholder estimate, see synthesis
	BTProfitFactor   float64 `json:"bt_pf"`      // placeholder estimate, see synthesis
	RiskPct          float64 `json:"risk_pct"`

	IsActive  bool      `gorm:"index" json:"is_active"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
