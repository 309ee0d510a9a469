package models

import "time"

// Candle represents one OHLCV bar for a symbol/timeframe. Series are always
// ordered oldest to newest.
type Candle struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Closes extracts the close series from a candle window.
func Closes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i := range cs {
		out[i] = cs[i].Close
	}
	return out
}

// Highs extracts the high series from a candle window.
func Highs(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i := range cs {
		out[i] = cs[i].High
	}
	return out
}

// Lows extracts the low series from a candle window.
func Lows(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i := range cs {
		out[i] = cs[i].Low
	}
	return out
}

// Volumes extracts the volume series from a candle window.
func Volumes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i := range cs {
		out[i] = cs[i].Volume
	}
	return out
}
