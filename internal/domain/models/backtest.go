package models

import "time"

// Exit reasons for a simulated trade.
const (
	ExitTarget   = "target"
	ExitStopLoss = "stop_loss"
	ExitExpired  = "expired"
)

// BacktestTrade is one simulated entry/exit pair produced by the replay.
// Aggregated into a BacktestResult, never persisted individually.
type BacktestTrade struct {
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Direction  Direction `json:"direction"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	Reason     string    `json:"reason"`
	PnL        float64   `json:"pnl"`
	PnLPct     float64   `json:"pnl_pct"`
}

// BacktestResult aggregates trade-level outcomes into performance metrics.
// Computed once at the end of a run; read-only afterward.
type BacktestResult struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"` // percent
	ProfitFactor  float64 `json:"profit_factor"`
	TotalProfit   float64 `json:"total_profit"`
	TotalLoss     float64 `json:"total_loss"`
	NetProfit     float64 `json:"net_profit"`
	AvgWin        float64 `json:"avg_win"`
	AvgLoss       float64 `json:"avg_loss"`
	LargestWin    float64 `json:"largest_win"`
	LargestLoss   float64 `json:"largest_loss"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	SharpeRatio   float64 `json:"sharpe_ratio"`

	MaxConsecutiveWins   int `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`

	Trades []BacktestTrade `json:"trades"`
}
