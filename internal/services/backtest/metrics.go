package backtest

import (
	"math"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/services/indicators"
)

// aggregator accumulates trades in chronological order and produces the
// final performance metrics. Zero PnL counts as a loss.
type aggregator struct {
	trades []models.BacktestTrade

	winning, losing int
	totalProfit     float64
	totalLoss       float64
	largestWin      float64
	largestLoss     float64

	streakWins, streakLosses       int
	maxStreakWins, maxStreakLosses int
}

func (a *aggregator) add(t models.BacktestTrade) {
	a.trades = append(a.trades, t)

	if t.PnL > 0 {
		a.winning++
		a.totalProfit += t.PnL
		a.streakWins++
		a.streakLosses = 0
		if a.streakWins > a.maxStreakWins {
			a.maxStreakWins = a.streakWins
		}
		if t.PnL > a.largestWin {
			a.largestWin = t.PnL
		}
		return
	}

	loss := -t.PnL
	a.losing++
	a.totalLoss += loss
	a.streakLosses++
	a.streakWins = 0
	if a.streakLosses > a.maxStreakLosses {
		a.maxStreakLosses = a.streakLosses
	}
	if loss > a.largestLoss {
		a.largestLoss = loss
	}
}

// finish writes the aggregate metrics into res. Win rate is a percentage,
// profit factor is +Inf when no trade lost, Sharpe is annualized off per-trade
// returns and zero when undefined (fewer than two trades or zero variance),
// and drawdown is the deepest peak-to-trough drop of the cumulative PnL walk.
func (a *aggregator) finish(res *models.BacktestResult) {
	res.Trades = a.trades
	res.TotalTrades = len(a.trades)
	if res.TotalTrades == 0 {
		return
	}

	res.WinningTrades = a.winning
	res.LosingTrades = a.losing
	res.WinRate = float64(a.winning) / float64(res.TotalTrades) * 100
	res.TotalProfit = a.totalProfit
	res.TotalLoss = a.totalLoss
	res.NetProfit = a.totalProfit - a.totalLoss
	res.LargestWin = a.largestWin
	res.LargestLoss = a.largestLoss
	res.MaxConsecutiveWins = a.maxStreakWins
	res.MaxConsecutiveLosses = a.maxStreakLosses

	if a.winning > 0 {
		res.AvgWin = a.totalProfit / float64(a.winning)
	}
	if a.losing > 0 {
		res.AvgLoss = a.totalLoss / float64(a.losing)
	}
	if a.totalLoss > 0 {
		res.ProfitFactor = a.totalProfit / a.totalLoss
	} else {
		res.ProfitFactor = math.Inf(1)
	}

	res.SharpeRatio = sharpe(a.trades)

	var cumulative, peak, maxDD float64
	for _, t := range a.trades {
		cumulative += t.PnL
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDD {
			maxDD = dd
		}
	}
	res.MaxDrawdown = maxDD
}

func sharpe(trades []models.BacktestTrade) float64 {
	if len(trades) < 2 {
		return 0
	}
	returns := make([]float64, len(trades))
	for i, t := range trades {
		returns[i] = t.PnLPct
	}
	mean := indicators.Mean(returns)
	std := indicators.PopulationStd(returns, mean)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(252)
}
