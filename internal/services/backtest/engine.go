package backtest

import (
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/services/indicators"
)

const (
	// MinHistory is the number of warm-up candles required before the first
	// simulated entry can open.
	MinHistory = 100

	// LookbackWindow is the trailing window indicators are recomputed over
	// at every replay step.
	LookbackWindow = 100

	// MaxLookahead bounds how many bars a simulated trade stays open before
	// it is force-closed as expired.
	MaxLookahead = 24
)

// Run replays the rule-based strategy over a candle series and aggregates
// the simulated trades. Purely deterministic: identical input series always
// produce identical results. Series shorter than MinHistory yield an empty
// result with zero trades.
func Run(symbol, timeframe string, candles []models.Candle) *models.BacktestResult {
	res := &models.BacktestResult{
		Symbol:    symbol,
		Timeframe: timeframe,
		Trades:    []models.BacktestTrade{},
	}
	if len(candles) > 0 {
		res.From = candles[0].Timestamp
		res.To = candles[len(candles)-1].Timestamp
	}
	if len(candles) < MinHistory {
		return res
	}

	var agg aggregator
	for i := MinHistory; i < len(candles); i++ {
		lookback := candles[i-LookbackWindow : i]
		closes := models.Closes(lookback)
		volumes := models.Volumes(lookback)
		price := closes[len(closes)-1]

		rsi := indicators.RSI(closes, indicators.DefaultRSIPeriod)
		bbLower, _, bbUpper := indicators.BollingerBands(closes, indicators.DefaultBBPeriod, indicators.DefaultBBStdDev)
		_, _, macdHist := indicators.MACD(closes, 12, 26, 9)
		volumeScore := indicators.VolumePatternScore(volumes)
		bbPos := indicators.BBPosition(price, bbLower, bbUpper)

		direction, ok := Decide(rsi, bbPos, macdHist, volumeScore)
		if !ok {
			continue
		}

		tail := lookback
		if len(tail) > 20 {
			tail = tail[len(tail)-20:]
		}
		atr := indicators.ATR(models.Highs(tail), models.Lows(tail), indicators.DefaultATRPeriod)
		target, stop := levels(direction, price, atr)

		reason, exitPrice, exitTime := simulate(candles, i, direction, target, stop)

		pnl := exitPrice - price
		if direction == models.DirectionShort {
			pnl = price - exitPrice
		}

		agg.add(models.BacktestTrade{
			EntryPrice: price,
			ExitPrice:  exitPrice,
			Direction:  direction,
			EntryTime:  candles[i].Timestamp,
			ExitTime:   exitTime,
			Reason:     reason,
			PnL:        pnl,
			PnLPct:     pnl / price * 100,
		})
	}

	agg.finish(res)
	return res
}

// Decide applies the rule-based entry logic: band extremes confirmed by RSI
// plus either MACD momentum or a volume surge. Returns false when no rule
// fires, which is the common case.
func Decide(rsi, bbPos, macdHist, volumeScore float64) (models.Direction, bool) {
	switch {
	case rsi < 35 && bbPos < 0.3 && macdHist > 0:
		return models.DirectionLong, true
	case rsi > 65 && bbPos > 0.7 && macdHist < 0:
		return models.DirectionShort, true
	case rsi < 45 && bbPos < 0.4 && volumeScore > 50:
		return models.DirectionLong, true
	case rsi > 55 && bbPos > 0.6 && volumeScore > 50:
		return models.DirectionShort, true
	default:
		return "", false
	}
}

// levels sets a fixed 1.5% target and an ATR-scaled stop for the replay.
func levels(direction models.Direction, entry, atr float64) (target, stop float64) {
	atrPct := 0.0
	if entry > 0 {
		atrPct = atr / entry
	}
	if direction == models.DirectionLong {
		return entry * 1.015, entry * (1 - atrPct*1.5)
	}
	return entry * 0.985, entry * (1 + atrPct*1.5)
}

// simulate walks the look-ahead bars after the entry index. Per bar the stop
// is checked before the target so conservative fills win ties within a bar.
// If neither level is touched the trade expires at the close of the last
// look-ahead bar.
func simulate(candles []models.Candle, idx int, direction models.Direction, target, stop float64) (reason string, exitPrice float64, exitTime time.Time) {
	end := idx + MaxLookahead
	if end > len(candles) {
		end = len(candles)
	}

	for j := idx + 1; j < end; j++ {
		c := candles[j]
		if direction == models.DirectionLong {
			if c.Low <= stop {
				return models.ExitStopLoss, stop, c.Timestamp
			}
			if c.High >= target {
				return models.ExitTarget, target, c.Timestamp
			}
		} else {
			if c.High >= stop {
				return models.ExitStopLoss, stop, c.Timestamp
			}
			if c.Low <= target {
				return models.ExitTarget, target, c.Timestamp
			}
		}
	}

	last := idx + MaxLookahead
	if last > len(candles)-1 {
		last = len(candles) - 1
	}
	return models.ExitExpired, candles[last].Close, candles[last].Timestamp
}
