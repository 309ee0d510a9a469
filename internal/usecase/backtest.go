package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/services/backtest"
	applogger "TradePulse/pkg/logger"
)

// MaxReportedProfitFactor stands in for an unbounded profit factor when a
// run has no losing trades. JSON cannot carry Infinity.
const MaxReportedProfitFactor = 999.0

// SanitizeBacktestResult makes a result safe to JSON-encode in place.
func SanitizeBacktestResult(res *models.BacktestResult) {
	if math.IsInf(res.ProfitFactor, 1) {
		res.ProfitFactor = MaxReportedProfitFactor
	}
}

// BacktestUseCase fetches the historical window and replays the strategy
// over it. The heavy, explicitly invoked counterpart to live generation.
type BacktestUseCase struct {
	market domrepo.MarketData
	l      *applogger.Logger
}

func NewBacktestUseCase(market domrepo.MarketData, l *applogger.Logger) *BacktestUseCase {
	return &BacktestUseCase{market: market, l: l}
}

// Run backtests symbol over the trailing days at tf. Fails with
// ErrInsufficientData when the venue cannot supply the warm-up history.
func (uc *BacktestUseCase) Run(ctx context.Context, symbol string, days int, tf domrepo.Timeframe) (*models.BacktestResult, error) {
	if days <= 0 {
		days = 30
	}
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	candles, err := uc.market.FetchCandleRange(ctx, symbol, tf, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch backtest history %s: %w", symbol, err)
	}
	if len(candles) < backtest.MinHistory {
		return nil, fmt.Errorf("backtest %s: %d candles: %w", symbol, len(candles), domrepo.ErrInsufficientData)
	}

	start := time.Now()
	res := backtest.Run(symbol, string(tf), candles)
	res.From = from
	res.To = to

	uc.l.Info("backtest completed",
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("candles", len(candles)),
		applogger.Int("trades", res.TotalTrades),
		applogger.Float64("win_rate", res.WinRate),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return res, nil
}
