package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domrepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/service/cache"
	"TradePulse/internal/usecase"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/queue"
)

// TypeBacktest is the queue message type for async backtests.
const TypeBacktest = "backtest.run"

// backtestResultTTL bounds how long a cached async result stays retrievable.
const backtestResultTTL = time.Hour

// BacktestPayload is the queued backtest request.
type BacktestPayload struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
	TF     string `json:"tf"`
}

// BacktestResultKey is the cache key an async backtest writes its result to.
func BacktestResultKey(symbol, tf string) string {
	return fmt.Sprintf("backtest:last:%s:%s", symbol, tf)
}

// BacktestJob replays history for one symbol off the HTTP request path and
// parks the result in the cache for later retrieval.
type BacktestJob struct {
	bt    *usecase.BacktestUseCase
	cache cache.BytesCache
	l     *applogger.Logger
}

var _ queue.Job = (*BacktestJob)(nil)

func NewBacktestJob(bt *usecase.BacktestUseCase, c cache.BytesCache, l *applogger.Logger) *BacktestJob {
	return &BacktestJob{bt: bt, cache: c, l: l}
}

func (j *BacktestJob) Name() string { return "backtest" }

func (j *BacktestJob) Type() string { return TypeBacktest }

func (j *BacktestJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[BacktestPayload](payload)
	if err != nil {
		return fmt.Errorf("parse backtest payload: %w", err)
	}
	if p.Symbol == "" {
		return fmt.Errorf("backtest payload missing symbol")
	}

	tf := domrepo.NormalizeTimeframe(p.TF)
	res, err := j.bt.Run(ctx, p.Symbol, p.Days, tf)
	if err != nil {
		return fmt.Errorf("backtest %s: %w", p.Symbol, err)
	}

	if j.cache != nil {
		usecase.SanitizeBacktestResult(res)
		b, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal backtest result: %w", err)
		}
		if err := j.cache.SetBytes(BacktestResultKey(p.Symbol, string(tf)), b, backtestResultTTL); err != nil {
			j.l.Warn("cache backtest result failed",
				applogger.String("symbol", p.Symbol),
				applogger.Error(err),
			)
		}
	}
	return nil
}
