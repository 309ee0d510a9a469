package repository

import (
	"context"
	"time"

	"TradePulse/internal/domain/models"
)

// MarketData provides OHLCV history for a symbol. Implementations must
// return candles ordered oldest to newest and honor the venue's rate limits
// when paginating.
type MarketData interface {
	// FetchCandles returns up to limit most recent candles. Fewer may come
	// back than asked for; callers decide whether that is enough history.
	FetchCandles(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.Candle, error)

	// FetchCandleRange pages through [from, to), pausing between requests
	// per the venue rate limit.
	FetchCandleRange(ctx context.Context, symbol string, tf Timeframe, from, to time.Time) ([]models.Candle, error)
}

// SignalStore persists emitted signals. The engine only constructs and hands
// off the value; the store owns it afterwards.
type SignalStore interface {
	Create(ctx context.Context, s *models.Signal) error
	Latest(ctx context.Context, symbol string, limit int, activeOnly bool) ([]models.Signal, error)
	// ExpireStale flips is_active off for signals whose expires_at has
	// elapsed. Returns the number of rows touched.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// Notifier fans out an emitted signal to downstream consumers.
type Notifier interface {
	PublishSignal(ctx context.Context, s *models.Signal) error
	Close() error
}

// CandleStore provides read/write access to the local candle archive used by
// the candles API and as a fetch fallback.
type CandleStore interface {
	StoreBatch(ctx context.Context, candles []models.Candle, tf Timeframe) error
	GetLatestN(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
	GetRange(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
}

// Metrics records engine observability counters.
type Metrics interface {
	RecordSignalGenerated(symbol string, direction string)
	RecordSignalSkipped(symbol, reason string)
	RecordError(kind string)
	RecordEvalLatency(symbol string, seconds float64)
	RecordConfidence(symbol string, confidence float64)
	RecordCandleStored(symbol string)
	RecordIngestLatency(seconds float64)
}
