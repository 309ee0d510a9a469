package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/services/ensemble"
	"TradePulse/internal/services/features"
	"TradePulse/internal/services/indicators"
	"TradePulse/internal/services/synthesis"
	applogger "TradePulse/pkg/logger"
)

// Skip reasons reported by Evaluate. All are ordinary no-signal outcomes.
const (
	SkipInsufficientData    = "insufficient_data"
	SkipEnsembleNoConsensus = "ensemble_no_consensus"
	SkipSynthesisRejected   = "synthesis_rejected"
	SkipExchangeUnavailable = "exchange_unavailable"
	SkipRateLimited         = "rate_limited"
)

// MinHistory is the minimum candle count an evaluation needs.
const MinHistory = 50

// GeneratorConfig holds the evaluation parameters for the generation cycle.
type GeneratorConfig struct {
	Symbols   []string
	Timeframe domrepo.Timeframe
	Lookback  int
	SignalTTL time.Duration
}

// predictor is the ensemble surface the generator needs.
type predictor interface {
	Predict(v features.Vector, snap models.TechnicalSnapshot) *ensemble.Prediction
}

// SignalGeneratorUseCase runs the full evaluation pipeline for a symbol:
// fetch, indicators, features, ensemble vote, synthesis, persist, notify.
// Each evaluation is an independent computation over an in-memory window;
// the cycle runs them sequentially per symbol.
type SignalGeneratorUseCase struct {
	cfg      GeneratorConfig
	market   domrepo.MarketData
	store    domrepo.SignalStore
	notifier domrepo.Notifier
	metrics  domrepo.Metrics
	model    predictor
	synth    *synthesis.Synthesizer
	l        *applogger.Logger
}

func NewSignalGeneratorUseCase(
	cfg GeneratorConfig,
	market domrepo.MarketData,
	store domrepo.SignalStore,
	notifier domrepo.Notifier,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *SignalGeneratorUseCase {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 100
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = domrepo.DefaultTimeframe()
	}
	return &SignalGeneratorUseCase{
		cfg:      cfg,
		market:   market,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		model:    ensemble.New(),
		synth:    synthesis.New(cfg.SignalTTL),
		l:        l,
	}
}

// CycleResult counts outcomes of one generation cycle across symbols.
type CycleResult struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// RunCycle evaluates every configured symbol once. Per-symbol failures are
// counted and logged, never fatal for the cycle.
func (uc *SignalGeneratorUseCase) RunCycle(ctx context.Context) CycleResult {
	var res CycleResult
	for _, symbol := range uc.cfg.Symbols {
		sig, skip, err := uc.Evaluate(ctx, symbol, uc.cfg.Timeframe, uc.cfg.Lookback)
		switch {
		case err != nil:
			res.Errors++
			uc.l.Error("signal evaluation failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		case sig != nil:
			res.Generated++
		default:
			res.Skipped++
			uc.l.Debug("signal skipped",
				applogger.String("symbol", symbol),
				applogger.String("reason", skip),
			)
		}
	}
	uc.l.Info("signal generation cycle completed",
		applogger.Int("generated", res.Generated),
		applogger.Int("skipped", res.Skipped),
		applogger.Int("errors", res.Errors),
	)
	return res
}

// Evaluate runs one symbol through the pipeline. Returns the persisted
// signal, or a nil signal with a skip reason when no signal was warranted,
// or an error for genuine failures (fetch or persistence).
func (uc *SignalGeneratorUseCase) Evaluate(ctx context.Context, symbol string, tf domrepo.Timeframe, lookback int) (*models.Signal, string, error) {
	start := time.Now()

	candles, err := uc.market.FetchCandles(ctx, symbol, tf, lookback)
	if err != nil {
		// Upstream trouble is a skipped evaluation, not a fault: the next
		// cycle retries naturally.
		switch {
		case errors.Is(err, domrepo.ErrRateLimited):
			uc.metrics.RecordSignalSkipped(symbol, SkipRateLimited)
			uc.metrics.RecordError("fetch")
			return nil, SkipRateLimited, nil
		case errors.Is(err, domrepo.ErrExchangeUnavailable):
			uc.metrics.RecordSignalSkipped(symbol, SkipExchangeUnavailable)
			uc.metrics.RecordError("fetch")
			return nil, SkipExchangeUnavailable, nil
		}
		return nil, "", fmt.Errorf("fetch candles %s: %w", symbol, err)
	}
	if len(candles) < MinHistory {
		uc.metrics.RecordSignalSkipped(symbol, SkipInsufficientData)
		return nil, SkipInsufficientData, nil
	}

	closes := models.Closes(candles)
	highs := models.Highs(candles)
	lows := models.Lows(candles)
	volumes := models.Volumes(candles)

	snap := Snapshot(closes, highs, lows, volumes)
	vec := features.Extract(closes, highs, lows, volumes, snap)

	pred := uc.model.Predict(vec, snap)
	if pred == nil {
		uc.metrics.RecordSignalSkipped(symbol, SkipEnsembleNoConsensus)
		return nil, SkipEnsembleNoConsensus, nil
	}

	sig, err := uc.synth.Synthesize(synthesis.Input{
		Symbol:     symbol,
		Timeframe:  string(tf),
		Closes:     closes,
		Highs:      highs,
		Lows:       lows,
		Volumes:    volumes,
		Snapshot:   snap,
		Prediction: pred,
		Now:        time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, synthesis.ErrRejected) {
			uc.metrics.RecordSignalSkipped(symbol, SkipSynthesisRejected)
			return nil, SkipSynthesisRejected, nil
		}
		return nil, "", fmt.Errorf("synthesize %s: %w", symbol, err)
	}

	sig.LatencyMS = time.Since(start).Milliseconds()

	if err := uc.store.Create(ctx, sig); err != nil {
		uc.metrics.RecordError("persist")
		return nil, "", fmt.Errorf("persist signal %s: %w", symbol, err)
	}

	if uc.notifier != nil {
		if err := uc.notifier.PublishSignal(ctx, sig); err != nil {
			// The signal is already persisted; losing the notification is
			// degraded service, not a failed evaluation.
			uc.metrics.RecordError("notify")
			uc.l.Warn("signal notification failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
	}

	uc.metrics.RecordSignalGenerated(symbol, string(sig.Direction))
	uc.metrics.RecordEvalLatency(symbol, time.Since(start).Seconds())
	uc.metrics.RecordConfidence(symbol, sig.Confidence)

	uc.l.Info("signal generated",
		applogger.String("symbol", symbol),
		applogger.String("direction", string(sig.Direction)),
		applogger.Float64("confidence", sig.Confidence),
		applogger.Float64("risk_reward", sig.RiskRewardRatio),
		applogger.Int64("latency_ms", sig.LatencyMS),
	)
	return sig, "", nil
}

// Snapshot computes the full indicator snapshot for one candle window.
func Snapshot(closes, highs, lows, volumes []float64) models.TechnicalSnapshot {
	price := closes[len(closes)-1]
	rsi := indicators.RSI(closes, indicators.DefaultRSIPeriod)
	bbLower, bbMiddle, bbUpper := indicators.BollingerBands(closes, indicators.DefaultBBPeriod, indicators.DefaultBBStdDev)
	macdLine, macdSignal, macdHist := indicators.MACD(closes, 12, 26, 9)

	return models.TechnicalSnapshot{
		RSI:           rsi,
		BBLower:       bbLower,
		BBMiddle:      bbMiddle,
		BBUpper:       bbUpper,
		BBPosition:    indicators.BBPosition(price, bbLower, bbUpper),
		MACDLine:      macdLine,
		MACDSignal:    macdSignal,
		MACDHistogram: macdHist,
		VolumeScore:   indicators.VolumePatternScore(volumes),
		ATR:           indicators.ATR(highs, lows, indicators.DefaultATRPeriod),
	}
}
