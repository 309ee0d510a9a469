package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/services/ensemble"
	"TradePulse/internal/services/features"
	applogger "TradePulse/pkg/logger"
)

// --- fakes ---

type fakeMarket struct {
	candles []models.Candle
	err     error
}

func (f *fakeMarket) FetchCandles(_ context.Context, _ string, _ domrepo.Timeframe, _ int) ([]models.Candle, error) {
	return f.candles, f.err
}

func (f *fakeMarket) FetchCandleRange(_ context.Context, _ string, _ domrepo.Timeframe, _, _ time.Time) ([]models.Candle, error) {
	return f.candles, f.err
}

type fakeSignalStore struct {
	created   []*models.Signal
	createErr error
	expired   int64
}

func (f *fakeSignalStore) Create(_ context.Context, sig *models.Signal) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, sig)
	return nil
}

func (f *fakeSignalStore) Latest(_ context.Context, _ string, _ int, _ bool) ([]models.Signal, error) {
	out := make([]models.Signal, 0, len(f.created))
	for _, s := range f.created {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSignalStore) ExpireStale(_ context.Context, _ time.Time) (int64, error) {
	return f.expired, nil
}

type fakeNotifier struct {
	published []*models.Signal
	err       error
}

func (f *fakeNotifier) PublishSignal(_ context.Context, sig *models.Signal) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, sig)
	return nil
}

func (f *fakeNotifier) Close() error { return nil }

type fakeMetrics struct {
	generated int
	skips     map[string]int
	errs      map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{skips: map[string]int{}, errs: map[string]int{}}
}

func (f *fakeMetrics) RecordSignalGenerated(string, string) { f.generated++ }
func (f *fakeMetrics) RecordSignalSkipped(_, reason string) { f.skips[reason]++ }
func (f *fakeMetrics) RecordError(stage string)             { f.errs[stage]++ }
func (f *fakeMetrics) RecordEvalLatency(string, float64)    {}
func (f *fakeMetrics) RecordConfidence(string, float64)     {}
func (f *fakeMetrics) RecordCandleStored(string)            {}
func (f *fakeMetrics) RecordIngestLatency(float64)          {}

type fixedPredictor struct {
	pred *ensemble.Prediction
}

func (f fixedPredictor) Predict(features.Vector, models.TechnicalSnapshot) *ensemble.Prediction {
	return f.pred
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func flatCandles(n int, price float64) []models.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{
			Symbol:    "BTC/USDT",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000,
		}
	}
	return out
}

func newGenerator(market domrepo.MarketData, store domrepo.SignalStore, notifier domrepo.Notifier, m domrepo.Metrics, t *testing.T) *SignalGeneratorUseCase {
	return NewSignalGeneratorUseCase(
		GeneratorConfig{Symbols: []string{"BTC/USDT"}, Timeframe: domrepo.TF1h, Lookback: 100},
		market, store, notifier, m, testLogger(t),
	)
}

func TestEvaluateInsufficientData(t *testing.T) {
	store := &fakeSignalStore{}
	metrics := newFakeMetrics()
	uc := newGenerator(&fakeMarket{candles: flatCandles(30, 100)}, store, &fakeNotifier{}, metrics, t)

	sig, skip, err := uc.Evaluate(context.Background(), "BTC/USDT", domrepo.TF1h, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != nil {
		t.Fatal("expected no signal")
	}
	if skip != SkipInsufficientData {
		t.Fatalf("skip = %q, want %q", skip, SkipInsufficientData)
	}
	if len(store.created) != 0 {
		t.Fatal("nothing should be persisted")
	}
	if metrics.skips[SkipInsufficientData] != 1 {
		t.Fatal("skip metric not recorded")
	}
}

func TestEvaluateFetchRateLimitedSkips(t *testing.T) {
	metrics := newFakeMetrics()
	market := &fakeMarket{err: domrepo.ErrRateLimited}
	uc := newGenerator(market, &fakeSignalStore{}, &fakeNotifier{}, metrics, t)

	sig, skip, err := uc.Evaluate(context.Background(), "BTC/USDT", domrepo.TF1h, 100)
	if err != nil {
		t.Fatalf("rate limit should not be an error: %v", err)
	}
	if sig != nil || skip != SkipRateLimited {
		t.Fatalf("sig=%v skip=%q", sig, skip)
	}
	if metrics.errs["fetch"] != 1 {
		t.Fatal("fetch error metric not recorded")
	}
}

func TestEvaluateFetchExchangeUnavailableSkips(t *testing.T) {
	metrics := newFakeMetrics()
	market := &fakeMarket{err: domrepo.ErrExchangeUnavailable}
	uc := newGenerator(market, &fakeSignalStore{}, &fakeNotifier{}, metrics, t)

	sig, skip, err := uc.Evaluate(context.Background(), "BTC/USDT", domrepo.TF1h, 100)
	if err != nil || sig != nil || skip != SkipExchangeUnavailable {
		t.Fatalf("sig=%v skip=%q err=%v", sig, skip, err)
	}
}

func TestEvaluateFlatSeriesSkipsWithoutConsensus(t *testing.T) {
	metrics := newFakeMetrics()
	uc := newGenerator(&fakeMarket{candles: flatCandles(120, 100)}, &fakeSignalStore{}, &fakeNotifier{}, metrics, t)

	sig, skip, err := uc.Evaluate(context.Background(), "BTC/USDT", domrepo.TF1h, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != nil {
		t.Fatalf("flat market should not yield a signal, got %+v", sig)
	}
	if skip != SkipEnsembleNoConsensus {
		t.Fatalf("skip = %q, want %q", skip, SkipEnsembleNoConsensus)
	}
}

func TestEvaluatePersistsAndNotifies(t *testing.T) {
	store := &fakeSignalStore{}
	notifier := &fakeNotifier{}
	metrics := newFakeMetrics()
	uc := newGenerator(&fakeMarket{candles: flatCandles(120, 100)}, store, notifier, metrics, t)
	uc.model = fixedPredictor{pred: &ensemble.Prediction{
		Direction:  models.DirectionLong,
		Confidence: 80,
		LongScore:  0.8,
		ShortScore: 0.1,
	}}

	sig, skip, err := uc.Evaluate(context.Background(), "BTC/USDT", domrepo.TF1h, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig == nil {
		t.Fatalf("expected a signal, skip=%q", skip)
	}
	if sig.Direction != models.DirectionLong {
		t.Fatalf("direction = %s", sig.Direction)
	}
	if sig.LatencyMS < 0 {
		t.Fatalf("latency = %d", sig.LatencyMS)
	}
	if len(store.created) != 1 || store.created[0] != sig {
		t.Fatal("signal not persisted")
	}
	if len(notifier.published) != 1 {
		t.Fatal("signal not published")
	}
	if metrics.generated != 1 {
		t.Fatal("generated metric not recorded")
	}
}

func TestEvaluateNotifyFailureIsNonFatal(t *testing.T) {
	store := &fakeSignalStore{}
	notifier := &fakeNotifier{err: errors.New("broker down")}
	metrics := newFakeMetrics()
	uc := newGenerator(&fakeMarket{candles: flatCandles(120, 100)}, store, notifier, metrics, t)
	uc.model = fixedPredictor{pred: &ensemble.Prediction{
		Direction:  models.DirectionShort,
		Confidence: 75,
		LongScore:  0.1,
		ShortScore: 0.75,
	}}

	sig, _, err := uc.Evaluate(context.Background(), "BTC/USDT", domrepo.TF1h, 100)
	if err != nil {
		t.Fatalf("notify failure must not fail the evaluation: %v", err)
	}
	if sig == nil || len(store.created) != 1 {
		t.Fatal("signal should still be persisted")
	}
	if metrics.errs["notify"] != 1 {
		t.Fatal("notify error metric not recorded")
	}
}

func TestEvaluatePersistFailure(t *testing.T) {
	store := &fakeSignalStore{createErr: errors.New("db down")}
	metrics := newFakeMetrics()
	uc := newGenerator(&fakeMarket{candles: flatCandles(120, 100)}, store, &fakeNotifier{}, metrics, t)
	uc.model = fixedPredictor{pred: &ensemble.Prediction{
		Direction:  models.DirectionLong,
		Confidence: 80,
		LongScore:  0.8,
		ShortScore: 0.1,
	}}

	_, _, err := uc.Evaluate(context.Background(), "BTC/USDT", domrepo.TF1h, 100)
	if err == nil {
		t.Fatal("expected error when the store fails")
	}
	if metrics.errs["persist"] != 1 {
		t.Fatal("persist error metric not recorded")
	}
}

func TestRunCycleCounts(t *testing.T) {
	metrics := newFakeMetrics()
	uc := NewSignalGeneratorUseCase(
		GeneratorConfig{Symbols: []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}, Timeframe: domrepo.TF1h, Lookback: 100},
		&fakeMarket{candles: flatCandles(120, 100)}, &fakeSignalStore{}, &fakeNotifier{}, metrics, testLogger(t),
	)
	uc.model = fixedPredictor{pred: nil}

	res := uc.RunCycle(context.Background())
	if res.Generated != 0 || res.Skipped != 3 || res.Errors != 0 {
		t.Fatalf("cycle result = %+v", res)
	}
}

func TestSnapshotFields(t *testing.T) {
	candles := flatCandles(120, 100)
	snap := Snapshot(models.Closes(candles), models.Highs(candles), models.Lows(candles), models.Volumes(candles))
	if snap.ATR != 2 {
		t.Fatalf("atr = %f, want 2", snap.ATR)
	}
	if snap.BBMiddle != 100 {
		t.Fatalf("bb middle = %f", snap.BBMiddle)
	}
	if snap.BBPosition != 0.5 {
		t.Fatalf("bb position = %f", snap.BBPosition)
	}
}
