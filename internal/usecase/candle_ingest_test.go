package usecase

import (
	"context"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
)

type fakeCandleStore struct {
	stored   []models.Candle
	storedTF domrepo.Timeframe
	candles  []models.Candle
}

func (f *fakeCandleStore) StoreBatch(_ context.Context, candles []models.Candle, tf domrepo.Timeframe) error {
	f.stored = append(f.stored, candles...)
	f.storedTF = tf
	return nil
}

func (f *fakeCandleStore) GetLatestN(_ context.Context, _ string, n int, _ domrepo.Timeframe) ([]models.Candle, error) {
	if n > len(f.candles) {
		n = len(f.candles)
	}
	return f.candles[len(f.candles)-n:], nil
}

func (f *fakeCandleStore) GetRange(_ context.Context, _ string, from, to time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	var out []models.Candle
	for _, c := range f.candles {
		if !c.Timestamp.Before(from) && !c.Timestamp.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestCandleIngestHandlerStoresCandle(t *testing.T) {
	store := &fakeCandleStore{}
	metrics := newFakeMetrics()
	h := NewCandleIngestHandler("candles", store, metrics)

	msg := []byte(`{"symbol":"BTC/USDT","tf":"1h","t":1717200000000,"o":100,"h":102,"l":99,"c":101,"v":1500}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("stored = %d, want 1", len(store.stored))
	}
	c := store.stored[0]
	if c.Symbol != "BTC/USDT" || c.Close != 101 || c.Volume != 1500 {
		t.Fatalf("candle = %+v", c)
	}
	if !c.Timestamp.Equal(time.UnixMilli(1717200000000).UTC()) {
		t.Fatalf("timestamp = %v", c.Timestamp)
	}
	if store.storedTF != domrepo.TF1h {
		t.Fatalf("tf = %s", store.storedTF)
	}
}

func TestCandleIngestHandlerNormalizesUnknownTimeframe(t *testing.T) {
	store := &fakeCandleStore{}
	h := NewCandleIngestHandler("candles", store, newFakeMetrics())

	msg := []byte(`{"symbol":"ETH/USDT","tf":"7m","t":1717200000000,"c":50}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if store.storedTF != domrepo.DefaultTimeframe() {
		t.Fatalf("tf = %s, want default", store.storedTF)
	}
}

func TestCandleIngestHandlerRejectsBadPayload(t *testing.T) {
	store := &fakeCandleStore{}
	metrics := newFakeMetrics()
	h := NewCandleIngestHandler("candles", store, metrics)

	if err := h.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if err := h.Handle(context.Background(), []byte(`{"tf":"1h","t":1,"c":2}`)); err == nil {
		t.Fatal("expected missing-symbol error")
	}
	if len(store.stored) != 0 {
		t.Fatal("nothing should be stored")
	}
	if metrics.errs["ingest_unmarshal"] != 1 || metrics.errs["ingest_invalid"] != 1 {
		t.Fatalf("error metrics = %v", metrics.errs)
	}
}
