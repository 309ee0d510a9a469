package usecase

import (
	"context"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/service/cache"
)

func TestSignalsLatestCachesResponse(t *testing.T) {
	store := &fakeSignalStore{}
	now := time.Now().UTC()
	store.created = append(store.created,
		&models.Signal{Symbol: "BTC/USDT", Direction: models.DirectionLong, CreatedAt: now},
		&models.Signal{Symbol: "ETH/USDT", Direction: models.DirectionShort, CreatedAt: now},
	)
	uc := NewSignalsUseCase(store, cache.NewTTLCache())

	res, err := uc.Latest(context.Background(), LatestSignalsParams{Limit: 10, ActiveOnly: true})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("count = %d, want 2", res.Count)
	}

	// A new signal appears, but the cached response is still served.
	store.created = append(store.created, &models.Signal{Symbol: "SOL/USDT", CreatedAt: now})
	res, err = uc.Latest(context.Background(), LatestSignalsParams{Limit: 10, ActiveOnly: true})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("count = %d, want cached 2", res.Count)
	}

	// A different key bypasses the cached entry.
	res, err = uc.Latest(context.Background(), LatestSignalsParams{Limit: 5, ActiveOnly: true})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if res.Count != 3 {
		t.Fatalf("count = %d, want 3", res.Count)
	}
}

func TestSignalsLatestWithoutCache(t *testing.T) {
	store := &fakeSignalStore{}
	uc := NewSignalsUseCase(store, nil)

	res, err := uc.Latest(context.Background(), LatestSignalsParams{})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if res.Count != 0 || res.Signals == nil {
		t.Fatalf("result = %+v", res)
	}
}

func TestCandlesLatest(t *testing.T) {
	store := &fakeCandleStore{candles: flatCandles(50, 100)}
	uc := NewCandlesUseCase(store)

	res, err := uc.Latest(context.Background(), "BTC/USDT", 10, "1h")
	if err != nil {
		t.Fatalf("latest candles: %v", err)
	}
	if res.Count != 10 {
		t.Fatalf("count = %d, want 10", res.Count)
	}
	if !res.From.Equal(res.Candles[0].Timestamp) || !res.To.Equal(res.Candles[9].Timestamp) {
		t.Fatalf("range %v..%v does not match candles", res.From, res.To)
	}

	if _, err := uc.Latest(context.Background(), "", 10, "1h"); err == nil {
		t.Fatal("expected symbol-required error")
	}
}

func TestCandlesGetCandlesValidatesRange(t *testing.T) {
	uc := NewCandlesUseCase(&fakeCandleStore{})
	now := time.Now().UTC()

	if _, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: "BTC/USDT", From: now, To: now.Add(-time.Hour)}); err == nil {
		t.Fatal("expected from/to order error")
	}
	if _, err := uc.GetCandles(context.Background(), GetCandlesParams{From: now.Add(-time.Hour), To: now}); err == nil {
		t.Fatal("expected symbol-required error")
	}
}
