package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
)

func TestBacktestRunRejectsShortHistory(t *testing.T) {
	uc := NewBacktestUseCase(&fakeMarket{candles: flatCandles(40, 100)}, testLogger(t))

	_, err := uc.Run(context.Background(), "BTC/USDT", 30, domrepo.TF1h)
	if !errors.Is(err, domrepo.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestBacktestRunSetsRequestedRange(t *testing.T) {
	uc := NewBacktestUseCase(&fakeMarket{candles: flatCandles(200, 100)}, testLogger(t))

	res, err := uc.Run(context.Background(), "BTC/USDT", 7, domrepo.TF1h)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Symbol != "BTC/USDT" || res.Timeframe != "1h" {
		t.Fatalf("result header = %s %s", res.Symbol, res.Timeframe)
	}
	got := res.To.Sub(res.From)
	if got.Hours() < 7*24-1 || got.Hours() > 7*24+1 {
		t.Fatalf("range = %v, want ~7d", got)
	}
}

func TestBacktestRunFetchError(t *testing.T) {
	uc := NewBacktestUseCase(&fakeMarket{err: errors.New("boom")}, testLogger(t))

	if _, err := uc.Run(context.Background(), "BTC/USDT", 30, domrepo.TF1h); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestSanitizeBacktestResult(t *testing.T) {
	res := &models.BacktestResult{ProfitFactor: math.Inf(1)}
	SanitizeBacktestResult(res)
	if res.ProfitFactor != MaxReportedProfitFactor {
		t.Fatalf("profit factor = %f", res.ProfitFactor)
	}

	res = &models.BacktestResult{ProfitFactor: 2.5}
	SanitizeBacktestResult(res)
	if res.ProfitFactor != 2.5 {
		t.Fatalf("finite profit factor changed: %f", res.ProfitFactor)
	}
}
