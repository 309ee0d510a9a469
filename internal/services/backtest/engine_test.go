package backtest

import (
	"math"
	"reflect"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
)

func mkCandles(closes, volumes []float64) []models.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i := range closes {
		out[i] = models.Candle{
			Symbol:    "BTC/USDT",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      closes[i],
			High:      closes[i] + 1,
			Low:       closes[i] - 1,
			Close:     closes[i],
			Volume:    volumes[i],
		}
	}
	return out
}

func TestDecideRules(t *testing.T) {
	cases := []struct {
		name                          string
		rsi, bbPos, macdHist, volume  float64
		wantDirection                 models.Direction
		wantOK                        bool
	}{
		{"strong long", 30, 0.2, 0.5, 40, models.DirectionLong, true},
		{"strong short", 70, 0.8, -0.5, 40, models.DirectionShort, true},
		{"volume long", 40, 0.35, -0.5, 60, models.DirectionLong, true},
		{"volume short", 60, 0.65, 0.5, 60, models.DirectionShort, true},
		{"neutral", 50, 0.5, 0.1, 40, "", false},
		{"oversold without band support", 30, 0.5, 0.5, 40, "", false},
	}
	for _, tc := range cases {
		dir, ok := Decide(tc.rsi, tc.bbPos, tc.macdHist, tc.volume)
		if ok != tc.wantOK || dir != tc.wantDirection {
			t.Fatalf("%s: Decide = (%s, %v), want (%s, %v)", tc.name, dir, ok, tc.wantDirection, tc.wantOK)
		}
	}
}

func TestRunFlatSeriesNoTrades(t *testing.T) {
	n := 200
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
		volumes[i] = 1000
	}

	res := Run("BTC/USDT", "1h", mkCandles(closes, volumes))
	if res.TotalTrades != 0 {
		t.Fatalf("flat series opened %d trades, want 0", res.TotalTrades)
	}
}

func TestRunShortSeriesEmptyResult(t *testing.T) {
	closes := make([]float64, 50)
	volumes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100
		volumes[i] = 1000
	}
	res := Run("BTC/USDT", "1h", mkCandles(closes, volumes))
	if res.TotalTrades != 0 || len(res.Trades) != 0 {
		t.Fatalf("short series produced trades: %+v", res)
	}
}

func TestRunDeclineOpensLong(t *testing.T) {
	// A hundred flat warm-up bars, then a steady slide on surging volume:
	// oversold RSI plus sub-band price plus the volume rule opens a LONG.
	// The subsequent recovery lets it close at target.
	n := 150
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100
		volumes[i] = 1000
	}
	for i := 100; i < 112; i++ {
		closes[i] = 100 - 0.5*float64(i-99)
		volumes[i] = 3000
	}
	for i := 112; i < n; i++ {
		closes[i] = 101
		volumes[i] = 1000
	}

	res := Run("BTC/USDT", "1h", mkCandles(closes, volumes))
	if res.TotalTrades == 0 {
		t.Fatal("expected at least one trade")
	}
	var sawTargetWin bool
	for _, tr := range res.Trades {
		if tr.Direction != models.DirectionLong {
			t.Fatalf("trade direction = %s, want LONG only", tr.Direction)
		}
		if tr.Reason == models.ExitTarget && tr.PnL > 0 {
			sawTargetWin = true
		}
	}
	if !sawTargetWin {
		t.Fatal("expected at least one profitable target exit on the recovery")
	}
}

func TestRunDeterministic(t *testing.T) {
	n := 300
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100 + 5*math.Sin(float64(i)/7) + 2*math.Sin(float64(i)/3)
		volumes[i] = 1000 + 800*math.Abs(math.Sin(float64(i)/5))
	}
	candles := mkCandles(closes, volumes)

	a := Run("ETH/USDT", "1h", candles)
	b := Run("ETH/USDT", "1h", candles)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs produced different results")
	}
}

func TestSimulateStopCheckedBeforeTarget(t *testing.T) {
	// One look-ahead bar spans both levels; the stop must win.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []models.Candle{
		{Timestamp: base, Close: 100},
		{Timestamp: base.Add(time.Hour), High: 110, Low: 90, Close: 100},
	}
	reason, price, _ := simulate(candles, 0, models.DirectionLong, 105, 95)
	if reason != models.ExitStopLoss || price != 95 {
		t.Fatalf("exit = (%s, %v), want (stop_loss, 95)", reason, price)
	}
}

func TestSimulateExpiresAtLastLookaheadClose(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, 10)
	for i := range candles {
		candles[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			High:      101, Low: 99, Close: 100 + float64(i)*0.01,
		}
	}
	reason, price, exitTime := simulate(candles, 0, models.DirectionLong, 150, 50)
	if reason != models.ExitExpired {
		t.Fatalf("reason = %s, want expired", reason)
	}
	last := candles[len(candles)-1]
	if price != last.Close || !exitTime.Equal(last.Timestamp) {
		t.Fatalf("expired exit = (%v, %v), want last close %v at %v", price, exitTime, last.Close, last.Timestamp)
	}
}

func TestAggregatorMetrics(t *testing.T) {
	var agg aggregator
	for _, pnl := range []float64{10, 5, -5} {
		agg.add(models.BacktestTrade{PnL: pnl, PnLPct: pnl})
	}
	var res models.BacktestResult
	agg.finish(&res)

	if res.TotalTrades != 3 || res.WinningTrades != 2 || res.LosingTrades != 1 {
		t.Fatalf("counts = %d/%d/%d", res.TotalTrades, res.WinningTrades, res.LosingTrades)
	}
	if math.Abs(res.WinRate-100.0*2/3) > 1e-9 {
		t.Fatalf("win rate = %v", res.WinRate)
	}
	if res.ProfitFactor != 3 {
		t.Fatalf("profit factor = %v, want 3", res.ProfitFactor)
	}
	if res.NetProfit != 10 {
		t.Fatalf("net profit = %v, want 10", res.NetProfit)
	}
	if res.LargestWin != 10 || res.LargestLoss != 5 {
		t.Fatalf("largest win/loss = %v/%v", res.LargestWin, res.LargestLoss)
	}
	if res.MaxConsecutiveWins != 2 || res.MaxConsecutiveLosses != 1 {
		t.Fatalf("streaks = %d/%d", res.MaxConsecutiveWins, res.MaxConsecutiveLosses)
	}
	if res.MaxDrawdown != 5 {
		t.Fatalf("max drawdown = %v, want 5", res.MaxDrawdown)
	}
	if res.SharpeRatio == 0 {
		t.Fatal("sharpe should be nonzero for varied returns")
	}
}

func TestAggregatorProfitFactorInfiniteWithoutLosses(t *testing.T) {
	var agg aggregator
	agg.add(models.BacktestTrade{PnL: 10, PnLPct: 1})
	agg.add(models.BacktestTrade{PnL: 4, PnLPct: 0.4})
	var res models.BacktestResult
	agg.finish(&res)
	if !math.IsInf(res.ProfitFactor, 1) {
		t.Fatalf("profit factor = %v, want +Inf", res.ProfitFactor)
	}
}

func TestSharpeZeroForSingleTrade(t *testing.T) {
	var agg aggregator
	agg.add(models.BacktestTrade{PnL: 10, PnLPct: 1})
	var res models.BacktestResult
	agg.finish(&res)
	if res.SharpeRatio != 0 {
		t.Fatalf("sharpe with one trade = %v, want 0", res.SharpeRatio)
	}
}
