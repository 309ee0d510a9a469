package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	pkghttp "TradePulse/pkg/http"
	applogger "TradePulse/pkg/logger"

	"encoding/json"
)

const (
	maxPageSize = 1000

	// limiterKey is the token bucket shared by all candle requests; the
	// venue rate-limits per API key, not per symbol.
	limiterKey = "klines"
)

// rateLimiter is satisfied by the token-bucket limiter in
// internal/service/ratelimit.
type rateLimiter interface {
	Allow(key string, capacity, refillPerSec float64) bool
}

// Client implements MarketData against a Binance-style klines REST API.
// Pagination pauses on the shared token bucket between page requests.
type Client struct {
	baseURL      string
	http         *pkghttp.Client
	limiter      rateLimiter
	capacity     float64
	refillPerSec float64
	l            *applogger.Logger
}

var _ domrepo.MarketData = (*Client)(nil)

func New(baseURL string, limiter rateLimiter, requestsPerSec float64, l *applogger.Logger) *Client {
	if requestsPerSec <= 0 {
		requestsPerSec = 5
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         pkghttp.NewClient(pkghttp.WithTimeout(15 * time.Second)),
		limiter:      limiter,
		capacity:     requestsPerSec,
		refillPerSec: requestsPerSec,
		l:            l,
	}
}

func (c *Client) FetchCandles(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) ([]models.Candle, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	params := map[string][]string{
		"symbol":   {venueSymbol(symbol)},
		"interval": {string(tf)},
		"limit":    {strconv.Itoa(limit)},
	}
	return c.fetchPage(ctx, symbol, params)
}

func (c *Client) FetchCandleRange(ctx context.Context, symbol string, tf domrepo.Timeframe, from, to time.Time) ([]models.Candle, error) {
	var out []models.Candle
	since := from.UnixMilli()
	end := to.UnixMilli()

	for since < end {
		params := map[string][]string{
			"symbol":    {venueSymbol(symbol)},
			"interval":  {string(tf)},
			"limit":     {strconv.Itoa(maxPageSize)},
			"startTime": {strconv.FormatInt(since, 10)},
			"endTime":   {strconv.FormatInt(end, 10)},
		}
		page, err := c.fetchPage(ctx, symbol, params)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		out = append(out, page...)
		since = page[len(page)-1].Timestamp.UnixMilli() + 1
	}

	if c.l != nil {
		c.l.Info("fetched candle range",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("candles", len(out)),
		)
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, symbol string, params map[string][]string) ([]models.Candle, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.http.SendRequest(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + "/api/v3/klines",
		QueryParams: params,
	})
	if err != nil {
		return nil, fmt.Errorf("klines %s: %w: %v", symbol, domrepo.ErrExchangeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("klines %s: %w", symbol, domrepo.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("klines %s: %w: status %d: %s", symbol, domrepo.ErrExchangeUnavailable, resp.StatusCode, body)
	}

	var raw [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode klines %s: %w", symbol, err)
	}

	out := make([]models.Candle, 0, len(raw))
	for _, row := range raw {
		candle, err := parseKline(symbol, row)
		if err != nil {
			return nil, fmt.Errorf("parse kline %s: %w", symbol, err)
		}
		out = append(out, candle)
	}
	return out, nil
}

// wait blocks until a rate-limit token is available or the context ends.
func (c *Client) wait(ctx context.Context) error {
	for !c.limiter.Allow(limiterKey, c.capacity, c.refillPerSec) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil
}

// parseKline decodes one kline row: open time in ms followed by OHLCV as
// decimal strings.
func parseKline(symbol string, row []json.RawMessage) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("kline row has %d fields", len(row))
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return models.Candle{}, fmt.Errorf("open time: %w", err)
	}

	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		var s string
		if err := json.Unmarshal(row[i], &s); err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i-1] = f
	}

	return models.Candle{
		Symbol:    symbol,
		Timestamp: time.UnixMilli(openTime).UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

// venueSymbol converts "BTC/USDT" to the venue's "BTCUSDT" form.
func venueSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}
