package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	pkgkafka "TradePulse/pkg/kafka"
)

// CandleIngestHandler consumes closed-candle messages from Kafka and writes
// them into the candle archive that the candles API and backtests read.
type CandleIngestHandler struct {
	topic   string
	store   domrepo.CandleStore
	metrics domrepo.Metrics
}

var _ pkgkafka.MessageHandler = (*CandleIngestHandler)(nil)

func NewCandleIngestHandler(topic string, store domrepo.CandleStore, metrics domrepo.Metrics) *CandleIngestHandler {
	return &CandleIngestHandler{topic: topic, store: store, metrics: metrics}
}

func (h *CandleIngestHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, tf, t, o, h, l, c, v} with t as the
// bar open time in epoch milliseconds.
func (h *CandleIngestHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol    string  `json:"symbol"`
		Timeframe string  `json:"tf"`
		T         int64   `json:"t"`
		O         float64 `json:"o"`
		H         float64 `json:"h"`
		L         float64 `json:"l"`
		C         float64 `json:"c"`
		V         float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("ingest_unmarshal")
		return fmt.Errorf("unmarshal candle message: %w", err)
	}
	if m.Symbol == "" {
		h.metrics.RecordError("ingest_invalid")
		return fmt.Errorf("candle message missing symbol")
	}

	tf := domrepo.NormalizeTimeframe(m.Timeframe)
	candle := models.Candle{
		Symbol:    m.Symbol,
		Timestamp: time.UnixMilli(m.T).UTC(),
		Open:      m.O,
		High:      m.H,
		Low:       m.L,
		Close:     m.C,
		Volume:    m.V,
	}

	start := time.Now()
	if err := h.store.StoreBatch(ctx, []models.Candle{candle}, tf); err != nil {
		h.metrics.RecordError("ingest_store")
		return fmt.Errorf("store candle: %w", err)
	}
	h.metrics.RecordIngestLatency(time.Since(start).Seconds())
	h.metrics.RecordCandleStored(m.Symbol)
	return nil
}
