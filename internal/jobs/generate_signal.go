package jobs

import (
	"context"
	"fmt"

	domrepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/usecase"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/queue"
)

// TypeGenerateSignal is the queue message type for async signal generation.
const TypeGenerateSignal = "signal.generate"

// GenerateSignalPayload is the queued request for one symbol evaluation.
type GenerateSignalPayload struct {
	Symbol   string `json:"symbol"`
	TF       string `json:"tf"`
	Lookback int    `json:"lookback"`
}

// GenerateSignalJob evaluates one symbol off the HTTP request path.
type GenerateSignalJob struct {
	gen *usecase.SignalGeneratorUseCase
	l   *applogger.Logger
}

var _ queue.Job = (*GenerateSignalJob)(nil)

func NewGenerateSignalJob(gen *usecase.SignalGeneratorUseCase, l *applogger.Logger) *GenerateSignalJob {
	return &GenerateSignalJob{gen: gen, l: l}
}

func (j *GenerateSignalJob) Name() string { return "generate-signal" }

func (j *GenerateSignalJob) Type() string { return TypeGenerateSignal }

func (j *GenerateSignalJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[GenerateSignalPayload](payload)
	if err != nil {
		return fmt.Errorf("parse generate payload: %w", err)
	}
	if p.Symbol == "" {
		return fmt.Errorf("generate payload missing symbol")
	}

	tf := domrepo.NormalizeTimeframe(p.TF)
	sig, skip, err := j.gen.Evaluate(ctx, p.Symbol, tf, p.Lookback)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", p.Symbol, err)
	}
	if sig == nil {
		j.l.Info("queued evaluation skipped",
			applogger.String("symbol", p.Symbol),
			applogger.String("reason", skip),
		)
	}
	return nil
}
