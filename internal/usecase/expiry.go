package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
)

// ExpiryUseCase flips is_active off for signals past their expires_at. The
// only mutation signals ever receive after creation.
type ExpiryUseCase struct {
	store   domrepo.SignalStore
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewExpiryUseCase(store domrepo.SignalStore, metrics domrepo.Metrics, l *applogger.Logger) *ExpiryUseCase {
	return &ExpiryUseCase{store: store, metrics: metrics, l: l}
}

// Sweep expires stale signals as of now.
func (uc *ExpiryUseCase) Sweep(ctx context.Context) (int64, error) {
	n, err := uc.store.ExpireStale(ctx, time.Now().UTC())
	if err != nil {
		uc.metrics.RecordError("expiry_sweep")
		return 0, fmt.Errorf("expiry sweep: %w", err)
	}
	if n > 0 {
		uc.l.Info("expiry sweep completed", applogger.Int64("expired", n))
	}
	return n, nil
}
