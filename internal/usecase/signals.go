package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/service/cache"
)

const latestSignalsCacheTTL = 10 * time.Second

// SignalsUseCase serves signal read queries, with a short response cache in
// front of the store to absorb dashboard polling.
type SignalsUseCase struct {
	store domrepo.SignalStore
	cache cache.BytesCache
}

func NewSignalsUseCase(store domrepo.SignalStore, c cache.BytesCache) *SignalsUseCase {
	return &SignalsUseCase{store: store, cache: c}
}

type LatestSignalsParams struct {
	Symbol     string
	Limit      int
	ActiveOnly bool
}

type LatestSignalsResult struct {
	Count   int             `json:"count"`
	Signals []models.Signal `json:"signals"`
}

func (uc *SignalsUseCase) Latest(ctx context.Context, p LatestSignalsParams) (*LatestSignalsResult, error) {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 200 {
		p.Limit = 200
	}

	key := fmt.Sprintf("signals:latest:%s:%d:%t", p.Symbol, p.Limit, p.ActiveOnly)
	if uc.cache != nil {
		if b, ok, err := uc.cache.GetBytes(key); err == nil && ok {
			var cached LatestSignalsResult
			if err := json.Unmarshal(b, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	signals, err := uc.store.Latest(ctx, p.Symbol, p.Limit, p.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("latest signals: %w", err)
	}
	res := &LatestSignalsResult{Count: len(signals), Signals: signals}

	if uc.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			_ = uc.cache.SetBytes(key, b, latestSignalsCacheTTL)
		}
	}
	return res, nil
}
