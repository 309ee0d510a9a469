package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
)

// PGSignalStore implements SignalStore on Postgres via gorm. Signals are
// insert-only; the single permitted mutation is the expiry sweep.
type PGSignalStore struct {
	db *gorm.DB
	l  *applogger.Logger
}

var _ domrepo.SignalStore = (*PGSignalStore)(nil)

// Migrate creates or updates the signals table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Signal{}); err != nil {
		return fmt.Errorf("migrate signals: %w", err)
	}
	return nil
}

func NewPGSignalStore(db *gorm.DB) *PGSignalStore {
	return &PGSignalStore{db: db}
}

// SetLogger injects a structured logger.
func (s *PGSignalStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *PGSignalStore) Create(ctx context.Context, sig *models.Signal) error {
	if err := s.db.WithContext(ctx).Create(sig).Error; err != nil {
		return fmt.Errorf("create signal: %w", err)
	}
	if s.l != nil {
		s.l.Info("signal persisted",
			applogger.String("symbol", sig.Symbol),
			applogger.String("direction", string(sig.Direction)),
			applogger.Float64("confidence", sig.Confidence),
		)
	}
	return nil
}

func (s *PGSignalStore) Latest(ctx context.Context, symbol string, limit int, activeOnly bool) ([]models.Signal, error) {
	if limit <= 0 {
		limit = 20
	}

	q := s.db.WithContext(ctx).Model(&models.Signal{})
	if symbol != "" {
		q = q.Where("symbol = ?", symbol)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var out []models.Signal
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("latest signals: %w", err)
	}
	return out, nil
}

func (s *PGSignalStore) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Where("is_active = ? AND expires_at <= ?", true, now).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("expire signals: %w", res.Error)
	}
	if s.l != nil && res.RowsAffected > 0 {
		s.l.Info("expired stale signals", applogger.Int("count", int(res.RowsAffected)))
	}
	return res.RowsAffected, nil
}
