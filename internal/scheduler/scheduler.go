package scheduler

import (
	"context"
	"time"

	"TradePulse/internal/usecase"
	pkgcache "TradePulse/pkg/cache"
	applogger "TradePulse/pkg/logger"

	"github.com/go-co-op/gocron"
)

const (
	DefaultGenerationInterval = 5 * time.Minute
	DefaultSweepInterval      = 10 * time.Minute

	generationLockKey = "scheduler:generation"
)

// Scheduler drives the periodic generation cycle and the expiry sweep.
type Scheduler struct {
	cron     *gocron.Scheduler
	gen      *usecase.SignalGeneratorUseCase
	expiry   *usecase.ExpiryUseCase
	locks    pkgcache.Service
	interval time.Duration
	sweep    time.Duration
	l        *applogger.Logger
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithGenerationInterval sets the cycle cadence.
func WithGenerationInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSweepInterval sets the expiry sweep cadence.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.sweep = d
		}
	}
}

// WithLocks enables a distributed lock so only one replica runs a cycle.
func WithLocks(c pkgcache.Service) Option {
	return func(s *Scheduler) { s.locks = c }
}

func New(gen *usecase.SignalGeneratorUseCase, expiry *usecase.ExpiryUseCase, l *applogger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		gen:      gen,
		expiry:   expiry,
		interval: DefaultGenerationInterval,
		sweep:    DefaultSweepInterval,
		l:        l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the jobs and runs them in the background.
func (s *Scheduler) Start() {
	_, _ = s.cron.Every(int(s.interval.Seconds())).Seconds().Do(s.runGeneration)
	_, _ = s.cron.Every(int(s.sweep.Seconds())).Seconds().Do(s.runSweep)
	s.cron.StartAsync()
	s.l.Info("scheduler started",
		applogger.Duration("generation_interval", s.interval),
		applogger.Duration("sweep_interval", s.sweep),
	)
}

// Stop halts job execution. Running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.l.Info("scheduler stopped")
}

func (s *Scheduler) runGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if s.locks != nil {
		ok, err := s.locks.TryLock(ctx, generationLockKey, s.interval)
		if err != nil {
			s.l.Warn("generation lock error", applogger.Error(err))
		} else if !ok {
			s.l.Debug("generation cycle held by another replica")
			return
		} else {
			defer func() {
				if err := s.locks.Unlock(context.Background(), generationLockKey); err != nil {
					s.l.Warn("generation unlock error", applogger.Error(err))
				}
			}()
		}
	}

	s.gen.RunCycle(ctx)
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.expiry.Sweep(ctx); err != nil {
		s.l.Error("expiry sweep error", applogger.Error(err))
	}
}
