package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/store"
)

// DefaultHousekeepingInterval is used when no interval is configured.
const DefaultHousekeepingInterval = time.Hour

// Sweeper drops idle in-memory state older than now. The memory rate
// limiter is one.
type Sweeper interface {
	Sweep(now time.Time) int
}

// HousekeepingService purges expired refresh sessions and sweeps idle
// rate-limit buckets on a fixed interval.
type HousekeepingService struct {
	Sessions store.Sessions
	Sweepers []Sweeper
	Logger   *slog.Logger
	Interval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHousekeepingService builds the service. A non-positive interval means
// DefaultHousekeepingInterval.
func NewHousekeepingService(sessions store.Sessions, logger *slog.Logger, interval time.Duration, sweepers ...Sweeper) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	return &HousekeepingService{
		Sessions: sessions,
		Sweepers: sweepers,
		Logger:   logger,
		Interval: interval,
	}
}

// Start runs a pass immediately and then once per Interval until Stop.
func (s *HousekeepingService) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop cancels the loop and waits for a running pass to return.
func (s *HousekeepingService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) loop(ctx context.Context) {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	for {
		passCtx, done := context.WithTimeout(ctx, s.Interval)
		_, _ = s.RunOnce(passCtx)
		done()

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// RunOnce does one pass and returns the number of sessions deleted. Only
// sessions expired for longer than store.ExpiredSessionRetention go. A
// session store error is logged and returned; sweepers still run.
func (s *HousekeepingService) RunOnce(ctx context.Context) (int64, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	deleted, err := s.Sessions.DeleteExpiredSessions(ctx, now.Add(-store.ExpiredSessionRetention))
	if err != nil {
		s.Logger.Error("purge expired sessions", "error", err)
	}

	var swept int
	for _, sw := range s.Sweepers {
		swept += sw.Sweep(now)
	}

	s.Logger.Info("housekeeping pass", "sessions_deleted", deleted, "buckets_swept", swept)
	return deleted, err
}
