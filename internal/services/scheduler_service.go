package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TickEngine is the part of the watchdog engine the scheduler drives.
type TickEngine interface {
	UpdateWatchdogNodes()
	EffectiveRefreshTime() time.Duration
	RefreshTimeChanged() <-chan struct{}
}

// SchedulerService calls the engine's tick periodically.
// Ticks never overlap: the next one is only taken after the previous returns.
type SchedulerService struct {
	Engine TickEngine
	Logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSchedulerService initializes a new SchedulerService.
func NewSchedulerService(engine TickEngine, logger zerolog.Logger) *SchedulerService {
	return &SchedulerService{
		Engine: engine,
		Logger: logger,
	}
}

// Start launches the tick loop in a separate goroutine.
func (s *SchedulerService) Start() error {
	if s.ctx != nil {
		s.Logger.Warn().Msg("SchedulerService is already running")
		return errors.New("scheduler service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runTickLoop(s.ctx)
	}()

	s.Logger.Info().Dur("interval", s.Engine.EffectiveRefreshTime()).Msg("SchedulerService started successfully")
	return nil
}

// Stop halts future ticks and waits for an in-flight tick to finish.
func (s *SchedulerService) Stop() error {
	if s.ctx == nil {
		s.Logger.Warn().Msg("SchedulerService is not running")
		return errors.New("scheduler service is not running")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	s.Logger.Info().Msg("SchedulerService stopped successfully")
	return nil
}

// runTickLoop ticks the engine, re-arming the ticker whenever the refresh interval changes.
func (s *SchedulerService) runTickLoop(ctx context.Context) {
	interval := s.Engine.EffectiveRefreshTime()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	changed := s.Engine.RefreshTimeChanged()

	for {
		select {
		case <-ticker.C:
			s.Engine.UpdateWatchdogNodes()

		case <-changed:
			if next := s.Engine.EffectiveRefreshTime(); next > 0 && next != interval {
				s.Logger.Info().Dur("from", interval).Dur("to", next).Msg("Refresh interval changed")
				interval = next
				ticker.Reset(interval)
			}

		case <-ctx.Done():
			s.Logger.Info().Msg("SchedulerService stopping gracefully")
			return
		}
	}
}
