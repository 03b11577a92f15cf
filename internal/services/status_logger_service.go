package services

import (
	"errors"
	"sync"

	"github.com/benmeehan/tool-watchdog/internal/watchdog"
	"github.com/rs/zerolog"
)

// StatusLoggerService logs every tool's state whenever its group changes.
type StatusLoggerService struct {
	Engine StatusSource
	Logger zerolog.Logger

	mu          sync.Mutex
	unsubscribe func()
}

// NewStatusLoggerService initializes a new StatusLoggerService.
func NewStatusLoggerService(engine StatusSource, logger zerolog.Logger) *StatusLoggerService {
	return &StatusLoggerService{Engine: engine, Logger: logger}
}

// Start subscribes to engine status events.
func (s *StatusLoggerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.Logger.Warn().Msg("StatusLoggerService is already running")
		return errors.New("status logger service is already running")
	}
	s.unsubscribe = s.Engine.Subscribe(s.handleEvent)
	s.Logger.Info().Msg("StatusLoggerService started successfully")
	return nil
}

// Stop unsubscribes from the engine. Events already being delivered may still be logged.
func (s *StatusLoggerService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe == nil {
		s.Logger.Warn().Msg("StatusLoggerService is not running")
		return errors.New("status logger service is not running")
	}
	s.unsubscribe()
	s.unsubscribe = nil
	s.Logger.Info().Msg("StatusLoggerService stopped successfully")
	return nil
}

func (s *StatusLoggerService) handleEvent(ev watchdog.Event) {
	status, err := s.Engine.Group(ev.Group)
	if err != nil {
		// The group was removed between the tick and this callback.
		s.Logger.Debug().Err(err).Msg("Skipping status of vanished group")
		return
	}

	for _, t := range status.Tools {
		event := s.Logger.Info().
			Str("group", status.Name).
			Str("tool", t.Name).
			Str("state", string(t.State)).
			Bool("available", t.Available)
		if t.LastChange != nil {
			event = event.Time("last_change", *t.LastChange)
		}
		event.Msg("Tool status")
	}
}
