package watchdog

import (
	"fmt"
	"sync"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/constants"
	"github.com/benmeehan/tool-watchdog/internal/models"
	"github.com/benmeehan/tool-watchdog/internal/sources"
	"github.com/rs/zerolog"
)

// Event is delivered to listeners when at least one tool in a group changed state during a check.
type Event struct {
	Group models.GroupHandle
	At    time.Time
}

// Listener receives status events. Listeners run on the caller's goroutine
// after the engine lock is released, so they may query the engine.
type Listener func(Event)

type tool struct {
	name       string
	sourceName string
	source     sources.Source

	previous  uint64
	observed  bool
	available bool

	state      models.ToolState
	lastChange time.Time
}

type group struct {
	handle   models.GroupHandle
	name     string
	interval time.Duration // zero inherits Engine.refreshTime

	elapsed  time.Duration
	lastTick time.Time

	tools []*tool
}

// Engine owns the group/tool table and evaluates tool freshness.
// It is safe for concurrent use; one mutex guards the table.
type Engine struct {
	clock  Clock
	logger zerolog.Logger

	mu          sync.Mutex
	refreshTime time.Duration
	elapsed     time.Duration
	lastTick    time.Time
	groups      map[models.GroupHandle]*group
	order       []models.GroupHandle

	listeners      map[int]Listener
	nextListenerID int

	refreshChanged chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithStatusRefreshTime sets the initial refresh interval.
// Non-positive values leave the default in place.
func WithStatusRefreshTime(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.refreshTime = d
		}
	}
}

// NewEngine returns an Engine with an empty table. A nil clock uses the system clock.
func NewEngine(clock Clock, logger zerolog.Logger, opts ...Option) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	e := &Engine{
		clock:       clock,
		logger:      logger,
		refreshTime: constants.DefaultStatusRefreshTime,
		groups:      make(map[models.GroupHandle]*group),
		listeners:   make(map[int]Listener),

		refreshChanged: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lastTick = clock.Now()
	return e
}

// StatusRefreshTime returns the engine-wide refresh interval.
func (e *Engine) StatusRefreshTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refreshTime
}

// SetStatusRefreshTime changes the engine-wide refresh interval.
// Non-positive values are rejected and the previous value is kept.
func (e *Engine) SetStatusRefreshTime(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrMisconfiguredInterval, d)
	}
	e.mu.Lock()
	e.refreshTime = d
	e.mu.Unlock()
	e.signalRefreshChanged()

	e.logger.Info().Dur("status_refresh_time", d).Msg("Status refresh time updated")
	return nil
}

// SetGroupRefreshTime overrides the refresh interval of one group.
func (e *Engine) SetGroupRefreshTime(handle models.GroupHandle, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrMisconfiguredInterval, d)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groups[handle]
	if !ok {
		return invalidGroup(handle)
	}
	g.interval = d
	e.signalRefreshChanged()
	return nil
}

// EffectiveRefreshTime is the period a scheduler should tick at:
// the shortest of the engine interval and every group override.
func (e *Engine) EffectiveRefreshTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.refreshTime
	for _, g := range e.groups {
		if g.interval > 0 && g.interval < d {
			d = g.interval
		}
	}
	return d
}

// RefreshTimeChanged is signalled whenever EffectiveRefreshTime may have changed:
// on interval updates and when groups are added, removed or imported.
// Signals coalesce; a receiver should re-read EffectiveRefreshTime.
func (e *Engine) RefreshTimeChanged() <-chan struct{} {
	return e.refreshChanged
}

func (e *Engine) signalRefreshChanged() {
	select {
	case e.refreshChanged <- struct{}{}:
	default:
	}
}

// ElapsedTime is the wall-clock time accumulated by ticks since activation.
func (e *Engine) ElapsedTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsed
}

// Subscribe registers l for status events. The returned func removes it.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners[id] = l
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.listeners, id)
			e.mu.Unlock()
		})
	}
}

// listenersLocked copies the listener set. e.mu must be held.
func (e *Engine) listenersLocked() []Listener {
	out := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		out = append(out, l)
	}
	return out
}

func (e *Engine) emit(listeners []Listener, ev Event) {
	for _, l := range listeners {
		l(ev)
	}
}

func invalidGroup(handle models.GroupHandle) error {
	return fmt.Errorf("%w: group %s", ErrInvalidHandle, handle)
}
