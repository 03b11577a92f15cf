package watchdog

import (
	"errors"
	"fmt"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/models"
	"github.com/benmeehan/tool-watchdog/internal/scene"
)

// AddTool appends a tool to a group. The tool starts unobserved,
// so its first check marks it up to date whatever its timestamp.
func (e *Engine) AddTool(handle models.GroupHandle, def scene.ToolDef) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.groups[handle]
	if !ok {
		return invalidGroup(handle)
	}
	if err := g.addTool(def); err != nil {
		return err
	}
	e.logger.Debug().Str("group", g.name).Str("tool", def.Name).Str("source", def.SourceName).Msg("Tool added")
	return nil
}

func (g *group) addTool(def scene.ToolDef) error {
	if def.Source == nil {
		return fmt.Errorf("tool %s in group %s has no source", def.Name, g.name)
	}
	for _, t := range g.tools {
		if t.name == def.Name {
			return fmt.Errorf("%w: %s in group %s", ErrDuplicateTool, def.Name, g.name)
		}
	}
	g.tools = append(g.tools, &tool{
		name:       def.Name,
		sourceName: def.SourceName,
		source:     def.Source,
		available:  true,
		state:      models.ToolOutOfDate,
	})
	return nil
}

// RemoveTool removes a tool from a group.
func (e *Engine) RemoveTool(handle models.GroupHandle, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.groups[handle]
	if !ok {
		return invalidGroup(handle)
	}
	for i, t := range g.tools {
		if t.name == name {
			g.tools = append(g.tools[:i], g.tools[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: tool %s in group %s", ErrInvalidHandle, name, g.name)
}

// UpdateToolStatus checks every tool of one group and notifies listeners
// once if any tool changed state. Elapsed time is not touched.
func (e *Engine) UpdateToolStatus(handle models.GroupHandle) error {
	now := e.clock.Now()

	e.mu.Lock()
	g, ok := e.groups[handle]
	if !ok {
		e.mu.Unlock()
		return invalidGroup(handle)
	}
	changed := e.updateGroupLocked(g, now)
	listeners := e.listenersLocked()
	e.mu.Unlock()

	if changed {
		e.emit(listeners, Event{Group: handle, At: now})
	}
	return nil
}

// UpdateWatchdogNodes is the periodic tick. It checks every group in registration
// order and advances each group's elapsed time by the wall-clock gap since its last tick.
func (e *Engine) UpdateWatchdogNodes() {
	now := e.clock.Now()

	e.mu.Lock()
	var changed []models.GroupHandle
	for _, h := range e.order {
		g := e.groups[h]
		if e.updateGroupLocked(g, now) {
			changed = append(changed, h)
		}
		g.elapsed += sinceLast(g.lastTick, now)
		g.lastTick = now
	}
	e.elapsed += sinceLast(e.lastTick, now)
	e.lastTick = now
	listeners := e.listenersLocked()
	e.mu.Unlock()

	for _, h := range changed {
		e.emit(listeners, Event{Group: h, At: now})
	}
}

// sinceLast is never negative, so a clock stepping backwards cannot shrink elapsed time.
func sinceLast(last, now time.Time) time.Duration {
	if d := now.Sub(last); d > 0 {
		return d
	}
	return 0
}

// updateGroupLocked evaluates every tool in g and reports whether any state changed.
func (e *Engine) updateGroupLocked(g *group, now time.Time) bool {
	changed := false
	for _, t := range g.tools {
		prev := t.state
		t.state = e.evaluate(g, t)
		if t.state != prev {
			t.lastChange = now
			changed = true
			e.logger.Debug().
				Str("group", g.name).
				Str("tool", t.name).
				Str("from", string(prev)).
				Str("to", string(t.state)).
				Msg("Tool state changed")
		}
	}
	return changed
}

func (e *Engine) evaluate(g *group, t *tool) models.ToolState {
	stamp, err := readTimestamp(t)
	if err != nil {
		if t.available {
			e.logger.Warn().Err(err).Str("group", g.name).Str("tool", t.name).Msg("Tool source unavailable")
		}
		t.available = false
		return models.ToolOutOfDate
	}
	if !t.available {
		e.logger.Info().Str("group", g.name).Str("tool", t.name).Msg("Tool source available again")
	}
	t.available = true

	if !t.observed {
		t.observed = true
		t.previous = stamp
		return models.ToolUpToDate
	}

	state := models.ToolOutOfDate
	if stamp != t.previous {
		state = models.ToolUpToDate
	}
	t.previous = stamp
	return state
}

var errSourcePanicked = errors.New("source panicked")

// readTimestamp isolates the tick from a misbehaving source.
func readTimestamp(t *tool) (stamp uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errSourcePanicked, r)
		}
	}()
	return t.source.Timestamp()
}
