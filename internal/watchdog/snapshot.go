package watchdog

import (
	"fmt"

	"github.com/benmeehan/tool-watchdog/internal/models"
)

// Group returns the current status of one group.
func (e *Engine) Group(handle models.GroupHandle) (models.GroupStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.groups[handle]
	if !ok {
		return models.GroupStatus{}, invalidGroup(handle)
	}
	return e.snapshotLocked(g), nil
}

// Groups returns the status of every group in registration order.
func (e *Engine) Groups() []models.GroupStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.GroupStatus, 0, len(e.order))
	for _, h := range e.order {
		out = append(out, e.snapshotLocked(e.groups[h]))
	}
	return out
}

// ToolState returns the state of a single tool.
func (e *Engine) ToolState(handle models.GroupHandle, name string) (models.ToolState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.groups[handle]
	if !ok {
		return "", invalidGroup(handle)
	}
	for _, t := range g.tools {
		if t.name == name {
			return t.state, nil
		}
	}
	return "", fmt.Errorf("%w: tool %s in group %s", ErrInvalidHandle, name, g.name)
}

func (e *Engine) snapshotLocked(g *group) models.GroupStatus {
	interval := g.interval
	if interval == 0 {
		interval = e.refreshTime
	}
	status := models.GroupStatus{
		ID:              g.handle,
		Name:            g.name,
		RefreshInterval: interval,
		ElapsedActive:   g.elapsed,
		Tools:           make([]models.ToolStatus, 0, len(g.tools)),
	}
	for _, t := range g.tools {
		ts := models.ToolStatus{
			Name:      t.name,
			Source:    t.sourceName,
			State:     t.state,
			Available: t.available,
			Observed:  t.observed,
		}
		if !t.lastChange.IsZero() {
			lastChange := t.lastChange
			ts.LastChange = &lastChange
		}
		status.Tools = append(status.Tools, ts)
	}
	return status
}
