package watchdog

import (
	"slices"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/models"
	"github.com/benmeehan/tool-watchdog/internal/scene"
)

var _ scene.Observer = (*Engine)(nil)

// newGroupLocked builds a cold group from def. Invalid tools are skipped and logged.
func (e *Engine) newGroupLocked(def scene.GroupDef, now time.Time) *group {
	g := &group{
		handle:   def.Handle,
		name:     def.Name,
		lastTick: now,
	}
	if def.RefreshInterval > 0 {
		g.interval = def.RefreshInterval
	}
	for _, td := range def.Tools {
		if err := g.addTool(td); err != nil {
			e.logger.Warn().Err(err).Str("group", def.Name).Msg("Skipping tool")
		}
	}
	return g
}

// OnGroupAdded registers a group. Adding a handle that already exists
// re-initializes it in place: comparison state and elapsed time start over.
func (e *Engine) OnGroupAdded(def scene.GroupDef) {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.groups[def.Handle]; !exists {
		e.order = append(e.order, def.Handle)
	}
	e.groups[def.Handle] = e.newGroupLocked(def, now)
	e.signalRefreshChanged()
	e.logger.Info().Str("group", def.Name).Int("tools", len(def.Tools)).Msg("Watching group")
}

// OnGroupRemoved drops a group and its tools.
func (e *Engine) OnGroupRemoved(handle models.GroupHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := e.groups[handle]
	if !ok {
		e.logger.Debug().Str("handle", string(handle)).Msg("Ignoring removal of unknown group")
		return
	}
	delete(e.groups, handle)
	e.order = slices.DeleteFunc(e.order, func(h models.GroupHandle) bool { return h == handle })
	e.signalRefreshChanged()
	e.logger.Info().Str("group", g.name).Msg("Stopped watching group")
}

// OnToolAdded adds the tool to the engine table.
func (e *Engine) OnToolAdded(handle models.GroupHandle, tool scene.ToolDef) error {
	return e.AddTool(handle, tool)
}

// OnSourceRemoved removes every tool that referenced the source.
func (e *Engine) OnSourceRemoved(sourceName string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, g := range e.groups {
		g.tools = slices.DeleteFunc(g.tools, func(t *tool) bool { return t.sourceName == sourceName })
	}
}

// OnSceneImported rebuilds the whole table from defs.
// Every tool becomes unobserved and elapsed time restarts from zero.
func (e *Engine) OnSceneImported(defs []scene.GroupDef) {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.groups = make(map[models.GroupHandle]*group, len(defs))
	e.order = e.order[:0]
	for _, def := range defs {
		if _, dup := e.groups[def.Handle]; dup {
			e.logger.Warn().Str("handle", string(def.Handle)).Msg("Duplicate group handle in import")
			continue
		}
		e.groups[def.Handle] = e.newGroupLocked(def, now)
		e.order = append(e.order, def.Handle)
	}
	e.elapsed = 0
	e.lastTick = now
	e.signalRefreshChanged()
	e.logger.Info().Int("groups", len(e.order)).Msg("Watchdog re-initialized from imported scene")
}
