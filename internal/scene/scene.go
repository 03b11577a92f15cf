// Package scene holds the watchdog groups and tool sources known to the agent
// and tells observers when they change.
package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/models"
	"github.com/benmeehan/tool-watchdog/internal/sources"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownGroup     = errors.New("unknown watchdog group")
	ErrUnknownSource    = errors.New("unknown source")
	ErrDuplicateSource  = errors.New("source already registered")
	ErrDuplicateToolDef = errors.New("tool already attached to group")
)

// ToolDef binds a tool name to the source it monitors.
// The scene owns the source; tools only reference it.
type ToolDef struct {
	Name       string
	SourceName string
	Source     sources.Source
}

// GroupDef describes a watchdog group as registered in the scene.
type GroupDef struct {
	Handle          models.GroupHandle
	Name            string
	RefreshInterval time.Duration // zero inherits the engine default
	Tools           []ToolDef
}

func (d GroupDef) clone() GroupDef {
	d.Tools = slices.Clone(d.Tools)
	return d
}

// Observer receives scene membership notifications.
// Notifications are delivered one change at a time, in the order the changes were made.
// Observers must not call back into the scene's mutating methods.
type Observer interface {
	OnGroupAdded(def GroupDef)
	OnGroupRemoved(handle models.GroupHandle)
	OnToolAdded(handle models.GroupHandle, tool ToolDef) error
	OnSourceRemoved(sourceName string)
	OnSceneImported(defs []GroupDef)
}

// Scene is an in-memory registry of watchdog groups and sources.
type Scene struct {
	sources cmap.ConcurrentMap[string, sources.Source]

	// membershipMu is held across a membership change and its notifications,
	// so observers see changes in the order the scene applied them.
	membershipMu sync.Mutex

	mu        sync.RWMutex
	groups    map[models.GroupHandle]*GroupDef
	order     []models.GroupHandle
	observers []Observer

	logger zerolog.Logger
}

// New creates an empty Scene.
func New(logger zerolog.Logger) *Scene {
	return &Scene{
		sources: cmap.New[sources.Source](),
		groups:  make(map[models.GroupHandle]*GroupDef),
		logger:  logger,
	}
}

// AddObserver registers o for all future notifications.
func (s *Scene) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Scene) observersSnapshot() []Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.observers)
}

// AddSource registers src under name.
func (s *Scene) AddSource(name string, src sources.Source) error {
	if src == nil {
		return fmt.Errorf("source %q is nil", name)
	}
	if !s.sources.SetIfAbsent(name, src) {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, name)
	}
	s.logger.Debug().Str("source", name).Msg("Source registered")
	return nil
}

// Source returns the source registered under name.
func (s *Scene) Source(name string) (sources.Source, bool) {
	return s.sources.Get(name)
}

// SourceNames returns the names of all registered sources.
func (s *Scene) SourceNames() []string {
	names := s.sources.Keys()
	slices.Sort(names)
	return names
}

// RemoveSource unregisters a source, stops it if it holds resources,
// and detaches every tool that referenced it.
func (s *Scene) RemoveSource(name string) error {
	s.membershipMu.Lock()
	defer s.membershipMu.Unlock()

	src, ok := s.sources.Pop(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}

	s.mu.Lock()
	for _, g := range s.groups {
		g.Tools = slices.DeleteFunc(g.Tools, func(t ToolDef) bool { return t.SourceName == name })
	}
	s.mu.Unlock()

	for _, o := range s.observersSnapshot() {
		o.OnSourceRemoved(name)
	}

	if stopper, ok := src.(sources.Stopper); ok {
		if err := stopper.Stop(); err != nil {
			s.logger.Warn().Err(err).Str("source", name).Msg("Failed to stop removed source")
		}
	}
	s.logger.Info().Str("source", name).Msg("Source removed")
	return nil
}

// AddGroup registers a new, empty watchdog group and returns its handle.
func (s *Scene) AddGroup(name string, refreshInterval time.Duration) models.GroupHandle {
	s.membershipMu.Lock()
	defer s.membershipMu.Unlock()

	def := &GroupDef{
		Handle:          models.GroupHandle(uuid.NewString()),
		Name:            name,
		RefreshInterval: refreshInterval,
	}

	s.mu.Lock()
	s.groups[def.Handle] = def
	s.order = append(s.order, def.Handle)
	snapshot := def.clone()
	s.mu.Unlock()

	for _, o := range s.observersSnapshot() {
		o.OnGroupAdded(snapshot)
	}
	s.logger.Info().Str("group", name).Str("handle", string(def.Handle)).Msg("Watchdog group added")
	return def.Handle
}

// RemoveGroup unregisters a watchdog group.
func (s *Scene) RemoveGroup(handle models.GroupHandle) error {
	s.membershipMu.Lock()
	defer s.membershipMu.Unlock()

	s.mu.Lock()
	if _, ok := s.groups[handle]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownGroup, handle)
	}
	delete(s.groups, handle)
	s.order = slices.DeleteFunc(s.order, func(h models.GroupHandle) bool { return h == handle })
	s.mu.Unlock()

	for _, o := range s.observersSnapshot() {
		o.OnGroupRemoved(handle)
	}
	s.logger.Info().Str("handle", string(handle)).Msg("Watchdog group removed")
	return nil
}

// AttachTool adds a tool watching sourceName to the group.
// If any observer rejects the tool, it is detached again and the errors are returned.
func (s *Scene) AttachTool(handle models.GroupHandle, toolName, sourceName string) error {
	s.membershipMu.Lock()
	defer s.membershipMu.Unlock()

	src, ok := s.sources.Get(sourceName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, sourceName)
	}
	tool := ToolDef{Name: toolName, SourceName: sourceName, Source: src}

	s.mu.Lock()
	g, ok := s.groups[handle]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownGroup, handle)
	}
	if slices.ContainsFunc(g.Tools, func(t ToolDef) bool { return t.Name == toolName }) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateToolDef, toolName)
	}
	g.Tools = append(g.Tools, tool)
	s.mu.Unlock()

	var err error
	for _, o := range s.observersSnapshot() {
		err = errors.Join(err, o.OnToolAdded(handle, tool))
	}
	if err != nil {
		s.mu.Lock()
		if g, ok := s.groups[handle]; ok {
			g.Tools = slices.DeleteFunc(g.Tools, func(t ToolDef) bool { return t.Name == toolName })
		}
		s.mu.Unlock()
		return fmt.Errorf("attaching tool %s: %w", toolName, err)
	}
	return nil
}

// Import replaces every group in the scene with defs and notifies observers once.
// Tool sources are resolved by SourceName; empty handles are assigned.
func (s *Scene) Import(defs []GroupDef) error {
	s.membershipMu.Lock()
	defer s.membershipMu.Unlock()

	imported := make([]GroupDef, 0, len(defs))
	for _, d := range defs {
		d = d.clone()
		if d.Handle == "" {
			d.Handle = models.GroupHandle(uuid.NewString())
		}
		for i, t := range d.Tools {
			src, ok := s.sources.Get(t.SourceName)
			if !ok {
				return fmt.Errorf("group %s tool %s: %w: %s", d.Name, t.Name, ErrUnknownSource, t.SourceName)
			}
			d.Tools[i].Source = src
		}
		imported = append(imported, d)
	}

	s.mu.Lock()
	s.groups = make(map[models.GroupHandle]*GroupDef, len(imported))
	s.order = s.order[:0]
	for i := range imported {
		d := imported[i].clone()
		s.groups[d.Handle] = &d
		s.order = append(s.order, d.Handle)
	}
	s.mu.Unlock()

	for _, o := range s.observersSnapshot() {
		o.OnSceneImported(cloneDefs(imported))
	}
	s.logger.Info().Int("groups", len(imported)).Msg("Scene imported")
	return nil
}

// Group returns the definition of one group.
func (s *Scene) Group(handle models.GroupHandle) (GroupDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[handle]
	if !ok {
		return GroupDef{}, fmt.Errorf("%w: %s", ErrUnknownGroup, handle)
	}
	return g.clone(), nil
}

// Groups returns every group in registration order.
func (s *Scene) Groups() []GroupDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GroupDef, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, s.groups[h].clone())
	}
	return out
}

// Close stops every source that holds resources.
func (s *Scene) Close() error {
	var err error
	for name, src := range s.sources.Items() {
		if stopper, ok := src.(sources.Stopper); ok {
			if stopErr := stopper.Stop(); stopErr != nil {
				err = errors.Join(err, fmt.Errorf("stopping source %s: %w", name, stopErr))
			}
		}
	}
	return err
}

func cloneDefs(defs []GroupDef) []GroupDef {
	out := make([]GroupDef, len(defs))
	for i, d := range defs {
		out[i] = d.clone()
	}
	return out
}
