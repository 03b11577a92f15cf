package sources

import (
	"fmt"
	"strings"
	"sync"

	"github.com/benmeehan/tool-watchdog/internal/utils"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/process"
)

// ProcessSource uses the accumulated CPU time of a named process as its timestamp.
// A process that is alive and working keeps advancing; one that hangs idle or exits goes stale.
type ProcessSource struct {
	names  map[string]struct{}
	logger zerolog.Logger

	mu  sync.Mutex
	pid int32 // last matching process, zero when unknown
}

// NewProcessSource watches the first running process whose name matches one of names,
// compared case-insensitively.
func NewProcessSource(logger zerolog.Logger, names ...string) *ProcessSource {
	lower := make([]string, 0, len(names))
	for _, n := range names {
		lower = append(lower, strings.ToLower(n))
	}
	return &ProcessSource{
		names:  utils.SliceToSet(lower),
		logger: logger,
	}
}

// Timestamp returns the process's user+system CPU time in milliseconds.
func (p *ProcessSource) Timestamp() (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	proc, err := p.find()
	if err != nil {
		return 0, err
	}

	times, err := proc.Times()
	if err != nil {
		p.pid = 0
		return 0, fmt.Errorf("%w: reading cpu times of pid %d: %v", ErrSourceUnavailable, proc.Pid, err)
	}
	return uint64((times.User + times.System) * 1000), nil
}

// find returns the cached process if it still matches, otherwise scans the process table.
func (p *ProcessSource) find() (*process.Process, error) {
	if p.pid != 0 {
		if proc, err := process.NewProcess(p.pid); err == nil && p.matches(proc) {
			return proc, nil
		}
		p.pid = 0
	}

	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("%w: listing processes: %v", ErrSourceUnavailable, err)
	}
	for _, proc := range procs {
		if p.matches(proc) {
			p.pid = proc.Pid
			p.logger.Debug().Int32("pid", proc.Pid).Msg("Matched watched process")
			return proc, nil
		}
	}
	return nil, fmt.Errorf("%w: no running process named %v", ErrSourceUnavailable, p.nameList())
}

func (p *ProcessSource) matches(proc *process.Process) bool {
	name, err := proc.Name()
	if err != nil {
		return false
	}
	_, ok := p.names[strings.ToLower(name)]
	return ok
}

func (p *ProcessSource) nameList() []string {
	out := make([]string, 0, len(p.names))
	for n := range p.names {
		out = append(out, n)
	}
	return out
}
