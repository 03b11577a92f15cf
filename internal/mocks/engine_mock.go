package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// TickEngine is a mock of the engine surface driven by the scheduler.
type TickEngine struct {
	mock.Mock
}

func (m *TickEngine) UpdateWatchdogNodes() {
	m.Called()
}

func (m *TickEngine) EffectiveRefreshTime() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *TickEngine) RefreshTimeChanged() <-chan struct{} {
	args := m.Called()
	if ch, ok := args.Get(0).(<-chan struct{}); ok {
		return ch
	}
	return nil
}
