package services_test

import (
	"testing"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/mocks"
	"github.com/benmeehan/tool-watchdog/internal/scene"
	"github.com/benmeehan/tool-watchdog/internal/services"
	"github.com/benmeehan/tool-watchdog/internal/sources"
	"github.com/benmeehan/tool-watchdog/internal/watchdog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSchedulerService_StartStop tests the lifecycle errors of the scheduler.
func TestSchedulerService_StartStop(t *testing.T) {
	// Setup
	engine := new(mocks.TickEngine)
	engine.On("EffectiveRefreshTime").Return(time.Hour)
	engine.On("RefreshTimeChanged").Return(nil)

	s := services.NewSchedulerService(engine, zerolog.Nop())

	// Execute
	err := s.Start()
	assert.NoError(t, err)

	// Try to start again (should fail)
	err = s.Start()
	assert.EqualError(t, err, "scheduler service is already running")

	// Cleanup
	assert.NoError(t, s.Stop())

	// Try to stop again (should fail)
	assert.EqualError(t, s.Stop(), "scheduler service is not running")
}

// TestSchedulerService_TicksEngine tests that the engine is ticked at its refresh interval.
func TestSchedulerService_TicksEngine(t *testing.T) {
	// Setup
	engine := new(mocks.TickEngine)
	engine.On("EffectiveRefreshTime").Return(10 * time.Millisecond)
	engine.On("RefreshTimeChanged").Return(nil)
	engine.On("UpdateWatchdogNodes").Return()

	s := services.NewSchedulerService(engine, zerolog.Nop())

	// Execute
	require.NoError(t, s.Start())
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Stop())

	// Assert
	engine.AssertCalled(t, "UpdateWatchdogNodes")
	engine.AssertExpectations(t)
}

// TestSchedulerService_DrivesRealEngine tests elapsed time accumulating under a real scheduler.
func TestSchedulerService_DrivesRealEngine(t *testing.T) {
	// Setup
	engine := watchdog.NewEngine(nil, zerolog.Nop(), watchdog.WithStatusRefreshTime(10*time.Millisecond))
	counter := sources.NewCounter()
	engine.OnGroupAdded(scene.GroupDef{
		Handle: "G",
		Name:   "G",
		Tools:  []scene.ToolDef{{Name: "T", SourceName: "c", Source: counter}},
	})

	s := services.NewSchedulerService(engine, zerolog.Nop())

	// Execute
	require.NoError(t, s.Start())
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Stop())

	// Assert
	status, err := engine.Group("G")
	require.NoError(t, err)
	assert.Greater(t, status.ElapsedActive, time.Duration(0))
	assert.True(t, status.Tools[0].Observed)
}

func newSlowEngine(t *testing.T) *watchdog.Engine {
	t.Helper()
	engine := watchdog.NewEngine(nil, zerolog.Nop(), watchdog.WithStatusRefreshTime(time.Hour))
	engine.OnGroupAdded(scene.GroupDef{
		Handle: "G",
		Name:   "G",
		Tools:  []scene.ToolDef{{Name: "T", SourceName: "c", Source: sources.NewCounter()}},
	})
	return engine
}

func observed(engine *watchdog.Engine) bool {
	status, err := engine.Group("G")
	return err == nil && len(status.Tools) == 1 && status.Tools[0].Observed
}

// TestSchedulerService_ShorterRefreshTimeTakesEffectImmediately tests that the ticker is re-armed
// as soon as the refresh time changes, not after the old interval elapses.
func TestSchedulerService_ShorterRefreshTimeTakesEffectImmediately(t *testing.T) {
	// Setup
	engine := newSlowEngine(t)
	s := services.NewSchedulerService(engine, zerolog.Nop())
	require.NoError(t, s.Start())
	defer func() { assert.NoError(t, s.Stop()) }()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, observed(engine))

	// Execute
	require.NoError(t, engine.SetStatusRefreshTime(10*time.Millisecond))

	// Assert
	assert.Eventually(t, func() bool { return observed(engine) }, time.Second, 5*time.Millisecond)
}

// TestSchedulerService_GroupOverrideTakesEffectImmediately tests re-arming on a per-group interval.
func TestSchedulerService_GroupOverrideTakesEffectImmediately(t *testing.T) {
	// Setup
	engine := newSlowEngine(t)
	s := services.NewSchedulerService(engine, zerolog.Nop())
	require.NoError(t, s.Start())
	defer func() { assert.NoError(t, s.Stop()) }()

	// Execute
	require.NoError(t, engine.SetGroupRefreshTime("G", 10*time.Millisecond))

	// Assert
	assert.Eventually(t, func() bool { return observed(engine) }, time.Second, 5*time.Millisecond)
}
