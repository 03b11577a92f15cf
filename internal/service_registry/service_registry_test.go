package service_registry_test

import (
	"errors"
	"testing"

	"github.com/benmeehan/tool-watchdog/internal/constants"
	"github.com/benmeehan/tool-watchdog/internal/mocks"
	"github.com/benmeehan/tool-watchdog/internal/service_registry"
	"github.com/benmeehan/tool-watchdog/internal/utils"
	"github.com/benmeehan/tool-watchdog/internal/watchdog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	name     string
	log      *[]string
	startErr error
}

func (s *recordingService) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	*s.log = append(*s.log, "start "+s.name)
	return nil
}

func (s *recordingService) Stop() error {
	*s.log = append(*s.log, "stop "+s.name)
	return nil
}

func TestServiceRegistry_StartStopOrder(t *testing.T) {
	var calls []string
	sr := service_registry.NewServiceRegistry(nil, nil, zerolog.Nop())
	sr.RegisterService("a", &recordingService{name: "a", log: &calls})
	sr.RegisterService("b", &recordingService{name: "b", log: &calls})
	sr.RegisterService("a", &recordingService{name: "dup", log: &calls})

	require.NoError(t, sr.StartServices())
	require.NoError(t, sr.StopServices())

	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, calls)
}

func TestServiceRegistry_RollsBackOnStartFailure(t *testing.T) {
	var calls []string
	sr := service_registry.NewServiceRegistry(nil, nil, zerolog.Nop())
	sr.RegisterService("a", &recordingService{name: "a", log: &calls})
	sr.RegisterService("b", &recordingService{name: "b", log: &calls, startErr: errors.New("nope")})

	err := sr.StartServices()

	assert.ErrorContains(t, err, "nope")
	assert.Equal(t, []string{"start a", "stop a"}, calls)
}

func TestServiceRegistry_RegisterServicesFromConfig(t *testing.T) {
	var cfg utils.Config
	cfg.Services.Scheduler.Enabled = true
	cfg.Services.StatusLogger.Enabled = true
	cfg.Services.StatusPublisher.Enabled = true
	cfg.Services.StatusPublisher.Topic = "watchdog"

	engine := watchdog.NewEngine(nil, zerolog.Nop())
	sr := service_registry.NewServiceRegistry(engine, new(mocks.MQTTClient), zerolog.Nop())

	require.NoError(t, sr.RegisterServices(&cfg))
	assert.Equal(t, []string{
		constants.SchedulerServiceName,
		constants.StatusLoggerServiceName,
		constants.StatusPublisherServiceName,
	}, sr.Services())

	require.NoError(t, sr.StartServices())
	require.NoError(t, sr.StopServices())
}

func TestServiceRegistry_PublisherNeedsMQTT(t *testing.T) {
	var cfg utils.Config
	cfg.Services.StatusPublisher.Enabled = true

	sr := service_registry.NewServiceRegistry(watchdog.NewEngine(nil, zerolog.Nop()), nil, zerolog.Nop())

	assert.Error(t, sr.RegisterServices(&cfg))
	assert.Empty(t, sr.Services())
}
