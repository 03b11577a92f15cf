package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/tool-watchdog/internal/constants"
	"github.com/benmeehan/tool-watchdog/internal/registry"
	"github.com/benmeehan/tool-watchdog/internal/services"
	"github.com/benmeehan/tool-watchdog/internal/utils"
	"github.com/benmeehan/tool-watchdog/internal/watchdog"
	"github.com/benmeehan/tool-watchdog/pkg/mqtt"
	"github.com/rs/zerolog"
)

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services    map[string]registry.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	engine      *watchdog.Engine
	mqttClient  mqtt.MQTTClient
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
// mqttClient may be nil when MQTT is disabled.
func NewServiceRegistry(engine *watchdog.Engine, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:   make(map[string]registry.Service),
		engine:     engine,
		mqttClient: mqttClient,
		Logger:     logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Services returns the registered service names in start order.
func (sr *ServiceRegistry) Services() []string {
	return append([]string(nil), sr.serviceKeys...)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers enabled services based on configuration.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config) error {
	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (registry.Service, error)
	}{
		{
			name:    constants.SchedulerServiceName,
			enabled: config.Services.Scheduler.Enabled,
			constructor: func() (registry.Service, error) {
				return services.NewSchedulerService(sr.engine, sr.serviceLogger(constants.SchedulerServiceName)), nil
			},
		},
		{
			name:    constants.StatusLoggerServiceName,
			enabled: config.Services.StatusLogger.Enabled,
			constructor: func() (registry.Service, error) {
				return services.NewStatusLoggerService(sr.engine, sr.serviceLogger(constants.StatusLoggerServiceName)), nil
			},
		},
		{
			name:    constants.StatusPublisherServiceName,
			enabled: config.Services.StatusPublisher.Enabled,
			constructor: func() (registry.Service, error) {
				if sr.mqttClient == nil {
					return nil, errors.New("status publisher requires an mqtt client")
				}
				cfg := config.Services.StatusPublisher
				publisher := services.NewStatusPublisherService(
					cfg.Topic,
					cfg.QOS,
					cfg.Retained,
					cfg.Workers,
					sr.engine,
					sr.mqttClient,
					sr.serviceLogger(constants.StatusPublisherServiceName),
				)
				if cfg.PublishTimeout > 0 {
					publisher.PublishTimeout = cfg.PublishTimeout
				}
				return publisher, nil
			},
		},
	}

	// Register services in the predefined order
	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}

func (sr *ServiceRegistry) serviceLogger(name string) zerolog.Logger {
	return sr.Logger.With().Str("service", name).Logger()
}
