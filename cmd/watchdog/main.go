package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/scene"
	"github.com/benmeehan/tool-watchdog/internal/service_registry"
	"github.com/benmeehan/tool-watchdog/internal/sources"
	"github.com/benmeehan/tool-watchdog/internal/utils"
	"github.com/benmeehan/tool-watchdog/internal/watchdog"
	"github.com/benmeehan/tool-watchdog/pkg/file"
	"github.com/benmeehan/tool-watchdog/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	configPath := os.Getenv("WATCHDOG_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig(configPath, fileClient)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}
	log = newLogger(config)

	var mqttClient mqtt.MQTTClient
	mqttService := mqtt.NewMqttService(fileClient, log.With().Str("component", "mqtt").Logger())
	if config.MQTT.Enabled {
		// Generate a unique MQTT Client ID by appending a UUID
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		log.Info().Msgf("Using MQTT Client ID: %s", clientID)

		err = mqttService.Initialize(mqtt.Options{
			Broker:        config.MQTT.Broker,
			ClientID:      clientID,
			CACertificate: config.MQTT.CACertificate,
			Username:      config.MQTT.Username,
			Password:      config.MQTT.Password,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}
		mqttClient = mqttService
	}

	engine := watchdog.NewEngine(
		watchdog.SystemClock{},
		log.With().Str("component", "watchdog").Logger(),
		watchdog.WithStatusRefreshTime(config.Watchdog.StatusRefreshTime),
	)

	sc := scene.New(log.With().Str("component", "scene").Logger())
	sc.AddObserver(engine)

	factory := sources.NewFactory(fileClient, mqttClient, log.With().Str("component", "sources").Logger())
	if err := scene.LoadFromConfig(sc, config.Watchdog, factory); err != nil {
		log.Fatal().Err(err).Msg("Failed to load watchdog scene")
	}
	log.Info().
		Int("groups", len(sc.Groups())).
		Int("sources", len(sc.SourceNames())).
		Msg("Watchdog scene loaded")

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(engine, mqttClient, log)

	// Register all services based on the configuration
	if err := serviceRegistry.RegisterServices(config); err != nil {
		log.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start services")
	}
	log.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		log.Error().Err(err).Msg("Some services failed to stop")
	}
	if err := sc.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to release watchdog sources")
	}
	mqttService.Disconnect(250)
	log.Info().Dur("elapsed", engine.ElapsedTime()).Msg("Watchdog stopped")
}

func newLogger(config *utils.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if config.Log.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(config.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
