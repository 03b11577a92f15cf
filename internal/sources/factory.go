package sources

import (
	"errors"
	"fmt"

	"github.com/benmeehan/tool-watchdog/internal/constants"
	"github.com/benmeehan/tool-watchdog/internal/utils"
	"github.com/benmeehan/tool-watchdog/pkg/file"
	"github.com/benmeehan/tool-watchdog/pkg/mqtt"
	"github.com/rs/zerolog"
)

// Factory builds sources from configuration entries.
type Factory struct {
	fileClient file.FileOperations
	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger
}

// NewFactory creates a Factory. mqttClient may be nil when no mqtt sources are configured.
func NewFactory(fileClient file.FileOperations, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *Factory {
	return &Factory{
		fileClient: fileClient,
		mqttClient: mqttClient,
		logger:     logger,
	}
}

// New builds and, where needed, starts the source described by cfg.
func (f *Factory) New(cfg utils.SourceConfig) (Source, error) {
	logger := f.logger.With().Str("source", cfg.Name).Logger()

	switch cfg.Kind {
	case constants.SourceKindCounter:
		return NewCounter(), nil

	case constants.SourceKindFile:
		return NewFileSource(cfg.Path, f.fileClient), nil

	case constants.SourceKindMQTT:
		if f.mqttClient == nil {
			return nil, errors.New("mqtt source requires an mqtt client")
		}
		src := NewTopicSource(cfg.Topic, byte(cfg.QOS), f.mqttClient, logger)
		if err := src.Start(); err != nil {
			return nil, err
		}
		return src, nil

	case constants.SourceKindProcess:
		return NewProcessSource(logger, cfg.Process), nil
	}

	return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
}
