package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/constants"
	"github.com/benmeehan/tool-watchdog/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`  // zerolog level name, defaults to info
		Format string `yaml:"format"` // "json" or "console"
	} `yaml:"log"`

	MQTT struct {
		Enabled       bool   `yaml:"enabled"`        // Connect to a broker at startup
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate, optional
		Username      string `yaml:"username"`
		Password      string `yaml:"password"`
	} `yaml:"mqtt"`

	Watchdog WatchdogConfig `yaml:"watchdog"`

	Services struct {
		Scheduler struct {
			Enabled bool `yaml:"enabled"` // Drive the engine from a periodic ticker
		} `yaml:"scheduler"`

		StatusLogger struct {
			Enabled bool `yaml:"enabled"` // Log tool states whenever a group changes
		} `yaml:"status_logger"`

		StatusPublisher struct {
			Enabled  bool   `yaml:"enabled"`  // Publish status updates over MQTT
			Topic    string `yaml:"topic"`    // Topic prefix, the group name is appended
			QOS      int    `yaml:"qos"`      // MQTT QoS level for status messages
			Retained bool   `yaml:"retained"` // Publish as retained messages
			Workers  int    `yaml:"workers"`  // Publishing goroutines

			PublishTimeout time.Duration `yaml:"publish_timeout"` // Longest wait for a broker acknowledgement
		} `yaml:"status_publisher"`
	} `yaml:"services"`
}

// WatchdogConfig describes the sources and groups loaded into the scene at startup.
type WatchdogConfig struct {
	StatusRefreshTime time.Duration  `yaml:"status_refresh_time"`
	Sources           []SourceConfig `yaml:"sources"`
	Groups            []GroupConfig  `yaml:"groups"`
}

// SourceConfig describes a single tool data source.
type SourceConfig struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`    // counter, file, mqtt or process
	Path    string `yaml:"path"`    // file
	Topic   string `yaml:"topic"`   // mqtt
	QOS     int    `yaml:"qos"`     // mqtt
	Process string `yaml:"process"` // process
}

// GroupConfig describes a watchdog group and the tools it monitors.
type GroupConfig struct {
	Name              string        `yaml:"name"`
	StatusRefreshTime time.Duration `yaml:"status_refresh_time"` // zero inherits the watchdog default
	Tools             []ToolConfig  `yaml:"tools"`
}

// ToolConfig binds a tool name to a configured source.
type ToolConfig struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
}

// LoadConfig loads the YAML configuration from the specified file.
// It returns a pointer to the Config struct and an error if loading or validation fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", filename, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Watchdog.StatusRefreshTime == 0 {
		c.Watchdog.StatusRefreshTime = constants.DefaultStatusRefreshTime
	}
	if c.Services.StatusPublisher.Workers <= 0 {
		c.Services.StatusPublisher.Workers = constants.DefaultPublisherWorkers
	}
	if c.Services.StatusPublisher.PublishTimeout <= 0 {
		c.Services.StatusPublisher.PublishTimeout = constants.DefaultPublishTimeout
	}
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var err error

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		err = errors.Join(err, errors.New("mqtt.broker must be set when mqtt is enabled"))
	}
	if c.Services.StatusPublisher.Enabled {
		if !c.MQTT.Enabled {
			err = errors.Join(err, errors.New("services.status_publisher requires mqtt to be enabled"))
		}
		if c.Services.StatusPublisher.Topic == "" {
			err = errors.Join(err, errors.New("services.status_publisher.topic must not be empty"))
		}
	}

	return errors.Join(err, c.Watchdog.validate(c.MQTT.Enabled))
}

var sourceKinds = SliceToSet([]string{
	constants.SourceKindCounter,
	constants.SourceKindFile,
	constants.SourceKindMQTT,
	constants.SourceKindProcess,
})

func (w WatchdogConfig) validate(mqttEnabled bool) error {
	var err error

	if w.StatusRefreshTime < 0 {
		err = errors.Join(err, errors.New("watchdog.status_refresh_time must be positive"))
	}

	sourceNames := make(map[string]struct{}, len(w.Sources))
	for i, s := range w.Sources {
		if s.Name == "" {
			err = errors.Join(err, fmt.Errorf("watchdog.sources[%d].name must not be empty", i))
			continue
		}
		if _, dup := sourceNames[s.Name]; dup {
			err = errors.Join(err, fmt.Errorf("watchdog source %q is defined more than once", s.Name))
		}
		sourceNames[s.Name] = struct{}{}

		if _, ok := sourceKinds[s.Kind]; !ok {
			err = errors.Join(err, fmt.Errorf("watchdog source %q has unknown kind %q", s.Name, s.Kind))
		}
		switch s.Kind {
		case constants.SourceKindFile:
			if s.Path == "" {
				err = errors.Join(err, fmt.Errorf("watchdog source %q needs a path", s.Name))
			}
		case constants.SourceKindMQTT:
			if s.Topic == "" {
				err = errors.Join(err, fmt.Errorf("watchdog source %q needs a topic", s.Name))
			}
			if !mqttEnabled {
				err = errors.Join(err, fmt.Errorf("watchdog source %q requires mqtt to be enabled", s.Name))
			}
		case constants.SourceKindProcess:
			if s.Process == "" {
				err = errors.Join(err, fmt.Errorf("watchdog source %q needs a process name", s.Name))
			}
		}
	}

	for i, g := range w.Groups {
		if g.Name == "" {
			err = errors.Join(err, fmt.Errorf("watchdog.groups[%d].name must not be empty", i))
		}
		if g.StatusRefreshTime < 0 {
			err = errors.Join(err, fmt.Errorf("watchdog group %q: status_refresh_time must be positive", g.Name))
		}
		toolNames := make(map[string]struct{}, len(g.Tools))
		for _, tool := range g.Tools {
			if _, dup := toolNames[tool.Name]; dup {
				err = errors.Join(err, fmt.Errorf("watchdog group %q: tool %q is defined more than once", g.Name, tool.Name))
			}
			toolNames[tool.Name] = struct{}{}
			if _, ok := sourceNames[tool.Source]; !ok {
				err = errors.Join(err, fmt.Errorf("watchdog group %q: tool %q references unknown source %q", g.Name, tool.Name, tool.Source))
			}
		}
	}

	return err
}
