package sources

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/benmeehan/tool-watchdog/pkg/mqtt"
	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// TopicSource counts messages arriving on an MQTT topic.
// Every message advances the revision, so a tool that stops publishing goes stale.
type TopicSource struct {
	Topic      string
	QOS        byte
	MqttClient mqtt.MQTTClient
	Logger     zerolog.Logger

	counter    Counter
	subscribed atomic.Bool
}

// NewTopicSource creates a TopicSource. Call Start to subscribe.
func NewTopicSource(topic string, qos byte, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *TopicSource {
	return &TopicSource{
		Topic:      topic,
		QOS:        qos,
		MqttClient: mqttClient,
		Logger:     logger,
	}
}

// Start subscribes to the topic.
func (s *TopicSource) Start() error {
	if s.subscribed.Load() {
		return errors.New("topic source is already subscribed")
	}

	if err := mqtt.Await(s.MqttClient.Subscribe(s.Topic, s.QOS, s.handleMessage)); err != nil {
		s.Logger.Error().Err(err).Str("topic", s.Topic).Msg("Failed to subscribe to tool topic")
		return fmt.Errorf("failed to subscribe to %s: %w", s.Topic, err)
	}

	s.subscribed.Store(true)
	s.Logger.Info().Str("topic", s.Topic).Msg("Subscribed to tool topic")
	return nil
}

// Stop unsubscribes from the topic. Later reads fail with ErrSourceUnavailable.
func (s *TopicSource) Stop() error {
	if !s.subscribed.Swap(false) {
		return errors.New("topic source is not subscribed")
	}

	if err := mqtt.Await(s.MqttClient.Unsubscribe(s.Topic)); err != nil {
		s.Logger.Warn().Err(err).Str("topic", s.Topic).Msg("Failed to unsubscribe from tool topic")
		return err
	}
	return nil
}

func (s *TopicSource) handleMessage(_ mqttLib.Client, msg mqttLib.Message) {
	rev := s.counter.Touch()
	s.Logger.Trace().Str("topic", msg.Topic()).Uint64("revision", rev).Msg("Tool update received")
}

// Timestamp returns the number of messages received so far.
func (s *TopicSource) Timestamp() (uint64, error) {
	if !s.subscribed.Load() {
		return 0, fmt.Errorf("%w: not subscribed to %s", ErrSourceUnavailable, s.Topic)
	}
	return s.counter.Timestamp()
}
