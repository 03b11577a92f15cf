package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/constants"
	"github.com/benmeehan/tool-watchdog/internal/models"
	"github.com/benmeehan/tool-watchdog/internal/utils"
	"github.com/benmeehan/tool-watchdog/internal/watchdog"
	"github.com/benmeehan/tool-watchdog/pkg/mqtt"
	"github.com/rs/zerolog"
)

// StatusPublisherService publishes a group's status over MQTT whenever it changes.
// Publishing runs on a worker pool so broker latency never delays a tick.
// While a group's update waits for a worker, newer updates for that group replace it.
type StatusPublisherService struct {
	TopicPrefix    string
	QOS            int
	Retained       bool
	Workers        int
	QueueSize      int
	PublishTimeout time.Duration
	Engine         StatusSource
	MqttClient     mqtt.MQTTClient
	Logger         zerolog.Logger

	mu          sync.Mutex
	pool        *utils.WorkerPool
	unsubscribe func()
	pending     map[models.GroupHandle]models.StatusUpdate
}

// NewStatusPublisherService initializes a new StatusPublisherService.
func NewStatusPublisherService(topicPrefix string, qos int, retained bool, workers int,
	engine StatusSource, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *StatusPublisherService {

	return &StatusPublisherService{
		TopicPrefix:    strings.TrimSuffix(topicPrefix, "/"),
		QOS:            qos,
		Retained:       retained,
		Workers:        workers,
		QueueSize:      constants.DefaultPublishQueueSize,
		PublishTimeout: constants.DefaultPublishTimeout,
		Engine:         engine,
		MqttClient:     mqttClient,
		Logger:         logger,
	}
}

// Start subscribes to engine events and starts the publishing workers.
func (p *StatusPublisherService) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unsubscribe != nil {
		p.Logger.Warn().Msg("StatusPublisherService is already running")
		return errors.New("status publisher service is already running")
	}

	p.pool = utils.NewBoundedWorkerPool(p.Workers, p.QueueSize)
	p.pending = make(map[models.GroupHandle]models.StatusUpdate)
	p.unsubscribe = p.Engine.Subscribe(p.handleEvent)

	p.Logger.Info().Str("topic", p.TopicPrefix).Msg("StatusPublisherService started successfully")
	return nil
}

// Stop unsubscribes and waits for queued publishes to finish.
func (p *StatusPublisherService) Stop() error {
	p.mu.Lock()
	if p.unsubscribe == nil {
		p.mu.Unlock()
		p.Logger.Warn().Msg("StatusPublisherService is not running")
		return errors.New("status publisher service is not running")
	}
	p.unsubscribe()
	p.unsubscribe = nil
	pool := p.pool
	p.mu.Unlock()

	pool.Shutdown()
	p.Logger.Info().Msg("StatusPublisherService stopped successfully")
	return nil
}

// handleEvent runs on the ticking goroutine and must not block.
func (p *StatusPublisherService) handleEvent(ev watchdog.Event) {
	status, err := p.Engine.Group(ev.Group)
	if err != nil {
		p.Logger.Debug().Err(err).Msg("Skipping status of vanished group")
		return
	}
	update := models.NewStatusUpdate(status, ev.At)

	p.mu.Lock()
	if p.pool == nil || p.unsubscribe == nil {
		p.mu.Unlock()
		return
	}
	_, queued := p.pending[ev.Group]
	p.pending[ev.Group] = update
	pool := p.pool
	p.mu.Unlock()

	if queued {
		return
	}
	if !pool.TrySubmit(func() { p.publishPending(ev.Group) }) {
		p.mu.Lock()
		delete(p.pending, ev.Group)
		p.mu.Unlock()
		p.Logger.Warn().Str("group", status.Name).Msg("Publish queue full, dropping status update")
	}
}

// publishPending sends the latest update waiting for the group.
func (p *StatusPublisherService) publishPending(handle models.GroupHandle) {
	p.mu.Lock()
	update, ok := p.pending[handle]
	delete(p.pending, handle)
	p.mu.Unlock()

	if ok {
		_ = p.Publish(update)
	}
}

// Topic returns the topic a group's status is published on.
func (p *StatusPublisherService) Topic(groupName string) string {
	return fmt.Sprintf("%s/%s", p.TopicPrefix, groupName)
}

// Publish serializes and sends one status update, waiting at most PublishTimeout for the broker.
func (p *StatusPublisherService) Publish(update models.StatusUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		p.Logger.Error().Err(err).Msg("Failed to serialize status update")
		return err
	}

	timeout := p.PublishTimeout
	if timeout <= 0 {
		timeout = constants.DefaultPublishTimeout
	}

	topic := p.Topic(update.GroupName)
	token := p.MqttClient.Publish(topic, byte(p.QOS), p.Retained, payload)
	if err := mqtt.AwaitTimeout(token, timeout); err != nil {
		p.Logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish status update")
		return err
	}

	p.Logger.Debug().Str("topic", topic).Bool("up_to_date", update.UpToDate).Msg("Status update published")
	return nil
}
