package constants

import "time"

const (
	// DefaultStatusRefreshTime is used when no positive refresh interval is configured.
	DefaultStatusRefreshTime = 1 * time.Second

	// DefaultPublisherWorkers is the number of goroutines publishing status updates.
	DefaultPublisherWorkers = 2

	// DefaultPublishTimeout bounds how long a worker waits for the broker to acknowledge a status update.
	DefaultPublishTimeout = 5 * time.Second

	// DefaultPublishQueueSize is the number of status updates that may wait for a free worker.
	DefaultPublishQueueSize = 64
)

// Source kinds accepted in the watchdog configuration.
const (
	SourceKindCounter = "counter"
	SourceKindFile    = "file"
	SourceKindMQTT    = "mqtt"
	SourceKindProcess = "process"
)
