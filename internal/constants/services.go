package constants

// Service names, in start order.
const (
	SchedulerServiceName       = "scheduler"
	StatusLoggerServiceName    = "status_logger"
	StatusPublisherServiceName = "status_publisher"
)
