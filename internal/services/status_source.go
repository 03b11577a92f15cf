package services

import (
	"github.com/benmeehan/tool-watchdog/internal/models"
	"github.com/benmeehan/tool-watchdog/internal/watchdog"
)

// StatusSource is the engine surface used by status listeners.
type StatusSource interface {
	Subscribe(l watchdog.Listener) (unsubscribe func())
	Group(handle models.GroupHandle) (models.GroupStatus, error)
}
