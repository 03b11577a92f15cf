package mocks

import (
	"github.com/benmeehan/tool-watchdog/internal/models"
	"github.com/benmeehan/tool-watchdog/internal/scene"
	"github.com/stretchr/testify/mock"
)

// SceneObserver is a mock implementation of the scene.Observer interface
type SceneObserver struct {
	mock.Mock
}

func (m *SceneObserver) OnGroupAdded(def scene.GroupDef) {
	m.Called(def)
}

func (m *SceneObserver) OnGroupRemoved(handle models.GroupHandle) {
	m.Called(handle)
}

func (m *SceneObserver) OnToolAdded(handle models.GroupHandle, tool scene.ToolDef) error {
	args := m.Called(handle, tool)
	return args.Error(0)
}

func (m *SceneObserver) OnSourceRemoved(sourceName string) {
	m.Called(sourceName)
}

func (m *SceneObserver) OnSceneImported(defs []scene.GroupDef) {
	m.Called(defs)
}
