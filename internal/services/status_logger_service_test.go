package services_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/benmeehan/tool-watchdog/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// TestStatusLoggerService_LogsToolStates tests that each changed group is logged tool by tool.
func TestStatusLoggerService_LogsToolStates(t *testing.T) {
	// Setup
	var out syncBuffer
	engine := newWatchedEngine(t, "stylus")
	s := services.NewStatusLoggerService(engine, zerolog.New(&out))

	require.NoError(t, s.Start())
	assert.EqualError(t, s.Start(), "status logger service is already running")

	// Execute
	engine.UpdateWatchdogNodes()
	require.NoError(t, s.Stop())
	engine.UpdateWatchdogNodes()

	// Assert
	logs := out.String()
	assert.Contains(t, logs, `"tool":"stylus"`)
	assert.Contains(t, logs, `"state":"up_to_date"`)
	assert.Contains(t, logs, `"last_change"`)
	assert.Contains(t, logs, `"level":"warn","message":"StatusLoggerService is already running"`)
	assert.NotContains(t, logs, `"state":"out_of_date"`)
	assert.EqualError(t, s.Stop(), "status logger service is not running")
}
