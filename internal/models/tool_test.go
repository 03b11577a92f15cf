package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolStatus_LastChangeOmittedUntilSet(t *testing.T) {
	raw, err := json.Marshal(models.ToolStatus{Name: "stylus", State: models.ToolOutOfDate})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "last_change")

	changed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw, err = json.Marshal(models.ToolStatus{Name: "stylus", State: models.ToolUpToDate, LastChange: &changed})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"last_change":"2024-05-01T12:00:00Z"`)
}
