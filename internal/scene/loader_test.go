package scene_test

import (
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/tool-watchdog/internal/models"
	"github.com/benmeehan/tool-watchdog/internal/scene"
	"github.com/benmeehan/tool-watchdog/internal/sources"
	"github.com/benmeehan/tool-watchdog/internal/utils"
	"github.com/benmeehan/tool-watchdog/internal/watchdog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterFactory struct {
	built map[string]*sources.Counter
	fail  string
}

func (f *counterFactory) New(cfg utils.SourceConfig) (sources.Source, error) {
	if cfg.Name == f.fail {
		return nil, errors.New("boom")
	}
	c := sources.NewCounter()
	f.built[cfg.Name] = c
	return c, nil
}

func TestLoadFromConfig(t *testing.T) {
	cfg := utils.WatchdogConfig{
		Sources: []utils.SourceConfig{{Name: "a", Kind: "counter"}, {Name: "b", Kind: "counter"}},
		Groups: []utils.GroupConfig{
			{Name: "tracking", StatusRefreshTime: 200 * time.Millisecond, Tools: []utils.ToolConfig{
				{Name: "tracker", Source: "a"},
				{Name: "mapper", Source: "b"},
			}},
			{Name: "capture", Tools: []utils.ToolConfig{{Name: "recorder", Source: "b"}}},
		},
	}

	s := scene.New(zerolog.Nop())
	engine := watchdog.NewEngine(nil, zerolog.Nop(), watchdog.WithStatusRefreshTime(time.Second))
	s.AddObserver(engine)

	factory := &counterFactory{built: map[string]*sources.Counter{}}
	require.NoError(t, scene.LoadFromConfig(s, cfg, factory))

	assert.Equal(t, []string{"a", "b"}, s.SourceNames())

	groups := engine.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "tracking", groups[0].Name)
	assert.Len(t, groups[0].Tools, 2)
	assert.Equal(t, 200*time.Millisecond, engine.EffectiveRefreshTime())

	engine.UpdateWatchdogNodes()
	state, err := engine.ToolState(groups[1].ID, "recorder")
	require.NoError(t, err)
	assert.Equal(t, models.ToolUpToDate, state)
}

func TestLoadFromConfig_FactoryError(t *testing.T) {
	cfg := utils.WatchdogConfig{
		Sources: []utils.SourceConfig{{Name: "a", Kind: "counter"}},
	}

	err := scene.LoadFromConfig(scene.New(zerolog.Nop()), cfg, &counterFactory{built: map[string]*sources.Counter{}, fail: "a"})

	assert.ErrorContains(t, err, "creating source a")
}
