package scene

import (
	"fmt"

	"github.com/benmeehan/tool-watchdog/internal/sources"
	"github.com/benmeehan/tool-watchdog/internal/utils"
)

// SourceFactory builds a source from its configuration.
type SourceFactory interface {
	New(cfg utils.SourceConfig) (sources.Source, error)
}

// LoadFromConfig registers the configured sources and imports the configured groups.
// Observers see a single OnSceneImported.
func LoadFromConfig(s *Scene, cfg utils.WatchdogConfig, factory SourceFactory) error {
	for _, sc := range cfg.Sources {
		src, err := factory.New(sc)
		if err != nil {
			return fmt.Errorf("creating source %s: %w", sc.Name, err)
		}
		if err := s.AddSource(sc.Name, src); err != nil {
			return err
		}
	}

	defs := make([]GroupDef, 0, len(cfg.Groups))
	for _, gc := range cfg.Groups {
		def := GroupDef{
			Name:            gc.Name,
			RefreshInterval: gc.StatusRefreshTime,
		}
		for _, tc := range gc.Tools {
			def.Tools = append(def.Tools, ToolDef{Name: tc.Name, SourceName: tc.Source})
		}
		defs = append(defs, def)
	}

	return s.Import(defs)
}
