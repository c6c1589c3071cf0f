// Package config loads the service configuration from a file with
// environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/fleetcap/api"
	infraadvisory "github.com/kilianp07/fleetcap/infra/advisory"
	inframetrics "github.com/kilianp07/fleetcap/infra/metrics"
	"github.com/kilianp07/fleetcap/infra/notify"
	"github.com/kilianp07/fleetcap/infra/store"
	"github.com/kilianp07/fleetcap/jobs"
)

type Config struct {
	Store    store.Config         `json:"store"`
	Advisory infraadvisory.Config `json:"advisory"`
	Planner  PlannerConfig        `json:"planner"`
	Jobs     jobs.Config          `json:"jobs"`
	API      api.Config           `json:"api"`
	Metrics  inframetrics.Config  `json:"metrics"`
	Notify   notify.Config        `json:"notify"`
}

// Load reads the config file, applies FC_-prefixed environment overrides,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FC_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fc_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Store.SetDefaults()
	cfg.Advisory.SetDefaults()
	cfg.Planner.SetDefaults()
	cfg.Jobs.SetDefaults()
	cfg.API.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Notify.SetDefaults()
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Advisory.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Jobs.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notify.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
