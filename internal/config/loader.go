package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr                 string `json:"addr" yaml:"addr" toml:"addr"`
	AssetsDir            string `json:"assets_dir" yaml:"assets_dir" toml:"assets_dir"`
	ImageBudgetMB        int    `json:"image_budget_mb" yaml:"image_budget_mb" toml:"image_budget_mb"`
	ImageBudgetPerIterMB int    `json:"image_budget_per_iteration_mb" yaml:"image_budget_per_iteration_mb" toml:"image_budget_per_iteration_mb"`
	IterateIntervalMS    int    `json:"iterate_interval_ms" yaml:"iterate_interval_ms" toml:"iterate_interval_ms"`
	Workers              int    `json:"workers" yaml:"workers" toml:"workers"`
	DefaultPriority      int    `json:"default_priority" yaml:"default_priority" toml:"default_priority"`
	LogLevel             string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
