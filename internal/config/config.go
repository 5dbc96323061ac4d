// Package config loads run settings with priority flags > env > file > defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"edge-tuner/internal/logger"
	"edge-tuner/internal/sampler"
	"edge-tuner/internal/search"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Search  SearchConfig   `yaml:"search"`
	Sampler sampler.Bounds `yaml:"sampler"`
	Logging LoggingConfig  `yaml:"logging"`
	Output  OutputConfig   `yaml:"output"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

type SearchConfig struct {
	Trials  int    `yaml:"trials"`
	Workers int    `yaml:"workers"`
	Seed    uint64 `yaml:"seed"` // 0 picks a seed at startup
	Mode    string `yaml:"mode"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

type OutputConfig struct {
	DisplayDir string `yaml:"display_dir"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

func Default() Config {
	return Config{
		Search: SearchConfig{
			Trials:  20,
			Workers: 1,
			Mode:    string(search.ModeStrict),
		},
		Sampler: sampler.DefaultBounds(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	} else if os.Getenv("DEBUG") == "1" {
		cfg.Logging.Level = "debug"
	}
	if v := os.Getenv("EDGE_TUNER_TRIALS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.Trials = i
		}
	}
	if v := os.Getenv("EDGE_TUNER_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.Workers = i
		}
	}
	if v := os.Getenv("EDGE_TUNER_SEED"); v != "" {
		if s, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Search.Seed = s
		}
	}
}

// LogLevel resolves the configured level; unknown names fall back to info.
func (c Config) LogLevel() logger.LogLevel {
	return logger.ParseLevel(c.Logging.Level)
}

func (c Config) Validate() error {
	if c.Search.Trials < 1 {
		return fmt.Errorf("search.trials must be >= 1")
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("search.workers must be >= 1")
	}
	if _, err := search.ParseMode(c.Search.Mode); err != nil {
		return err
	}
	if err := c.Sampler.Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
