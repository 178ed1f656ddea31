package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/modgrammar/pkg/modgrammar/ingest"
	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
)

// Config is the run configuration
type Config struct {
	Catalog     string      `yaml:"catalog"`
	DataDir     string      `yaml:"data_dir"`
	ResultsDir  string      `yaml:"results_dir"`
	DB          string      `yaml:"db"`
	Workers     int         `yaml:"workers"`
	Eligibility Eligibility `yaml:"eligibility"`
	Log         Log         `yaml:"log"`
}

// Eligibility selects which items and modifier lists are matched
type Eligibility struct {
	FrameType        int      `yaml:"frame_type"`
	RequireCorrupted bool     `yaml:"require_corrupted"`
	Sources          []string `yaml:"sources"`
}

// Log configures the logger
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Catalog:    "data/trade-stats.json",
		DataDir:    "data",
		ResultsDir: "mods",
		Eligibility: Eligibility{
			FrameType:        ingest.FrameUnique,
			RequireCorrupted: true,
			Sources:          []string{string(ingest.Implicit)},
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a YAML file on top of Default
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values
func (c Config) Validate() error {
	if strings.TrimSpace(c.Catalog) == "" {
		return fmt.Errorf("%w: catalog is required", internalerr.ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", internalerr.ErrInvalidConfig)
	}
	if _, err := c.Eligibility.Resolve(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(strings.TrimSpace(c.Log.Level)); err != nil {
		return fmt.Errorf("%w: log level: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

// Resolve converts the configured eligibility into its runtime form
func (e Eligibility) Resolve() (ingest.Eligibility, error) {
	if len(e.Sources) == 0 {
		return ingest.Eligibility{}, fmt.Errorf("%w: at least one modifier source is required", internalerr.ErrInvalidConfig)
	}
	out := ingest.Eligibility{
		FrameType:        e.FrameType,
		RequireCorrupted: e.RequireCorrupted,
	}
	for _, s := range e.Sources {
		src, err := ingest.ParseSource(s)
		if err != nil {
			return ingest.Eligibility{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
		}
		out.Sources = append(out.Sources, src)
	}
	return out, nil
}
