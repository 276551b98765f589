package zcl

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"zcl-registry/internal/logging"
)

// Config selects what Open loads and how it logs.
//
//	standard: true
//	sources:
//	  - ./overlays
//	  - ./vendor.yaml
//	log:
//	  level: debug
//	  format: json
//	defaults:
//	  strict: false
//	version_constraint: ">= 1.0.0, < 2.0.0"
type Config struct {
	Standard *bool    `yaml:"standard"`
	Sources  []string `yaml:"sources"`
	Log      struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Defaults struct {
		Strict bool `yaml:"strict"`
	} `yaml:"defaults"`
	VersionConstraint string `yaml:"version_constraint"`
}

// LoadConfig reads, defaults and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig for config bytes already in memory.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Standard == nil {
		on := true
		c.Standard = &on
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.VersionConstraint == "" {
		c.VersionConstraint = DefaultVersionConstraint
	}
}

func (c *Config) validate() error {
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if _, err := semver.NewConstraint(c.VersionConstraint); err != nil {
		return fmt.Errorf("version_constraint %q: %w", c.VersionConstraint, err)
	}
	for i, s := range c.Sources {
		if s == "" {
			return fmt.Errorf("sources[%d] is empty", i)
		}
	}
	if !c.UseStandard() && len(c.Sources) == 0 {
		return fmt.Errorf("nothing to load: standard is false and no sources are listed")
	}
	return nil
}

// UseStandard reports whether the embedded catalogue is loaded first.
func (c *Config) UseStandard() bool {
	return c.Standard == nil || *c.Standard
}

// Logger builds the logger the log section describes.
func (c *Config) Logger() *slog.Logger {
	return logging.New(c.Log.Level, c.Log.Format)
}

// sources returns the sources the config names, the embedded catalogue
// first. Directories become DirSource, anything else FileSource.
func (c *Config) sources() []Source {
	var result []Source
	if c.UseStandard() {
		result = append(result, StandardSource())
	}
	for _, path := range c.Sources {
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			result = append(result, DirSource(path))
			continue
		}
		result = append(result, FileSource(path))
	}
	return result
}

// Open loads the registry a config describes. Options given here are applied
// after the ones derived from the config, so they win.
func Open(cfg *Config, opts ...Option) (*Registry, error) {
	c := *cfg
	cfg = &c
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	base := []Option{
		WithLogger(cfg.Logger()),
		WithStrictDefaults(cfg.Defaults.Strict),
		WithVersionConstraint(cfg.VersionConstraint),
	}
	return Load(cfg.sources(), append(base, opts...)...)
}
