// Package config loads and watches the daemon configuration (YAML).
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Local   LocalConfig   `yaml:"local"`
	Intents IntentsConfig `yaml:"intents"`
	Engine  EngineConfig  `yaml:"engine"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
	File    struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"file"`
}

type LocalConfig struct {
	Grant bool `yaml:"grant"`
}

type IntentsConfig struct {
	Driver      string   `yaml:"driver"`
	Path        string   `yaml:"path"`
	BusyTimeout Duration `yaml:"busy_timeout"`
}

type EngineConfig struct {
	InitTimeout     Duration `yaml:"init_timeout"`
	RefreshAt       string   `yaml:"refresh_at"`
	IntentRetention Duration `yaml:"intent_retention"`

	CloudRatePerSec int      `yaml:"cloud_rate_per_sec"`
	EntryTimeout    Duration `yaml:"entry_timeout"`
}

// Load reads, strictly decodes and validates the config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
	if c.Engine.InitTimeout <= 0 {
		c.Engine.InitTimeout = Duration(5 * time.Second)
	}
	if c.Engine.IntentRetention <= 0 {
		c.Engine.IntentRetention = Duration(30 * 24 * time.Hour)
	}
	if c.Engine.EntryTimeout <= 0 {
		c.Engine.EntryTimeout = Duration(10 * time.Second)
	}
	if c.Engine.CloudRatePerSec <= 0 {
		c.Engine.CloudRatePerSec = 5
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Intents.Driver)) {
	case "", "none", "memory", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("config: unknown intents.driver %q", c.Intents.Driver)
	}
	if at := strings.TrimSpace(c.Engine.RefreshAt); at != "" {
		if len(strings.Split(at, ":")) != 2 {
			return fmt.Errorf("config: engine.refresh_at %q must be HH:MM", at)
		}
	}
	return nil
}
