// Package config loads service settings from an optional YAML file with
// environment overrides for the values that differ per deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Auction struct {
		LotDurationSec       int   `yaml:"lot_duration_sec"`
		AntiSnipeWindowSec   int   `yaml:"anti_snipe_window_sec"`
		AntiSnipeExtSec      int   `yaml:"anti_snipe_extension_sec"`
		ReservePerPlayer     int64 `yaml:"reserve_per_player"`
		DefaultBudget        int64 `yaml:"default_budget"`
		DefaultPlayersNeeded int   `yaml:"default_players_needed"`
	} `yaml:"auction"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	Settler struct {
		BatchSize  int32 `yaml:"batch_size"`
		NumWorkers int   `yaml:"num_workers"`
	} `yaml:"settler"`
}

// Load reads the YAML file at path when it exists and then applies
// environment overrides. A missing file is not an error; defaults and env
// carry a local setup.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = getEnv("PORT", "8080")
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	return &cfg, nil
}

// LotDuration returns the configured lot duration, zero when unset so the
// auction defaults apply.
func (c *Config) LotDuration() time.Duration {
	return time.Duration(c.Auction.LotDurationSec) * time.Second
}

func (c *Config) AntiSnipeWindow() time.Duration {
	return time.Duration(c.Auction.AntiSnipeWindowSec) * time.Second
}

func (c *Config) AntiSnipeExtension() time.Duration {
	return time.Duration(c.Auction.AntiSnipeExtSec) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
