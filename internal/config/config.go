// Package config loads the optional `-config` YAML file that configures
// the ambient/domain sinks (MQTT, WebSocket, Prometheus) added by
// SPEC_FULL.md. The decode pipeline itself is configured entirely by the
// spec §6 command-line flags; this file only covers the sinks that have
// no flag equivalent.
//
// Grounded on the donor's config.go (LoadConfig/yaml.Unmarshal pattern).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwsl/rtlsensor/internal/sink"
)

// Config is the top-level `-config` document.
type Config struct {
	MQTT       sink.MQTTConfig  `yaml:"mqtt"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
}

// WebSocketConfig enables the live decoded-reading feed.
type WebSocketConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"` // e.g. ":8080"
	Path    string `yaml:"path"`   // e.g. "/ws"
}

// PrometheusConfig enables the /metrics HTTP endpoint.
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
}

// Load reads and parses filename. A missing or empty MQTT broker,
// WebSocket listen address, etc. simply leaves that sink disabled; it is
// not an error to omit a section.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if cfg.WebSocket.Path == "" {
		cfg.WebSocket.Path = "/ws"
	}
	if cfg.Prometheus.Path == "" {
		cfg.Prometheus.Path = "/metrics"
	}

	return &cfg, nil
}
