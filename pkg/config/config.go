// Package config loads the monitoring service configuration from a
// YAML file and DOMWATCH_* environment variables, with env taking
// precedence over the file and the file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the environment variable prefix.
// Example: DOMWATCH_SERVER_ADDR=0.0.0.0:9090 -> server.addr.
const envPrefix = "DOMWATCH_"

// Default configuration values.
const (
	DefaultServerAddr   = ":8080"
	DefaultDatabasePath = "domwatch.db"
	DefaultScanWorkers  = 5
	DefaultScanTimeout  = 10 // seconds per domain probe
)

// Config is the monitoring service configuration.
type Config struct {
	Server   ServerSection   `koanf:"server"`
	Database DatabaseSection `koanf:"database"`
	Scan     ScanSection     `koanf:"scan"`
	Alerts   AlertsSection   `koanf:"alerts"`
}

// ServerSection configures the HTTP listener.
type ServerSection struct {
	Addr string `koanf:"addr"`
}

// DatabaseSection configures the SQLite storage.
type DatabaseSection struct {
	Path string `koanf:"path"`
}

// ScanSection configures the on-demand scan worker pool.
type ScanSection struct {
	Workers        int  `koanf:"workers"`
	TimeoutSeconds int  `koanf:"timeout_seconds"`
	Whois          bool `koanf:"whois"`
}

// AlertsSection configures the post-scan webhook alerts. Disabled when
// no webhook URL is set.
type AlertsSection struct {
	WebhookURL string `koanf:"webhook_url"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Server:   ServerSection{Addr: DefaultServerAddr},
		Database: DatabaseSection{Path: DefaultDatabasePath},
		Scan: ScanSection{
			Workers:        DefaultScanWorkers,
			TimeoutSeconds: DefaultScanTimeout,
			Whois:          true,
		},
	}
}

// Load reads configuration from the given YAML file (skipped when the
// path is empty or the file does not exist) and then overlays
// DOMWATCH_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "_", ".")
	}
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Scan.Workers < 1 {
		cfg.Scan.Workers = DefaultScanWorkers
	}
	if cfg.Scan.TimeoutSeconds < 1 {
		cfg.Scan.TimeoutSeconds = DefaultScanTimeout
	}

	return cfg, nil
}
