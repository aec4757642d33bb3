// Package config loads OrganizeIT settings from an optional YAML file and
// ORGANIZEIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/organizeit/go-organizeit/pkg/activity"
)

// EnvPrefix namespaces environment overrides, e.g. ORGANIZEIT_SERVER_ADDR.
const EnvPrefix = "ORGANIZEIT"

// Config is the full settings tree.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Client   ClientConfig    `mapstructure:"client"`
	Log      LogConfig       `mapstructure:"log"`
	Charts   ChartsConfig    `mapstructure:"charts"`
	Activity activity.Config `mapstructure:"activity"`
}

// ServerConfig drives `organizeit serve`.
type ServerConfig struct {
	Addr          string   `mapstructure:"addr"`
	BasePath      string   `mapstructure:"base_path"`
	AliasPrefixes []string `mapstructure:"alias_prefixes"`
	MetricsAddr   string   `mapstructure:"metrics_addr"`
	RequireAuth   bool     `mapstructure:"require_auth"`
	Seed          bool     `mapstructure:"seed"`
	JitterSeed    uint64   `mapstructure:"jitter_seed"`
	Manifests     []string `mapstructure:"manifests"`
	// SessionDB selects the SQLite session store; empty keeps sessions in memory.
	SessionDB string `mapstructure:"session_db"`
}

// ClientConfig drives the CLI commands that call a running server.
type ClientConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	SessionFile       string        `mapstructure:"session_file"`
	// Fallback serves local mock data when the server cannot be reached.
	Fallback bool `mapstructure:"fallback"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ChartsConfig configures server-side chart rendering.
type ChartsConfig struct {
	Theme      string        `mapstructure:"theme"`
	AssetsHost string        `mapstructure:"assets_host"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

var defaults = map[string]any{
	"server.addr":                ":8080",
	"server.base_path":           "/api",
	"server.alias_prefixes":      []string{"/functions/v1/make-server"},
	"server.metrics_addr":        ":9090",
	"server.require_auth":        false,
	"server.seed":                true,
	"server.jitter_seed":         0,
	"server.manifests":           []string{},
	"server.session_db":          "",
	"client.base_url":            "http://localhost:8080/api",
	"client.api_key":             "",
	"client.timeout":             10 * time.Second,
	"client.requests_per_second": 0,
	"client.session_file":        "",
	"client.fallback":            true,
	"log.level":                  "info",
	"log.development":            false,
	"charts.theme":               "",
	"charts.assets_host":         "",
	"charts.cache_ttl":           5 * time.Minute,
	"activity.enabled":           false,
	"activity.channel":           activity.DefaultChannel,
}

// Load reads path when given, otherwise an optional organizeit.yaml in the
// working directory, then applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("organizeit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read organizeit.yaml: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server or client cannot start with.
func (c *Config) Validate() error {
	var errs error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = errors.Join(errs, errors.New("config: server.addr is required"))
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = errors.Join(errs, fmt.Errorf("config: server.base_path %q must start with /", c.Server.BasePath))
	}
	for _, prefix := range c.Server.AliasPrefixes {
		if !strings.HasPrefix(prefix, "/") {
			errs = errors.Join(errs, fmt.Errorf("config: alias prefix %q must start with /", prefix))
		}
	}
	if c.Client.RequestsPerSecond < 0 {
		errs = errors.Join(errs, errors.New("config: client.requests_per_second cannot be negative"))
	}
	if c.Client.Timeout < 0 {
		errs = errors.Join(errs, errors.New("config: client.timeout cannot be negative"))
	}
	return errs
}
