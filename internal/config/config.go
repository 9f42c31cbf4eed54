package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STOPPER_LOG_LEVEL.
const EnvPrefix = "STOPPER"

// Config is the effective CLI configuration after file, env and flags merge.
type Config struct {
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat       string        `mapstructure:"log_format" yaml:"log_format"`
	Output          string        `mapstructure:"output" yaml:"output"`
	MetricsAddr     string        `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Namespace       string        `mapstructure:"namespace" yaml:"namespace"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

var (
	validOutputs    = map[string]bool{"table": true, "json": true, "yaml": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("output", "table")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("namespace", "stopper")
	v.SetDefault("shutdown_timeout", 5*time.Second)
}

// Load reads cfgFile (or $HOME/.stopper/config.yaml when empty) and
// environment overrides into v and decodes the result. A missing default
// config file is not an error; a missing explicit one is.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".stopper"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid output format %q: must be table, json or yaml", c.Output)
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}
	if c.Namespace == "" {
		return errors.New("metrics namespace must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
