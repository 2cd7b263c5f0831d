// Package config loads agent settings and the software-target catalog.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds agent-level settings. Values resolve, in order, from an
// optional config file, FPA_* environment variables, and defaults; CLI
// flags override on top in cmd.
type Config struct {
	LogLevel       string        `mapstructure:"log_level"`
	LogFile        string        `mapstructure:"log_file"`
	TargetsPath    string        `mapstructure:"targets_path"`
	OutputPath     string        `mapstructure:"output_path"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	ScanTimeout    time.Duration `mapstructure:"scan_timeout"`
	Concurrency    int           `mapstructure:"concurrency"`
}

// Load reads configuration from path (optional; empty means defaults and
// environment only).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("targets_path", "software_targets.json")
	v.SetDefault("output_path", "")
	v.SetDefault("command_timeout", 30*time.Second)
	v.SetDefault("scan_timeout", time.Duration(0))
	v.SetDefault("concurrency", 1)

	v.SetEnvPrefix("FPA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &cfg, nil
}
