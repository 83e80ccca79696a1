// Package config loads daemon settings from defaults, an optional YAML file,
// and ECHOD_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	PurgeGrace      time.Duration `mapstructure:"purge_grace"`
	HistoryCapacity int           `mapstructure:"history_capacity"`
	ExecTimeout     time.Duration `mapstructure:"exec_timeout"`
	ScreenshotDir   string        `mapstructure:"screenshot_dir"`
	// WorkspaceRoot confines file operations when set. Empty means paths are
	// taken as given.
	WorkspaceRoot string `mapstructure:"workspace_root"`
}

// Load reads configuration. path may be empty; a missing config file is not
// an error, only a malformed one is.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8090")
	v.SetDefault("idle_timeout", time.Hour)
	v.SetDefault("sweep_interval", time.Minute)
	v.SetDefault("purge_grace", 10*time.Minute)
	v.SetDefault("history_capacity", 1000)
	v.SetDefault("exec_timeout", 15*time.Second)
	v.SetDefault("screenshot_dir", "")
	v.SetDefault("workspace_root", "")

	v.SetEnvPrefix("ECHOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("echod")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/echod")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout must be > 0")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be > 0")
	}
	if c.PurgeGrace < 0 {
		return fmt.Errorf("purge_grace must be >= 0")
	}
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("history_capacity must be > 0")
	}
	if c.ExecTimeout <= 0 {
		return fmt.Errorf("exec_timeout must be > 0")
	}
	return nil
}
