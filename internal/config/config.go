// Package config defines the application configuration and its viper-backed
// loading.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/luci-doctor/internal/luci"
)

// DefaultIssueTracker is the upstream tracker new-support issues land in.
const DefaultIssueTracker = "https://github.com/dmamontov/hass-miwifi/issues"

// Config is the full application configuration.
type Config struct {
	Router RouterConfig `mapstructure:"router"`
	Logger LoggerConfig `mapstructure:"logger"`
	Report ReportConfig `mapstructure:"report"`
}

// RouterConfig carries connection parameters for the target router.
type RouterConfig struct {
	// Address is a hostname or IP, no scheme.
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format selects the console or json encoder.
	Format string `mapstructure:"format"`
	// LogFile enables an additional rotating JSON file sink when set.
	LogFile    string `mapstructure:"log_file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// ReportConfig controls the self-check report.
type ReportConfig struct {
	// IssueTracker is the tracker root the deep link points at.
	IssueTracker string `mapstructure:"issue_tracker"`
	// Notify selects the notification sink: console or file.
	Notify string `mapstructure:"notify"`
	// NotifyFile is the path the file sink appends to.
	NotifyFile string `mapstructure:"notify_file"`
}

// SetDefaults registers every config default on v. Flag and env bindings
// override them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("router.address", luci.DefaultAddress)
	v.SetDefault("router.password", "")
	v.SetDefault("router.timeout", luci.DefaultTimeout)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)

	v.SetDefault("report.issue_tracker", DefaultIssueTracker)
	v.SetDefault("report.notify", "console")
	v.SetDefault("report.notify_file", "")
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	if c.Router.Address == "" {
		return fmt.Errorf("router.address must not be empty")
	}
	if c.Router.Timeout <= 0 {
		return fmt.Errorf("router.timeout must be positive, got %s", c.Router.Timeout)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Report.IssueTracker == "" {
		return fmt.Errorf("report.issue_tracker must not be empty")
	}
	switch c.Report.Notify {
	case "console":
	case "file":
		if c.Report.NotifyFile == "" {
			return fmt.Errorf("report.notify_file must be set for the file sink")
		}
	default:
		return fmt.Errorf("report.notify must be console or file, got %q", c.Report.Notify)
	}
	return nil
}
