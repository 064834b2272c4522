// Package config loads the nudge service configuration from a YAML file
// with environment variable overrides (NUDGE_ prefix).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// StoreConfig selects and configures the task record store backend.
type StoreConfig struct {
	// Backend is "sqlite" or "redis".
	Backend string `mapstructure:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// The embedded trigger dispatcher always uses this database.
	SQLitePath string `mapstructure:"sqlite_path"`

	// RedisAddr is the host:port for the redis backend.
	RedisAddr string `mapstructure:"redis_addr"`

	// RedisPrefix namespaces task keys in redis.
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// SlackConfig holds chat platform settings.
type SlackConfig struct {
	// Token is the bot token used for all API calls.
	Token string `mapstructure:"token"`

	// ChannelID is the channel where task announcements are posted.
	ChannelID string `mapstructure:"channel_id"`

	// CompletionEmoji is the reaction that marks a task as acknowledged.
	CompletionEmoji string `mapstructure:"completion_emoji"`
}

// ReminderConfig holds the scheduling policy knobs.
type ReminderConfig struct {
	// ReminderHour is the local hour for day-before / day-of reminders.
	ReminderHour int `mapstructure:"reminder_hour"`

	// BusinessHourStart is the local hour overnight candidates are shifted to.
	BusinessHourStart int `mapstructure:"business_hour_start"`

	// FinalCheckOffsetHours is how long before the due time the escalation
	// check fires when a request does not carry its own estimate.
	FinalCheckOffsetHours float64 `mapstructure:"final_check_offset_hours"`

	// FastWindowHours enables the repeating fast reminder when the due time
	// is at most this many hours away.
	FastWindowHours int `mapstructure:"fast_window_hours"`

	// FastIntervalMinutes is the cadence of the fast reminder.
	FastIntervalMinutes int `mapstructure:"fast_interval_minutes"`

	// ExpiryDays is how long past the due time a task record is retained.
	ExpiryDays int `mapstructure:"expiry_days"`
}

// DispatcherConfig holds the embedded trigger dispatcher settings.
type DispatcherConfig struct {
	// PollIntervalSeconds is how often the dispatcher checks for due triggers.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
}

// Config is the top-level nudge configuration.
type Config struct {
	// Timezone is the single organization-wide zone used to interpret bare
	// due times and to anchor reminder wall-clock arithmetic.
	Timezone string `mapstructure:"timezone"`

	// HTTPAddr is the listen address of the ingest API.
	HTTPAddr string `mapstructure:"http_addr"`

	Store      StoreConfig      `mapstructure:"store"`
	Slack      SlackConfig      `mapstructure:"slack"`
	Reminders  ReminderConfig   `mapstructure:"reminders"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`

	// Directory maps lowercase display names to platform recipient IDs.
	// Injected into the target resolver; varies per deployment.
	Directory map[string]string `mapstructure:"directory"`
}

// DefaultConfigPath returns ~/.nudge/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".nudge", "config.yaml")
}

// DefaultSQLitePath returns ~/.nudge/nudge.db.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "nudge.db")
	}
	return filepath.Join(home, ".nudge", "nudge.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timezone", "America/New_York")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.sqlite_path", DefaultSQLitePath())
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_prefix", "task:")
	v.SetDefault("slack.completion_emoji", "white_check_mark")
	v.SetDefault("reminders.reminder_hour", 19)
	v.SetDefault("reminders.business_hour_start", 8)
	v.SetDefault("reminders.final_check_offset_hours", 1.0)
	v.SetDefault("reminders.fast_window_hours", 24)
	v.SetDefault("reminders.fast_interval_minutes", 5)
	v.SetDefault("reminders.expiry_days", 30)
	v.SetDefault("dispatcher.poll_interval_seconds", 20)
}

// Load reads configuration from path. A missing file is not an error; defaults
// and NUDGE_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NUDGE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Store.Backend != "sqlite" && c.Store.Backend != "redis" {
		return fmt.Errorf("invalid store backend %q (expected sqlite or redis)", c.Store.Backend)
	}
	if c.Reminders.BusinessHourStart < 0 || c.Reminders.BusinessHourStart > 23 {
		return fmt.Errorf("invalid business_hour_start %d", c.Reminders.BusinessHourStart)
	}
	if c.Reminders.ReminderHour < 0 || c.Reminders.ReminderHour > 23 {
		return fmt.Errorf("invalid reminder_hour %d", c.Reminders.ReminderHour)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured organization timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
