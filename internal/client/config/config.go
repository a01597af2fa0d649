package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the calendar CLI.
//
// Units: intervals and the reminder lead time are time.Duration values.
type Config struct {
	ServerEndpointAddr    string
	APIKey                string
	DatabasePath          string
	OnlineCheckInterval   time.Duration
	ReminderCheckInterval time.Duration
	ReminderLeadTime      time.Duration
	TelegramToken         string
	TelegramChatID        int64
	OutputDir             string
	LogLevel              string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "cal.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.ReminderCheckInterval = 30 * time.Second
	c.ReminderLeadTime = 15 * time.Minute
	c.OutputDir = "out"
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings the watchers cannot run with.
func (c *Config) Validate() error {
	for name, d := range map[string]time.Duration{
		"online check interval":   c.OnlineCheckInterval,
		"reminder check interval": c.ReminderCheckInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", name, d)
		}
	}
	if c.ReminderLeadTime < 0 {
		return fmt.Errorf("config: reminder lead time must not be negative, got %s", c.ReminderLeadTime)
	}
	return nil
}
