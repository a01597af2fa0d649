package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/cal/internal/flagx"
	"github.com/dmitrijs2005/cal/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Config. Durations accept "3s" or
// integer nanoseconds.
type FileConfig struct {
	ServerEndpointAddr    string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	APIKey                string         `json:"api_key" yaml:"api_key"`
	DatabasePath          string         `json:"database_path" yaml:"database_path"`
	OnlineCheckInterval   timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	ReminderCheckInterval timex.Duration `json:"reminder_check_interval" yaml:"reminder_check_interval"`
	ReminderLeadTime      timex.Duration `json:"reminder_lead_time" yaml:"reminder_lead_time"`
	TelegramToken         string         `json:"telegram_token" yaml:"telegram_token"`
	TelegramChatID        int64          `json:"telegram_chat_id" yaml:"telegram_chat_id"`
	OutputDir             string         `json:"output_dir" yaml:"output_dir"`
	LogLevel              string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays config with the file named by -c/-config. Files ending
// in .yaml or .yml are read as YAML, anything else as JSON. Read or decode
// errors panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	setString(&config.ServerEndpointAddr, c.ServerEndpointAddr)
	setString(&config.APIKey, c.APIKey)
	setString(&config.DatabasePath, c.DatabasePath)
	setDuration(&config.OnlineCheckInterval, c.OnlineCheckInterval)
	setDuration(&config.ReminderCheckInterval, c.ReminderCheckInterval)
	setDuration(&config.ReminderLeadTime, c.ReminderLeadTime)
	setString(&config.TelegramToken, c.TelegramToken)
	if c.TelegramChatID != 0 {
		config.TelegramChatID = c.TelegramChatID
	}
	setString(&config.OutputDir, c.OutputDir)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
