// Package config loads runtime configuration for the calendar CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml/.yml are YAML, anything else JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "api_key": "<anon key printed by the server>",
//	  "database_path": "cal.db",
//	  "online_check_interval": "3s",
//	  "reminder_check_interval": "30s",
//	  "reminder_lead_time": "15m",
//	  "telegram_token": "",
//	  "telegram_chat_id": 0,
//	  "output_dir": "out",
//	  "log_level": "warn"
//	}
package config
