package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/cal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     address and port of the backend server
//	-k string     API key issued by the server
//	-db string    path of the local SQLite database
//	-i int        online check interval in seconds
//	-r int        reminder check interval in seconds
//	-lead int     reminder lead time in minutes
//	-tg string    Telegram bot token
//	-chat int     Telegram chat id
//	-o string     output directory for generated files
//	-log string   log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-db", "-i", "-r", "-lead", "-tg", "-chat", "-o", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "API key")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "local database path")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	reminderCheckInterval := fs.Int("r", int(cfg.ReminderCheckInterval.Seconds()), "reminder check interval (in seconds)")
	leadTime := fs.Int("lead", int(cfg.ReminderLeadTime.Minutes()), "reminder lead time (in minutes)")
	fs.StringVar(&cfg.TelegramToken, "tg", cfg.TelegramToken, "Telegram bot token")
	fs.Int64Var(&cfg.TelegramChatID, "chat", cfg.TelegramChatID, "Telegram chat id")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "output directory")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags given on the command line replace durations, so sub-unit
	// values from the config file survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "r":
			cfg.ReminderCheckInterval = time.Duration(*reminderCheckInterval) * time.Second
		case "lead":
			cfg.ReminderLeadTime = time.Duration(*leadTime) * time.Minute
		}
	})
}
